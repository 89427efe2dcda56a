package timeline

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-console/internal/model"
)

func TestResolve(t *testing.T) {
	fields := model.JSONMap{
		"dateDebut":  "",
		"date_debut": "  ",
		"createdAt":  nil,
		"created_at": "2024-01-01",
	}
	v, ok := Resolve(fields, "dateDebut", "date_debut", "createdAt", "created_at")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", v)

	_, ok = Resolve(fields, "dateFin")
	assert.False(t, ok)

	v, ok = Resolve(model.JSONMap{"id": float64(42)}, "id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestClassify(t *testing.T) {
	ref := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  DateClass
		day   int
	}{
		{value: "", want: DateMissing},
		{value: "   ", want: DateMissing},
		{value: "31/13/2024", want: DateInvalid},
		{value: "30/02/2024", want: DateInvalid},
		{value: "yesterday", want: DateInvalid},
		{value: "2024-13-01", want: DateInvalid},
		{value: "1850-03-01", want: DateOutOfRange},
		{value: "1899-12-31", want: DateOutOfRange},
		{value: strconv.Itoa(ref.Year()+11) + "-01-01", want: DateOutOfRange},
		{value: strconv.Itoa(ref.Year()+10) + "-12-31", want: DateValid, day: 31},
		{value: "1900-01-01", want: DateValid, day: 1},
		{value: "2024-05-01", want: DateValid, day: 1},
		{value: "2024-05-02T10:15:00Z", want: DateValid, day: 2},
		{value: "2024-05-03T10:15:00.000Z", want: DateValid, day: 3},
		{value: "2024-05-04T10:15:00", want: DateValid, day: 4},
		{value: "2024-05-05 10:15:00", want: DateValid, day: 5},
		{value: "6/5/2024", want: DateValid, day: 6},
		{value: "07/05/2024", want: DateValid, day: 7},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, class := Classify(tt.value, ref)
			assert.Equal(t, tt.want, class)
			if tt.want == DateValid {
				assert.Equal(t, tt.day, got.Day())
			}
		})
	}
}

func TestClassifyOutOfRangeFollowsReference(t *testing.T) {
	_, class := Classify("2040-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, DateOutOfRange, class)

	_, class = Classify("2040-01-01", time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, DateValid, class)
}
