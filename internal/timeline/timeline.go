package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/jwalitptl/clinic-console/internal/model"
	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
)

// Item is one row of a merged timeline. Items are rebuilt on every pass.
type Item struct {
	SourceType SourceType    `json:"sourceType"`
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Date       *time.Time    `json:"normalizedDate"`
	EndDate    *time.Time    `json:"normalizedEndDate"`
	DateClass  DateClass     `json:"dateClass"`
	Status     string        `json:"derivedStatus"`
	Raw        model.JSONMap `json:"raw"`
}

// Aggregator merges typed collections into one display sequence. It holds
// only its specs; every call is a pure function of its inputs.
type Aggregator struct {
	specs map[SourceType]Spec
}

// New validates specs up front; an unknown source type is a configuration error.
func New(specs ...Spec) (*Aggregator, error) {
	a := &Aggregator{specs: make(map[SourceType]Spec, len(specs))}
	for _, s := range specs {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := a.specs[s.Type]; dup {
			return nil, apperrors.Configuration(fmt.Sprintf("duplicate timeline source %q", s.Type), nil)
		}
		a.specs[s.Type] = s
	}
	return a, nil
}

// Default aggregates hospitalizations, operations and consultations.
func Default() *Aggregator {
	a, err := New(HospitalizationSpec(), OperationSpec(), ConsultationSpec())
	if err != nil {
		panic(err)
	}
	return a
}

// Aggregate maps every record of every source to an Item and orders them
// most recent first. Records whose date is not valid are kept, after all the
// dated ones, in the order they were encountered.
func (a *Aggregator) Aggregate(now time.Time, sources ...Source) ([]Item, error) {
	var dated, undated []Item
	for _, src := range sources {
		spec, ok := a.specs[src.Type]
		if !ok {
			return nil, apperrors.Configuration(fmt.Sprintf("no timeline spec for source %q", src.Type), nil)
		}
		for _, rec := range src.Records {
			item, err := spec.item(rec, now)
			if err != nil {
				return nil, apperrors.DataShape(fmt.Sprintf("unreadable %s record", src.Type), err)
			}
			if item.DateClass == DateValid {
				dated = append(dated, item)
			} else {
				undated = append(undated, item)
			}
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.After(*dated[j].Date)
	})

	out := make([]Item, 0, len(dated)+len(undated))
	out = append(out, dated...)
	return append(out, undated...), nil
}

func (s Spec) item(rec interface{}, now time.Time) (Item, error) {
	fields, err := model.Fields(rec)
	if err != nil {
		return Item{}, err
	}
	date, class := resolveDate(fields, now, s.DateFields)
	var end *time.Time
	if len(s.EndDateFields) > 0 {
		end, _ = resolveDate(fields, now, s.EndDateFields)
	}

	item := Item{
		SourceType: s.Type,
		Date:       date,
		EndDate:    end,
		DateClass:  class,
		Status:     s.Status(fields, end, now),
		Raw:        fields,
	}
	if id, ok := Resolve(fields, "id"); ok {
		item.ID = id
	}
	if s.Title != nil {
		item.Title = s.Title(fields)
	}
	return item, nil
}
