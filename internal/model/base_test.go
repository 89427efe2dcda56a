package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var p Patient
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "nom": "Durand"}`), &p))
	assert.Equal(t, "42", p.GetID())

	require.NoError(t, json.Unmarshal([]byte(`{"id": "a1b2"}`), &p))
	assert.Equal(t, "a1b2", p.GetID())

	var r Room
	require.NoError(t, json.Unmarshal([]byte(`{"id": null}`), &r))
	assert.Equal(t, "", r.GetID())

	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &r))
}

func TestFieldsKeepsLegacyEncodings(t *testing.T) {
	h := Hospitalization{
		Base:            Base{ID: "7"},
		DateDebutLegacy: "2024-03-01",
		CreatedAtLegacy: "2024-02-28",
	}

	fields, err := Fields(h)
	require.NoError(t, err)
	assert.Equal(t, "7", fields["id"])
	assert.Equal(t, "2024-03-01", fields["date_debut"])
	assert.Equal(t, "2024-02-28", fields["created_at"])
	_, hasModern := fields["dateDebut"]
	assert.False(t, hasModern)
}

func TestPatientFullName(t *testing.T) {
	assert.Equal(t, "Amina Benali", Patient{Nom: "Benali", Prenom: "Amina"}.FullName())
	assert.Equal(t, "Benali", Patient{Nom: "Benali"}.FullName())
	assert.Equal(t, "Amina", Patient{Prenom: "Amina"}.FullName())
}
