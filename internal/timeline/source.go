package timeline

import (
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-console/internal/model"
	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
)

type SourceType string

const (
	SourceHospitalization SourceType = "hospitalization"
	SourceOperation       SourceType = "operation"
	SourceConsultation    SourceType = "consultation"
)

var knownSources = map[SourceType]bool{
	SourceHospitalization: true,
	SourceOperation:       true,
	SourceConsultation:    true,
}

const (
	StatusOngoing   = "ongoing"
	StatusEnded     = "ended"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
)

// Spec tells the aggregator how to read one source type.
type Spec struct {
	Type SourceType
	// DateFields and EndDateFields are tried in order; the first non-empty
	// value wins.
	DateFields    []string
	EndDateFields []string
	Title         func(fields model.JSONMap) string
	Status        func(fields model.JSONMap, end *time.Time, now time.Time) string
}

func (s Spec) validate() error {
	if !knownSources[s.Type] {
		return apperrors.Configuration(fmt.Sprintf("unknown timeline source type %q", s.Type), nil)
	}
	if len(s.DateFields) == 0 {
		return apperrors.Configuration(fmt.Sprintf("timeline source %q has no date fields", s.Type), nil)
	}
	if s.Status == nil {
		return apperrors.Configuration(fmt.Sprintf("timeline source %q has no status rule", s.Type), nil)
	}
	return nil
}

// Source is one typed collection handed to Aggregate.
type Source struct {
	Type    SourceType
	Records []interface{}
}

// From wraps a typed store collection as a Source.
func From[T model.Entity](typ SourceType, records []T) Source {
	out := make([]interface{}, len(records))
	for i, r := range records {
		out[i] = r
	}
	return Source{Type: typ, Records: out}
}

func titleOr(field, fallback string) func(model.JSONMap) string {
	return func(fields model.JSONMap) string {
		if v, ok := Resolve(fields, field); ok {
			return v
		}
		return fallback
	}
}

// verbatim uses the record's own statut field, or fallback when absent.
func verbatim(fallback string) func(model.JSONMap, *time.Time, time.Time) string {
	return func(fields model.JSONMap, _ *time.Time, _ time.Time) string {
		if v, ok := Resolve(fields, "statut", "status"); ok {
			return v
		}
		return fallback
	}
}

// HospitalizationSpec: a stay is ongoing until its end date has passed.
func HospitalizationSpec() Spec {
	return Spec{
		Type:          SourceHospitalization,
		DateFields:    []string{"dateDebut", "date_debut", "createdAt", "created_at"},
		EndDateFields: []string{"dateFin", "date_fin"},
		Title:         titleOr("motif", "Hospitalization"),
		Status: func(_ model.JSONMap, end *time.Time, now time.Time) string {
			if end == nil || end.After(now) {
				return StatusOngoing
			}
			return StatusEnded
		},
	}
}

func OperationSpec() Spec {
	return Spec{
		Type:       SourceOperation,
		DateFields: []string{"dateOperation", "date_operation", "createdAt", "created_at"},
		Title:      titleOr("type", "Operation"),
		Status:     verbatim(StatusScheduled),
	}
}

func ConsultationSpec() Spec {
	return Spec{
		Type:       SourceConsultation,
		DateFields: []string{"dateConsultation", "date_consultation", "createdAt", "created_at"},
		Title:      titleOr("motif", "Consultation"),
		Status:     verbatim(StatusCompleted),
	}
}
