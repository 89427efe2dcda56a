package view

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-console/internal/calendar"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/resource"
	"github.com/jwalitptl/clinic-console/internal/store"
	"github.com/jwalitptl/clinic-console/internal/timeline"
)

// Config controls view memoization. Keys embed the versions of the stores a
// view reads, so a store change never serves a stale view; expiry only bounds
// memory and time-dependent fields such as derived statuses.
type Config struct {
	CacheDuration   time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		CacheDuration:   30 * time.Second,
		CleanupInterval: 5 * time.Minute,
	}
}

// Service derives presentation models from the stores. It never writes to them.
type Service struct {
	reg   *resource.Registry
	agg   *timeline.Aggregator
	cache *cache.Cache
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(reg *resource.Registry, agg *timeline.Aggregator, cfg Config, opts ...Option) *Service {
	s := &Service{
		reg:   reg,
		agg:   agg,
		cache: cache.New(cfg.CacheDuration, cfg.CleanupInterval),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History is a patient's medical history as one timeline.
type History struct {
	PatientID string                         `json:"patientId"`
	Patient   *model.Patient                 `json:"patient,omitempty"`
	Items     []timeline.Item                `json:"items"`
	Loading   bool                           `json:"loading"`
	Errors    map[timeline.SourceType]string `json:"errors,omitempty"`
}

// PatientHistory merges the loaded stays, operations and consultations of
// patientID. Sources still loading or failed are reported, not hidden.
func (s *Service) PatientHistory(patientID string) (History, error) {
	r := s.reg
	key := fmt.Sprintf("history:%s:%d:%d:%d:%d:%s:%s:%s",
		patientID,
		r.Patients.Version(),
		r.Hospitalizations.Version(),
		r.Operations.Version(),
		r.Consultations.Version(),
		r.Hospitalizations.Status(store.KindGetByPatient),
		r.Operations.Status(store.KindGetByPatient),
		r.Consultations.Status(store.KindGetByPatient),
	)
	if v, found := s.cache.Get(key); found {
		return v.(History), nil
	}

	stays := ofPatient(r.Hospitalizations.Store, patientID, func(h model.Hospitalization) model.ID { return h.PatientID })
	ops := ofPatient(r.Operations, patientID, func(o model.Operation) model.ID { return o.PatientID })
	visits := ofPatient(r.Consultations, patientID, func(c model.Consultation) model.ID { return c.PatientID })

	items, err := s.agg.Aggregate(s.now(),
		timeline.From(timeline.SourceHospitalization, stays),
		timeline.From(timeline.SourceOperation, ops),
		timeline.From(timeline.SourceConsultation, visits),
	)
	if err != nil {
		return History{}, err
	}

	h := History{PatientID: patientID, Items: items, Errors: map[timeline.SourceType]string{}}
	if p, ok := findPatient(r.Patients, patientID); ok {
		h.Patient = &p
	}
	h.Loading = r.Patients.Loading(store.KindGetByID) ||
		r.Hospitalizations.Loading(store.KindGetByPatient) ||
		r.Operations.Loading(store.KindGetByPatient) ||
		r.Consultations.Loading(store.KindGetByPatient)
	for src, msg := range map[timeline.SourceType]string{
		timeline.SourceHospitalization: r.Hospitalizations.Err(store.KindGetByPatient),
		timeline.SourceOperation:       r.Operations.Err(store.KindGetByPatient),
		timeline.SourceConsultation:    r.Consultations.Err(store.KindGetByPatient),
	} {
		if msg != "" {
			h.Errors[src] = msg
		}
	}

	if !h.Loading {
		s.cache.Set(key, h, cache.DefaultExpiration)
	}
	return h, nil
}

// ofPatient returns the records belonging to patientID: the whole collection
// when it was loaded for that patient, the matching records otherwise.
func ofPatient[T model.Entity](s *store.Store[T], patientID string, owner func(T) model.ID) []T {
	items := s.Items()
	if s.ParentID() == patientID {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if string(owner(it)) == patientID {
			out = append(out, it)
		}
	}
	return out
}

func findPatient(s *store.Store[model.Patient], id string) (model.Patient, bool) {
	if cur, ok := s.Current(); ok && cur.GetID() == id {
		return cur, true
	}
	return s.Get(id)
}

// Agenda is one month of the appointment calendar.
type Agenda struct {
	Month        calendar.Month  `json:"month"`
	Prev         calendar.Month  `json:"prev"`
	Next         calendar.Month  `json:"next"`
	Cells        []calendar.Cell `json:"cells"`
	Highlighted  int             `json:"highlighted"`
	Appointments int             `json:"appointments"`
}

// AgendaMonth builds the grid of m with the upcoming appointments flagged.
func (s *Service) AgendaMonth(m calendar.Month) Agenda {
	ref := s.now()
	key := fmt.Sprintf("agenda:%d-%02d:%s:%d", m.Year, m.Month, calendar.DayOf(ref), s.reg.Appointments.Version())
	if v, found := s.cache.Get(key); found {
		return v.(Agenda)
	}

	appts := s.reg.Appointments.Items()
	dates := make([]string, 0, len(appts))
	for _, a := range appts {
		if a.Statut == model.AppointmentStatusCancelled {
			continue
		}
		dates = append(dates, a.Date)
	}
	highlights := calendar.Highlights(dates, ref)

	agenda := Agenda{
		Month:        m,
		Prev:         m.Prev(),
		Next:         m.Next(),
		Cells:        calendar.Grid(m, ref, highlights),
		Highlighted:  len(highlights),
		Appointments: len(appts),
	}
	s.cache.Set(key, agenda, cache.DefaultExpiration)
	return agenda
}

// CurrentMonth is the month containing today.
func (s *Service) CurrentMonth() calendar.Month {
	return calendar.MonthOf(s.now())
}

// Snapshot exposes a store's state by entity name.
func (s *Service) Snapshot(entity string) (interface{}, error) {
	return s.reg.Snapshot(entity)
}

func (s *Service) Entities() []string {
	return s.reg.Entities()
}
