package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/model"
	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

// Endpoints maps store operations onto API paths.
type Endpoints struct {
	// Collection is the list path, e.g. "/patients".
	Collection string
	// Item defaults to Collection + "/" + id.
	Item func(id string) string
	// ByParent is nil for entities that cannot be listed per parent.
	ByParent func(parentID string) string
}

func (e Endpoints) item(id string) string {
	if e.Item != nil {
		return e.Item(id)
	}
	return strings.TrimRight(e.Collection, "/") + "/" + id
}

// Event describes a settled, successful mutation for cross-store listeners.
type Event struct {
	Entity string        `json:"entity"`
	Kind   OperationKind `json:"kind"`
	ID     string        `json:"id,omitempty"`
}

// Notifier delivers refresh notifications to other stores.
type Notifier interface {
	Notify(ctx context.Context, topic string, event Event) error
}

// Change is passed to Subscribe listeners after every state transition.
type Change struct {
	Entity  string
	Kind    OperationKind
	Status  OperationStatus
	Version uint64
}

type Config struct {
	// Entity names the store in logs and metrics ("patient").
	Entity string
	// Label is used in user-facing messages ("Patient").
	Label     string
	Endpoints Endpoints
	// ParentKind is the kind FetchByParent is tracked under.
	ParentKind OperationKind
	// Messages overrides the default success message per kind.
	Messages map[OperationKind]string
	// NotifyOnSuccess lists topics published after a successful operation.
	NotifyOnSuccess map[OperationKind][]string

	Notifier  Notifier
	Validator *validator.Validate
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

// Store owns one entity type's collection, its current record and the status
// of every operation kind. It is the only writer of that state.
type Store[T model.Entity] struct {
	cfg Config
	req api.Requester
	log zerolog.Logger

	mu              sync.RWMutex
	coll            *Collection[T]
	current         *T
	parentID        string
	requestedParent string
	board           statusBoard
	version         uint64

	listenersMu  sync.Mutex
	listeners    map[int]func(Change)
	nextListener int
}

func New[T model.Entity](req api.Requester, cfg Config) *Store[T] {
	if cfg.Label == "" {
		cfg.Label = cfg.Entity
	}
	if cfg.ParentKind == "" {
		cfg.ParentKind = KindGetByPatient
	}
	if cfg.Validator == nil {
		cfg.Validator = NewValidator()
	}
	return &Store[T]{
		cfg:       cfg,
		req:       req,
		log:       cfg.Logger.With().Str("entity", cfg.Entity).Logger(),
		coll:      NewCollection[T](),
		board:     newStatusBoard(),
		listeners: make(map[int]func(Change)),
	}
}

func (s *Store[T]) Entity() string { return s.cfg.Entity }

// FetchAll replaces the collection with the server's list. On failure the
// previous collection is kept.
func (s *Store[T]) FetchAll(ctx context.Context) ([]T, error) {
	const kind = KindGetAll
	started := s.begin(kind)

	raw, err := s.req.Get(ctx, s.cfg.Endpoints.Collection)
	if err != nil {
		return nil, s.fail(kind, started, err)
	}

	items := s.decodeList(kind, raw)
	s.mu.Lock()
	s.replace(items)
	s.parentID = ""
	s.requestedParent = ""
	s.mu.Unlock()

	s.succeed(ctx, kind, started, "")
	return items, nil
}

// FetchByParent lists the records belonging to parentID (e.g. a patient's
// consultations). A response for a parent other than the most recently
// requested one is stale and leaves the collection alone.
func (s *Store[T]) FetchByParent(ctx context.Context, parentID string) ([]T, error) {
	kind := s.cfg.ParentKind
	parentID = strings.TrimSpace(parentID)
	if s.cfg.Endpoints.ByParent == nil {
		return nil, s.reject(kind, apperrors.Configuration(
			fmt.Sprintf("%s cannot be listed by parent", s.cfg.Label), nil))
	}
	if parentID == "" {
		return nil, s.reject(kind, apperrors.Validation("parent id is required", nil))
	}

	started := s.begin(kind)
	s.mu.Lock()
	s.requestedParent = parentID
	s.mu.Unlock()

	raw, err := s.req.Get(ctx, s.cfg.Endpoints.ByParent(parentID))
	if err != nil {
		return nil, s.fail(kind, started, err)
	}

	items := s.decodeList(kind, raw)
	s.mu.Lock()
	stale := s.requestedParent != parentID
	if !stale {
		s.replace(items)
		s.parentID = parentID
	}
	s.mu.Unlock()

	if stale {
		s.log.Debug().Str("parent_id", parentID).Msg("discarding stale parent fetch")
	}
	s.succeed(ctx, kind, started, "")
	return items, nil
}

// FetchByID loads one record into the current slot; the collection is not
// touched. Failure clears the current slot.
func (s *Store[T]) FetchByID(ctx context.Context, id string) (T, error) {
	const kind = KindGetByID
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, s.reject(kind, apperrors.Validation("id is required", nil))
	}

	started := s.begin(kind)
	raw, err := s.req.Get(ctx, s.cfg.Endpoints.item(id))
	if err != nil {
		s.mu.Lock()
		s.current = nil
		s.bump()
		s.mu.Unlock()
		return zero, s.fail(kind, started, err)
	}

	rec, err := api.DecodeOne[T](raw)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("unexpected response shape")
		s.mu.Lock()
		s.current = nil
		s.bump()
		s.mu.Unlock()
		return zero, s.fail(kind, started, err)
	}

	s.mu.Lock()
	s.current = &rec
	s.bump()
	s.mu.Unlock()

	s.succeed(ctx, kind, started, id)
	return rec, nil
}

// Create posts payload and inserts the returned record at the front of the
// collection unless a record with that id is already there. The new record
// becomes current.
func (s *Store[T]) Create(ctx context.Context, payload interface{}) (T, error) {
	const kind = KindAdd
	var zero T
	if err := validatePayload(s.cfg.Validator, payload); err != nil {
		return zero, s.reject(kind, err)
	}

	started := s.begin(kind)
	raw, err := s.req.Post(ctx, s.cfg.Endpoints.Collection, payload)
	if err != nil {
		return zero, s.fail(kind, started, err)
	}

	rec, err := api.DecodeOne[T](raw)
	if err != nil || rec.GetID() == "" {
		// The server accepted the record; without an id it cannot be keyed,
		// so the list is left for the next refresh.
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("created record has no usable id")
		s.succeed(ctx, kind, started, "")
		return rec, nil
	}

	s.mu.Lock()
	s.coll.PushFront(rec)
	s.current = &rec
	s.bump()
	s.mu.Unlock()

	s.succeed(ctx, kind, started, rec.GetID())
	return rec, nil
}

// Update puts payload and merges the returned fields over the stored record.
func (s *Store[T]) Update(ctx context.Context, id string, payload interface{}) (T, error) {
	var zero T
	if err := validatePayload(s.cfg.Validator, payload); err != nil {
		return zero, s.reject(KindUpdate, err)
	}
	return s.Apply(ctx, KindUpdate, id, payload, func(ctx context.Context, r api.Requester, path string) (json.RawMessage, error) {
		return r.Put(ctx, path, payload)
	})
}

// Call performs the request behind a custom action. path is the record's
// item path.
type Call func(ctx context.Context, r api.Requester, path string) (json.RawMessage, error)

// Apply runs a record-level mutation under kind and shallow-merges its
// response into the collection and the current slot. Records that are in
// neither are not added. payload is merged instead when the response carries
// no object.
func (s *Store[T]) Apply(ctx context.Context, kind OperationKind, id string, payload interface{}, call Call) (T, error) {
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, s.reject(kind, apperrors.Validation("id is required", nil))
	}

	started := s.begin(kind)
	raw, err := call(ctx, s.req, s.cfg.Endpoints.item(id))
	if err != nil {
		return zero, s.fail(kind, started, err)
	}

	p, fromResponse, err := patchFrom(raw, payload)
	if err != nil {
		return zero, s.fail(kind, started, err)
	}
	if !fromResponse {
		s.log.Debug().Str("kind", string(kind)).Msg("response carried no record, merging sent payload")
	}
	// The id in the path is authoritative.
	p["id"], _ = json.Marshal(id)

	s.mu.Lock()
	result, mergeErr := s.mergeLocked(id, p)
	s.mu.Unlock()
	if mergeErr != nil {
		s.log.Warn().Err(mergeErr).Str("kind", string(kind)).Msg("could not merge update response")
	}

	s.succeed(ctx, kind, started, id)
	return result, nil
}

func (s *Store[T]) mergeLocked(id string, p patch) (T, error) {
	var result T
	var err error
	changed := false

	if old, ok := s.coll.Get(id); ok {
		if result, err = merge(old, p); err != nil {
			return old, err
		}
		s.coll.Set(id, result)
		changed = true
		if s.current != nil && (*s.current).GetID() == id {
			cur := result
			s.current = &cur
		}
	} else if s.current != nil && (*s.current).GetID() == id {
		if result, err = merge(*s.current, p); err != nil {
			return *s.current, err
		}
		cur := result
		s.current = &cur
		changed = true
	} else {
		result, err = decodePatch[T](p)
	}

	if changed {
		s.bump()
	}
	return result, err
}

// Remove deletes id on the server, then locally. An id the collection does
// not hold is not an error.
func (s *Store[T]) Remove(ctx context.Context, id string) (string, error) {
	const kind = KindDelete
	id = strings.TrimSpace(id)
	if id == "" {
		return "", s.reject(kind, apperrors.Validation("id is required", nil))
	}

	started := s.begin(kind)
	if _, err := s.req.Delete(ctx, s.cfg.Endpoints.item(id)); err != nil {
		return "", s.fail(kind, started, err)
	}

	s.mu.Lock()
	removed := s.coll.Delete(id)
	clearedCurrent := false
	if s.current != nil && (*s.current).GetID() == id {
		s.current = nil
		clearedCurrent = true
	}
	if removed || clearedCurrent {
		s.bump()
	}
	s.mu.Unlock()

	s.succeed(ctx, kind, started, id)
	return id, nil
}

// Items returns a copy of the collection in order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll.Values()
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll.Get(id)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll.Len()
}

func (s *Store[T]) Current() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		var zero T
		return zero, false
	}
	return *s.current, true
}

// SetCurrent selects a record already held in the collection.
func (s *Store[T]) SetCurrent(id string) bool {
	s.mu.Lock()
	rec, ok := s.coll.Get(id)
	if ok {
		s.current = &rec
		s.bump()
	}
	s.mu.Unlock()
	if ok {
		s.emit("")
	}
	return ok
}

func (s *Store[T]) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.bump()
	s.mu.Unlock()
	s.emit("")
}

// ParentID is the parent the collection currently represents, empty after a
// full fetch.
func (s *Store[T]) ParentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parentID
}

func (s *Store[T]) Loading(kind OperationKind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.loading[kind]
}

func (s *Store[T]) Err(kind OperationKind) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.errors[kind]
}

func (s *Store[T]) Success(kind OperationKind) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.success[kind]
}

func (s *Store[T]) Status(kind OperationKind) OperationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.status(kind)
}

// ResetStatus clears the error and success message of kind, e.g. once the
// presentation layer has shown them.
func (s *Store[T]) ResetStatus(kind OperationKind) {
	s.mu.Lock()
	s.board.reset(kind)
	s.mu.Unlock()
	s.emit(kind)
}

// Sort re-orders the collection. Equal records keep their order.
func (s *Store[T]) Sort(less func(a, b T) bool) {
	s.mu.Lock()
	s.coll.SortStable(less)
	s.bump()
	s.mu.Unlock()
	s.emit("")
}

// Version increases on every change to the collection or the current slot.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot is a consistent copy of the store's state for the presentation layer.
type Snapshot[T model.Entity] struct {
	Entity          string                            `json:"entity"`
	Items           []T                               `json:"items"`
	Current         *T                                `json:"current"`
	ParentID        string                            `json:"parentId,omitempty"`
	Loading         map[OperationKind]bool            `json:"loading"`
	Errors          map[OperationKind]string          `json:"errors"`
	SuccessMessages map[OperationKind]string          `json:"successMessages"`
	Statuses        map[OperationKind]OperationStatus `json:"statuses"`
	Version         uint64                            `json:"version"`
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot[T]{
		Entity:          s.cfg.Entity,
		Items:           s.coll.Values(),
		ParentID:        s.parentID,
		Loading:         copyMap(s.board.loading),
		Errors:          copyMap(s.board.errors),
		SuccessMessages: copyMap(s.board.success),
		Statuses:        make(map[OperationKind]OperationStatus),
		Version:         s.version,
	}
	if s.current != nil {
		cur := *s.current
		snap.Current = &cur
	}
	for kind := range s.board.loading {
		snap.Statuses[kind] = s.board.status(kind)
	}
	for kind := range s.board.errors {
		snap.Statuses[kind] = s.board.status(kind)
	}
	return snap
}

// Subscribe registers fn for every state change and returns its cancel func.
// fn runs on the goroutine that changed the state and must not block.
func (s *Store[T]) Subscribe(fn func(Change)) func() {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store[T]) begin(kind OperationKind) time.Time {
	s.mu.Lock()
	s.board.begin(kind)
	s.mu.Unlock()
	s.emit(kind)
	return time.Now()
}

// reject records a failure that never reached the network.
func (s *Store[T]) reject(kind OperationKind, err error) error {
	s.mu.Lock()
	s.board.fail(kind, api.Message(err))
	s.mu.Unlock()
	s.cfg.Metrics.ObserveOperation(s.cfg.Entity, string(kind), string(StatusFailed), time.Now())
	s.log.Debug().Str("kind", string(kind)).Str("error", err.Error()).Msg("operation rejected before request")
	s.emit(kind)
	return err
}

func (s *Store[T]) fail(kind OperationKind, started time.Time, err error) error {
	reqErr := api.AsRequestError(err)
	msg := api.Message(reqErr)

	s.mu.Lock()
	s.board.fail(kind, msg)
	s.mu.Unlock()

	s.cfg.Metrics.ObserveOperation(s.cfg.Entity, string(kind), string(StatusFailed), started)
	s.log.Warn().Err(err).Str("kind", string(kind)).Msg(msg)
	s.emit(kind)
	return reqErr
}

func (s *Store[T]) succeed(ctx context.Context, kind OperationKind, started time.Time, id string) {
	s.mu.Lock()
	s.board.succeed(kind, s.successMessage(kind))
	size := s.coll.Len()
	s.mu.Unlock()

	s.cfg.Metrics.ObserveOperation(s.cfg.Entity, string(kind), string(StatusSucceeded), started)
	s.cfg.Metrics.SetCollectionSize(s.cfg.Entity, size)
	s.log.Debug().Str("kind", string(kind)).Int("size", size).Dur("latency", time.Since(started)).Msg("operation succeeded")
	s.emit(kind)
	s.notify(ctx, kind, id)
}

func (s *Store[T]) notify(ctx context.Context, kind OperationKind, id string) {
	topics := s.cfg.NotifyOnSuccess[kind]
	if len(topics) == 0 || s.cfg.Notifier == nil {
		return
	}
	ev := Event{Entity: s.cfg.Entity, Kind: kind, ID: id}
	for _, topic := range topics {
		if err := s.cfg.Notifier.Notify(ctx, topic, ev); err != nil {
			s.log.Warn().Err(err).Str("topic", topic).Msg("refresh notification failed")
		}
	}
}

func (s *Store[T]) successMessage(kind OperationKind) string {
	if msg, ok := s.cfg.Messages[kind]; ok && msg != "" {
		return msg
	}
	switch kind {
	case KindGetAll, KindGetByPatient, s.cfg.ParentKind:
		return s.cfg.Label + " list loaded"
	case KindGetByID:
		return s.cfg.Label + " loaded"
	case KindAdd:
		return s.cfg.Label + " added successfully"
	case KindDelete:
		return s.cfg.Label + " deleted successfully"
	}
	return s.cfg.Label + " updated successfully"
}

func (s *Store[T]) decodeList(kind OperationKind, raw json.RawMessage) []T {
	items, err := api.DecodeList[T](raw)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("unexpected list shape, using empty list")
	}
	return items
}

// replace must be called with mu held.
func (s *Store[T]) replace(items []T) {
	if dropped := s.coll.Replace(items); dropped > 0 {
		s.log.Warn().Int("dropped", dropped).Msg("records without a unique id were skipped")
	}
	s.bump()
}

func (s *Store[T]) bump() {
	s.version++
}

func (s *Store[T]) emit(kind OperationKind) {
	s.mu.RLock()
	ch := Change{Entity: s.cfg.Entity, Kind: kind, Version: s.version}
	if kind != "" {
		ch.Status = s.board.status(kind)
	}
	s.mu.RUnlock()

	s.listenersMu.Lock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}
