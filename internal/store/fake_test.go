package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/model"
)

// fakeRequester answers by "METHOD path". A handler may block, which lets
// tests hold one operation in flight while others run.
type fakeRequester struct {
	mu       sync.Mutex
	handlers map[string]func(ctx context.Context, body interface{}) (json.RawMessage, error)
	calls    []string
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{handlers: make(map[string]func(context.Context, interface{}) (json.RawMessage, error))}
}

func (f *fakeRequester) on(method, path string, fn func(ctx context.Context, body interface{}) (json.RawMessage, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = fn
}

func (f *fakeRequester) reply(method, path, body string) {
	f.on(method, path, func(context.Context, interface{}) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	})
}

func (f *fakeRequester) failWith(method, path string, err error) {
	f.on(method, path, func(context.Context, interface{}) (json.RawMessage, error) {
		return nil, err
	})
}

func (f *fakeRequester) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRequester) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, method+" "+path)
	fn, ok := f.handlers[method+" "+path]
	f.mu.Unlock()
	if !ok {
		return nil, &api.ResponseError{Status: 404, StatusText: "Not Found"}
	}
	return fn(ctx, body)
}

func (f *fakeRequester) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return f.do(ctx, "GET", path, nil)
}

func (f *fakeRequester) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return f.do(ctx, "POST", path, body)
}

func (f *fakeRequester) Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return f.do(ctx, "PUT", path, body)
}

func (f *fakeRequester) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return f.do(ctx, "DELETE", path, nil)
}

type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, topic string, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topic)
	n.events = append(n.events, ev)
	return nil
}

func newPatientStore(req api.Requester) *Store[model.Patient] {
	return New[model.Patient](req, Config{
		Entity: "patient",
		Label:  "Patient",
		Endpoints: Endpoints{
			Collection: "/patients",
		},
	})
}

func newConsultationStore(req api.Requester) *Store[model.Consultation] {
	return New[model.Consultation](req, Config{
		Entity: "consultation",
		Label:  "Consultation",
		Endpoints: Endpoints{
			Collection: "/consultations",
			ByParent: func(id string) string {
				return fmt.Sprintf("/consultations/patient/%s", id)
			},
		},
	})
}
