package resource

import (
	"context"
	"encoding/json"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/store"
)

// HospitalizationStore adds the end-of-stay action to the generic store.
// Admissions and discharges change patient status and room availability, so
// both are announced on the refresh topics.
type HospitalizationStore struct {
	*store.Store[model.Hospitalization]
}

func NewHospitalizationStore(req api.Requester, opts Options) *HospitalizationStore {
	cfg := opts.config("hospitalization", "Hospitalization", "/hospitalisations")
	cfg.Endpoints.ByParent = scoped("/hospitalisations", "patient")
	cfg.Messages = map[store.OperationKind]string{
		KindEnd: "Hospitalization ended successfully",
	}
	cfg.NotifyOnSuccess = map[store.OperationKind][]string{
		store.KindAdd: {TopicPatientsRefresh, TopicRoomsRefresh},
		KindEnd:       {TopicPatientsRefresh, TopicRoomsRefresh},
	}
	return &HospitalizationStore{Store: store.New[model.Hospitalization](req, cfg)}
}

// End closes the stay id. The server sets the end date and status; its reply
// is merged into the stored record.
func (s *HospitalizationStore) End(ctx context.Context, id string, req model.EndHospitalizationRequest) (model.Hospitalization, error) {
	return s.Apply(ctx, KindEnd, id, req, func(ctx context.Context, r api.Requester, path string) (json.RawMessage, error) {
		return r.Put(ctx, path+"/terminer", req)
	})
}
