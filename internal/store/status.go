package store

// OperationKind labels an independent async action on a store.
type OperationKind string

const (
	KindGetAll       OperationKind = "getAll"
	KindGetByID      OperationKind = "getById"
	KindGetByPatient OperationKind = "getByPatient"
	KindAdd          OperationKind = "add"
	KindUpdate       OperationKind = "update"
	KindDelete       OperationKind = "delete"
)

type OperationStatus string

const (
	StatusIdle      OperationStatus = "idle"
	StatusPending   OperationStatus = "pending"
	StatusSucceeded OperationStatus = "succeeded"
	StatusFailed    OperationStatus = "failed"
)

// statusBoard is the loading/error/success triple, one slot per kind.
type statusBoard struct {
	loading map[OperationKind]bool
	errors  map[OperationKind]string
	success map[OperationKind]string
}

func newStatusBoard() statusBoard {
	return statusBoard{
		loading: make(map[OperationKind]bool),
		errors:  make(map[OperationKind]string),
		success: make(map[OperationKind]string),
	}
}

func (b statusBoard) begin(kind OperationKind) {
	b.loading[kind] = true
	delete(b.errors, kind)
	delete(b.success, kind)
}

func (b statusBoard) succeed(kind OperationKind, msg string) {
	b.loading[kind] = false
	delete(b.errors, kind)
	b.success[kind] = msg
}

func (b statusBoard) fail(kind OperationKind, msg string) {
	b.loading[kind] = false
	delete(b.success, kind)
	b.errors[kind] = msg
}

func (b statusBoard) reset(kind OperationKind) {
	delete(b.errors, kind)
	delete(b.success, kind)
}

func (b statusBoard) status(kind OperationKind) OperationStatus {
	switch {
	case b.loading[kind]:
		return StatusPending
	case b.errors[kind] != "":
		return StatusFailed
	case b.success[kind] != "":
		return StatusSucceeded
	}
	return StatusIdle
}

func copyMap[V any](m map[OperationKind]V) map[OperationKind]V {
	out := make(map[OperationKind]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
