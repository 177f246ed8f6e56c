package domain

// SyncSummary is the outcome of a sync run that was not aborted by a fatal error.
type SyncSummary struct {
	RunID     string   `json:"run_id"`
	Synced    int      `json:"synced"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Amenities int      `json:"amenities"`
	Errors    []string `json:"errors"`
	// Conflicts lists store-level slug collisions. These should never happen;
	// each one points at a slug resolution ordering bug.
	Conflicts []string `json:"conflicts,omitempty"`
}

const (
	SyncStatusOK      = "ok"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

func (s SyncSummary) Status() string {
	if len(s.Errors) > 0 || len(s.Conflicts) > 0 {
		return SyncStatusPartial
	}
	return SyncStatusOK
}
