package advisory

// Call statuses attached to every advisory-derived section.
const (
	StatusPending = "pending"
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// Meta records how an advisory section was produced so callers can tell
// model output from heuristic fallback data.
type Meta struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func metaDisabled() Meta {
	return Meta{Enabled: false, Status: StatusEmpty}
}

func metaError(model string, err error) Meta {
	msg := err.Error()
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return Meta{Enabled: true, Model: model, Status: StatusError, Error: msg}
}
