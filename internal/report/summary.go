package report

// ErrObj is the structured-error half of a Summary: a short
// machine-readable code plus the error's human-readable detail.
type ErrObj struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Summary is the JSON contract a `run` invocation writes to stdout
// (`sweep` writes its aggregated metrics instead): either a populated
// Metrics on success, or an
// ErrObj describing why the run was rejected. Never both.
type Summary struct {
	OK      bool     `json:"ok"`
	Metrics *Metrics `json:"metrics,omitempty"`
	Err     *ErrObj  `json:"error,omitempty"`
}

// OKSummary wraps a successful run's Metrics.
func OKSummary(m Metrics) Summary {
	return Summary{OK: true, Metrics: &m}
}

// FailedSummary wraps a rejected run's error under a code, e.g. the
// config validation error returned by simserver.Config.Validate.
func FailedSummary(code string, err error) Summary {
	return Summary{OK: false, Err: &ErrObj{Code: code, Detail: err.Error()}}
}
