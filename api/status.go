package api

// Status is the standard error body returned alongside non-2xx responses.
type Status struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func newStatus(code int, reason string) Status {
	return Status{Code: code, Reason: reason}
}
