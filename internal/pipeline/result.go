package pipeline

import "github.com/infradyn/docextract/internal/common"

// Result is the uniform envelope every pipeline operation returns. Failures
// are data, not transport errors: Success is false, Error carries the
// caller-facing message, and ErrorKind its machine classification.
type Result struct {
	Success   bool             `json:"success"`
	Data      any              `json:"data,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorKind common.ErrorKind `json:"error_kind,omitempty"`
}

func ok(data any) Result {
	return Result{Success: true, Data: data}
}

func fail(err error) Result {
	return Result{
		Success:   false,
		Error:     common.MessageOf(err),
		ErrorKind: common.KindOf(err),
	}
}
