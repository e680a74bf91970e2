package tool

import "fmt"

// Envelope is the common trailer of every tool result: an execution flag
// plus the captured failure texts. Tools embed it in their typed result
// structs so errors travel inside the payload instead of crossing the
// tool boundary as Go errors.
type Envelope struct {
	ExecutionSuccessful bool     `json:"execution_successful"`
	Errors              []string `json:"errors,omitempty"`
}

// Succeed marks the envelope as successful.
func (e *Envelope) Succeed() {
	e.ExecutionSuccessful = true
}

// Fail clears the success flag and records the text of every non-nil error.
func (e *Envelope) Fail(errs ...error) {
	e.ExecutionSuccessful = false

	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err.Error())
		}
	}
}

// Failf records a formatted failure message.
func (e *Envelope) Failf(format string, args ...interface{}) {
	e.Fail(fmt.Errorf(format, args...))
}
