package oracle

import "fmt"

// OracleUnavailableError indicates the language-model backend could not
// produce a usable reply (network failure, quota, empty response).
type OracleUnavailableError struct {
	Message string
	Cause   error
}

func (e *OracleUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("oracle unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("oracle unavailable: %s", e.Message)
}

func (e *OracleUnavailableError) Unwrap() error {
	return e.Cause
}
