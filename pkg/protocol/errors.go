package protocol

import "fmt"

// MalformedRecordError reports a log line or document that could not be
// decoded into its record type. Callers treat the record as absent.
type MalformedRecordError struct {
	Source string // file path or state key
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record in %s: %v", e.Source, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
