package weather

import "fmt"

// AuthError reports credentials rejected by an upstream provider. It is
// never retried; the service key needs fixing, not the request.
type AuthError struct {
	Source string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: upstream rejected service key", e.Source)
}

// TransportError reports a network failure, timeout or non-2xx response
// from an upstream provider. Status is 0 when no response was received.
type TransportError struct {
	Source string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d", e.Source, e.Status)
	}
	return fmt.Sprintf("%s: upstream request failed: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response whose shape did not match the expected
// envelope. Never retried; retrying cannot fix a malformed document.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed upstream response: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
