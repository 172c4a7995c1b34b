package transcribe

import "fmt"

// TransientKind classifies a transient recognition failure.
type TransientKind string

const (
	KindRateLimited     TransientKind = "rate_limited"
	KindOverloaded      TransientKind = "overloaded"
	KindConnectionReset TransientKind = "connection_reset"
	KindServerError     TransientKind = "server_error"
)

// TransientError is a recognition-capability failure worth retrying with
// backoff: rate limiting, server overload, or a dropped connection.
type TransientError struct {
	Kind       TransientKind
	StatusCode int
	Message    string
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transient recognition error (%s, status %d): %s", e.Kind, e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("transient recognition error (%s): %s", e.Kind, truncate(e.Message, 200))
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// RefusalError marks a response in which the recognition capability declined
// to transcribe the page instead of returning extracted text. It is retried
// with escalated sampling temperature, not with backoff.
type RefusalError struct {
	Page int
	Text string
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("page %d: recognition refused to transcribe: %q", e.Page, truncate(e.Text, 120))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
