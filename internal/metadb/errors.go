package metadb

import "fmt"

// Kind enumerates the DAL failure modes surfaced to callers (§4.B). These
// map 1:1 onto the gRPC status codes named in spec.md §7; the mapping
// itself lives at the RPC boundary (internal/grpcapi), not here, so that
// metadb stays transport-agnostic.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindInvalidArgument
	KindFailedPrecondition
	KindWrongType
	KindUnavailable
	KindDeadlineExceeded
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindFailedPrecondition:
		return "failed_precondition"
	case KindWrongType:
		return "wrong_type"
	case KindUnavailable:
		return "unavailable"
	case KindDeadlineExceeded:
		return "deadline_exceeded"
	default:
		return "internal"
	}
}

// Error is the DAL's classified error type. Err keeps the backend's own
// error (driver errors, constraint names) for logging; the gRPC boundary
// (internal/grpcapi) sends clients only the Kind's status code and Msg,
// never Err's text.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadb: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("metadb: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
