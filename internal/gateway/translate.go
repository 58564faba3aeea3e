package gateway

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusToHTTP maps a gRPC status code to the HTTP status the gateway
// returns to REST clients, per spec.md §4.G's table exactly.
func statusToHTTP(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the JSON body the gateway writes for a non-OK gRPC
// response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError translates err (a gRPC status error, or any other error
// treated as codes.Unknown) into the matching HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	st, _ := status.FromError(err)
	httpStatus := statusToHTTP(st.Code())
	writeJSON(w, httpStatus, errorResponse{Code: st.Code().String(), Message: st.Message()})
}
