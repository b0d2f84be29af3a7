package response

import "errors"

// Kind is the failure taxonomy every response is normalized into.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindRouteNotFound
)

var kindStatus = map[Kind]int{
	KindInternal:      500,
	KindValidation:    400,
	KindConflict:      422,
	KindNotFound:      404,
	KindRouteNotFound: 404,
}

func (k Kind) Status() int { return kindStatus[k] }

// KindOf classifies a final response status. ok is false for non-error
// statuses and for error statuses outside the taxonomy.
func KindOf(status int) (k Kind, ok bool) {
	switch {
	case status == 400:
		return KindValidation, true
	case status == 404:
		return KindNotFound, true
	case status == 422:
		return KindConflict, true
	case status >= 500:
		return KindInternal, true
	}
	return KindInternal, false
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindRouteNotFound:
		return "route_not_found"
	default:
		return "internal"
	}
}

// Fixed client-facing messages for the global tier.
const (
	MsgPageNotFound  = "Page Not Found!"
	MsgUnprocessable = "Unable to process the data!"
	MsgUnavailable   = "Service unavailable. Please come back later."
	MsgAlreadyExists = "Resource already exists!"
	MsgNotFound      = "Requested resource was not found!"
	MsgDeleted       = "Resource deleted successfully!"
)

var ErrRouteNotFound = errors.New("route not found")
