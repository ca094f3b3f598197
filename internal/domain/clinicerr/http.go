package clinicerr

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a domain error to the transport status the HTTP handlers
// return. Storage internals never leak: anything unrecognized becomes 500
// with a generic message at the handler.
func HTTPStatus(err error) int {
	var (
		invalidTime  *InvalidTimeError
		roleMismatch *RoleMismatchError
		invalidRole  *InvalidRoleError
		invalidStat  *InvalidStatusError
		invalidValue *InvalidValueError
		emptyField   *EmptyFieldError
		refProtect   *ReferentialProtectionError
		denied       *PermissionDeniedError
		notify       *NotificationError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &invalidTime),
		errors.As(err, &roleMismatch),
		errors.As(err, &invalidRole),
		errors.As(err, &invalidStat),
		errors.As(err, &invalidValue),
		errors.As(err, &emptyField):
		return http.StatusBadRequest
	case errors.As(err, &refProtect):
		return http.StatusConflict
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.As(err, &notify):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
