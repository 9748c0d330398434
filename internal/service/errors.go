package service

import (
	"errors"

	"hotel-portfolio-api/pkg/apperror"

	"gorm.io/gorm"
)

var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrResourceNotAccessible = errors.New("resource not in accessible set")
	ErrNotSuperAdmin         = errors.New("super admin required")
	ErrExternalUser          = errors.New("internal user required")
	ErrInvalidTransition     = errors.New("invalid pending action transition")
	ErrRetiredAction         = errors.New("retired action type")
	ErrActionNotImplemented  = errors.New("action type not implemented")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserInactive          = errors.New("user account is inactive")
	ErrEmailExists           = errors.New("email already exists")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// notFoundOr maps a missing record to NotFound and anything else to Internal.
func notFoundOr(err error, format string, args ...interface{}) error {
	if isNotFound(err) {
		return apperror.Wrap(apperror.KindNotFound, err, format, args...)
	}
	return apperror.Internal(err, format, args...)
}
