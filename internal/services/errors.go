package services

import (
	"errors"
	"fmt"

	"holiday-service/internal/repositories"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTarget      = fmt.Errorf("%w: invalid target", ErrConflict)
	ErrInvalidState       = errors.New("invalid state")
	ErrBlocked            = errors.New("blocked")
	ErrConversationClosed = errors.New("conversation closed")
	ErrValidation         = errors.New("validation failed")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// notFound translates the repository sentinel, leaving other errors wrapped.
func notFound(what string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
