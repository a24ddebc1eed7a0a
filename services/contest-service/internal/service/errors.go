package service

import (
	"errors"
	"fmt"

	"dailyart/services/contest-service/internal/repository"
)

var (
	ErrDuplicateSubmission        = errors.New("user already submitted an entry for this period")
	ErrInvalidReference           = errors.New("image reference is empty or does not exist")
	ErrIncompleteVote             = errors.New("all three places must be selected")
	ErrAlreadyVoted               = errors.New("user already voted in this period")
	ErrDuplicateSelection         = errors.New("the same submission cannot be selected more than once")
	ErrSelfVote                   = errors.New("users cannot vote for their own submission")
	ErrUnknownSubmission          = errors.New("submission does not belong to this period")
	ErrStaleSubmission            = errors.New("submission changed or period ended while voting")
	ErrStorageTimeout             = errors.New("storage operation timed out")
	ErrStorageConstraintViolation = errors.New("storage constraint violated")

	ErrInvalidInput        = errors.New("invalid input")
	ErrPeriodOpen          = errors.New("period is still open")
	ErrPeriodAlreadyClosed = errors.New("period already closed")
	ErrEmailTaken          = errors.New("email is already in use")
	ErrUsernameTaken       = errors.New("username is already in use")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
)

// storageErr maps a repository error onto the generic storage kinds. Callers
// translate operation specific constraint failures before falling back to it.
func storageErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrTimeout):
		return fmt.Errorf("%s: %w: %w", op, ErrStorageTimeout, err)
	case errors.Is(err, repository.ErrDuplicateKey),
		errors.Is(err, repository.ErrForeignKey),
		errors.Is(err, repository.ErrRowMissing):
		return fmt.Errorf("%s: %w: %w", op, ErrStorageConstraintViolation, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// invalidInput wraps a validation error so both ErrInvalidInput and the
// underlying validator errors can be recovered with errors.Is / errors.As.
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
