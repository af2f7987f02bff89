package domain

import "errors"

var (
	// ErrEmployerNotFound signals that the employer id does not resolve.
	ErrEmployerNotFound = errors.New("verification: employer not found")
	// ErrFlagNotFound signals that the flag id is not on the employer record.
	ErrFlagNotFound = errors.New("verification: flag not found")
	// ErrInvalidAction indicates an unknown moderation action.
	ErrInvalidAction = errors.New("verification: invalid action")
	// ErrInvalidInput indicates caller input validation errors.
	ErrInvalidInput = errors.New("verification: invalid input")
	// ErrSuspended blocks self-service resubmission of suspended accounts.
	ErrSuspended = errors.New("verification: employer suspended")
	// ErrConflict means the record changed between read and write.
	ErrConflict = errors.New("verification: concurrent update")
	// ErrLockNotObtained means another request holds the employer lock.
	ErrLockNotObtained = errors.New("verification: employer locked")
)
