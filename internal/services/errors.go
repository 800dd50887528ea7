package services

import (
	"errors"
	"fmt"
)

// Kind classifies service errors so the transport layer can map them to
// responses without knowing every sentinel.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindInvariant
)

type serviceError struct {
	kind Kind
	msg  string
}

func (e *serviceError) Error() string { return e.msg }

func newError(kind Kind, msg string) error {
	return &serviceError{kind: kind, msg: msg}
}

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	var se *serviceError
	if errors.As(err, &se) {
		return se.kind
	}
	return KindInternal
}

var (
	ErrInvalidInput      = newError(KindValidation, "invalid input")
	ErrInvalidEmail      = newError(KindValidation, "username must be a valid email address")
	ErrUsernameTaken     = newError(KindValidation, "username already registered")
	ErrPasswordTooShort  = newError(KindValidation, "password too short")
	ErrInvalidStatus     = newError(KindValidation, "invalid status")
	ErrInvalidRole       = newError(KindValidation, "invalid role")
	ErrInvalidParent     = newError(KindValidation, "parent task must exist in the same project")
	ErrAssigneeNotMember = newError(KindValidation, "assignee must be a member of the project")
	ErrProjectChange     = newError(KindValidation, "tasks cannot be moved between projects")
	ErrImmutableField    = newError(KindValidation, "field cannot be changed")
	ErrWrongPassword     = newError(KindValidation, "current password is incorrect")

	ErrInvalidCredentials = newError(KindAuthentication, "incorrect username or password")
	ErrInvalidToken       = newError(KindAuthentication, "could not validate credentials")

	ErrForbidden = newError(KindAuthorization, "not enough permissions")

	ErrUserNotFound    = newError(KindNotFound, "user not found")
	ErrProjectNotFound = newError(KindNotFound, "project not found")
	ErrMemberNotFound  = newError(KindNotFound, "user is not a member of this project")
	ErrTaskNotFound    = newError(KindNotFound, "task not found")
	ErrCommentNotFound = newError(KindNotFound, "comment not found")

	ErrLastAdmin          = newError(KindInvariant, "at least one active admin must remain")
	ErrLastManager        = newError(KindInvariant, "a project must keep at least one project manager")
	ErrSoleManager        = newError(KindInvariant, "user is the only manager of a project")
	ErrIncompleteSubtasks = newError(KindInvariant, "all subtasks must be completed first")
	ErrAlreadyMember      = newError(KindInvariant, "user is already a member of this project")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
