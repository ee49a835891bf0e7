package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSelfInvite       = errors.New("cannot invite yourself")
	ErrDuplicateInvite  = errors.New("invitation already exists")
	ErrUnauthenticated  = errors.New("no authenticated user")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// DuplicateInviteError reports the status of the collaborator row that
// blocked a repeated invite.
type DuplicateInviteError struct {
	Status CollaboratorStatus
}

func (e *DuplicateInviteError) Error() string {
	return fmt.Sprintf("invitation already exists with status %q", e.Status)
}

func (e *DuplicateInviteError) Is(target error) bool {
	return target == ErrDuplicateInvite
}
