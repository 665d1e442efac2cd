package model

import "errors"

// Sentinel errors returned by the registry and custody engines. The dialog
// layer converts each into a user-facing prompt.
var (
	ErrDuplicateName     = errors.New("name already in use")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrItemUnavailable   = errors.New("item is not available")
	ErrNotHolder         = errors.New("item is held by another user")
	ErrMissingPhoto      = errors.New("photo proof required")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrCategoryNotEmpty  = errors.New("category still has items")
	ErrSessionExpired    = errors.New("session expired")
)
