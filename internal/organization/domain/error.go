package domain

import "errors"

var (
	ErrInvalidName    = errors.New("organization name is required")
	ErrInvalidUser    = errors.New("user is required")
	ErrOrgNotFound    = errors.New("organization not found")
	ErrSlugTaken      = errors.New("organization slug already in use")
	ErrNotMember      = errors.New("user is not a member of the organization")
	ErrInvalidRole    = errors.New("invalid member role")
	ErrMemberExists   = errors.New("user is already a member")
	ErrMemberNotFound = errors.New("member not found")
)
