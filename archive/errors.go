package archive

import "errors"

// Archive errors
var (
	// Usage errors
	ErrNotArchiveMember = errors.New("the requested file was not part of the archive")
	ErrEmptyFileName    = errors.New("file name is empty")
	ErrStagerClosed     = errors.New("stager is closed")

	// Environment errors
	ErrCannotOverwrite = errors.New("cannot overwrite the existing file")

	// Data errors
	ErrInvalidMember = errors.New("invalid archive member")
	ErrMemberMissing = errors.New("registered member is missing from the staging directory")
)
