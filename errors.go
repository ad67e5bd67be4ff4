package projects

import (
	"errors"

	"github.com/GoCodeAlone/projects/archive"
	"github.com/GoCodeAlone/projects/codec"
)

// Document errors
var (
	// Usage errors
	ErrNotSaveable        = errors.New("document path is not writable")
	ErrInvalidCompression = errors.New("invalid compression")
	ErrClosed             = errors.New("document is closed")
	ErrNoPath             = errors.New("document has no path")
	ErrPropertyType       = errors.New("property has an incompatible type")
	ErrNilObserver        = errors.New("observer is nil")
	ErrNotBound           = errors.New("document was not created by New or Open")

	// Archive errors, re-exported so callers need only this package
	ErrNotArchiveMember = archive.ErrNotArchiveMember
	ErrCannotOverwrite  = archive.ErrCannotOverwrite
	ErrInvalidMember    = archive.ErrInvalidMember
	ErrMemberMissing    = archive.ErrMemberMissing

	// Data errors
	ErrNoDocument   = codec.ErrNoDocument
	ErrUnknownCodec = codec.ErrUnknownCodec

	// Config errors
	ErrConfigNil                 = errors.New("config is nil")
	ErrConfigNotPointer          = errors.New("config must be a pointer")
	ErrConfigNotStruct           = errors.New("config must be a struct")
	ErrConfigValidationFailed    = errors.New("config validation failed")
	ErrConfigFeederError         = errors.New("config feeder error")
	ErrDefaultValueParseError    = errors.New("failed to parse default value")
	ErrUnsupportedTypeForDefault = errors.New("unsupported type for default value")
)
