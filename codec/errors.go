package codec

import "errors"

var (
	// ErrNoDocument is returned when the input holds no object: it is empty,
	// whitespace only, or a null literal.
	ErrNoDocument = errors.New("no document in input")
	// ErrUnknownCodec is returned by Lookup for an unregistered name.
	ErrUnknownCodec = errors.New("unknown codec")
)
