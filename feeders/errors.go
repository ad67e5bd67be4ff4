package feeders

import "errors"

// Env feeder errors
var (
	ErrEnvInvalidStructure     = errors.New("env: invalid structure")
	ErrEnvEmptyPrefixAndSuffix = errors.New("env: prefix or suffix cannot be empty")
	ErrEnvCannotConvert        = errors.New("env: cannot convert value to field type")
)
