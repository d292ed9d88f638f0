package pathpattern

import "errors"

var (
	ErrUnsupportedPattern = errors.New("unsupported pattern type")
	ErrNilPattern         = errors.New("pattern cannot be nil")

	// Template parsing errors
	ErrInvalidRegexp    = errors.New("invalid regexp pattern in route param")
	ErrWildcardPosition = errors.New("wildcard '*' must be the last pattern in a route")
	ErrParamDelimiter   = errors.New("route param closing delimiter '}' is missing")
	ErrDuplicateParam   = errors.New("routing pattern contains duplicate param key")
	ErrEmptyParamName   = errors.New("route param name cannot be empty")
)
