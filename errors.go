package report

import "errors"

// Sentinel errors for programmatic error handling.
var (
	ErrUnknownFormat        = errors.New("unknown format")
	ErrRequiredOptionNotSet = errors.New("required option not set")
	ErrStageAlreadyDefined  = errors.New("stage already defined")
	ErrControllerNotSet     = errors.New("controller not set")
	ErrTemplateNotDefined   = errors.New("template not defined")
	ErrMissingInterface     = errors.New("missing required interface")
	ErrInvalidTemplate      = errors.New("invalid template")
	ErrConflictingOptions   = errors.New("conflicting options")
)
