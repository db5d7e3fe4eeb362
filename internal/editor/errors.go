package editor

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoSession       = errors.New("no image open")
	ErrInvalidState    = errors.New("operation not available in current editing state")
	ErrNotAllowed      = errors.New("operation not allowed for this image")
	ErrInProgress      = errors.New("operation already in progress")
	ErrSessionClosed   = errors.New("editor session closed")
	ErrLoadFailed      = errors.New("failed to load image")
	ErrVariantNotFound = errors.New("variant not found")
	ErrPresetNotFound  = errors.New("preset not found")
)
