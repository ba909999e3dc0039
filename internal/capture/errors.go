package capture

import "errors"

var (
	ErrFormat   = errors.New("capture: structural violation loading image group")
	ErrNotFound = errors.New("capture: expected document or data file not found")
)
