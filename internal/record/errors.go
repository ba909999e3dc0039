package record

import "errors"

var (
	ErrFormat       = errors.New("record: structural violation in document stream")
	ErrClassMissing = errors.New("record: expected class not found before end of document")
)
