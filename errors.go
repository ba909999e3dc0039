package bioformats

import "errors"

// Error taxonomy. Per-field coercion failures are logged and swallowed
// (see internal/record); these sentinels are for structural and I/O
// failures that abort a document, a group, or a plane read.
var (
	ErrPathSyntax    = errors.New("path does not carry a .sldy or .sldyz suffix")
	ErrNotFound      = errors.New("expected document or data file not found")
	ErrEmptyContainer = errors.New("slide contains no valid image groups")
	ErrFormat        = errors.New("structural violation in container or record stream")
	ErrUnsupported   = errors.New("recognised but unimplemented compression algorithm")
	ErrCoercion      = errors.New("scalar could not be coerced to the declared field type")
)
