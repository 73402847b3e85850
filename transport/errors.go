package transport

import "errors"

// ErrUnexpectedMessage indicates a count arrived where a block was expected,
// or the reverse. Callers usually see it wrapped in types.ErrTransferIntegrity.
var ErrUnexpectedMessage = errors.New("unexpected message kind")
