package advisor

import "errors"

// Failure classes of an advice request. Every error returned by Advise wraps
// exactly one of them.
var (
	ErrTransport        = errors.New("ai service unreachable")
	ErrAuth             = errors.New("ai service authentication failed")
	ErrModelUnavailable = errors.New("ai model unavailable")
	ErrUpstream         = errors.New("ai service failed")
)
