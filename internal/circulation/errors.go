package circulation

import "errors"

// ErrUnknownHolder is returned when the requester's account no longer exists.
var ErrUnknownHolder = errors.New("holder account does not exist")
