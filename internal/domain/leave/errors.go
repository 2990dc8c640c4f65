package leave

import "errors"

var ErrRowNotFound = errors.New("leave row not found")
