package arena

import "errors"

var ErrSessionNotFound = errors.New("session_not_found")
