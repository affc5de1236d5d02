package resumes

import "errors"

// ErrNotFound indicates the record does not exist.
var ErrNotFound = errors.New("resume not found")
