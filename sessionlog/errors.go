package sessionlog

import "errors"

// ErrPathRequired indicates a file sink was created without a path.
var ErrPathRequired = errors.New("log file path is required")
