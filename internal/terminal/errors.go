package terminal

import "errors"

// errNoConsoleMode means the platform or device has no console mode to
// change, which is not a failure worth logging.
var errNoConsoleMode = errors.New("no console mode")
