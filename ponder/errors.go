package ponder

import "errors"

// ErrInvalidState is returned by StartPrecomputation when the controller is
// not Idle. It is the only error the controller surfaces to its caller;
// every per-worker failure is swallowed and reported as an empty result
// instead.
var ErrInvalidState = errors.New("ponder: controller is not idle")
