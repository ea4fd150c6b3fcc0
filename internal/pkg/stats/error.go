package stats

import "errors"

var ErrStatsAlreadyInitialized = errors.New("stats already initialized")
