package common

import "time"

const (
	// MaxWarningsBeforeTimeout is the number of violations tolerated before a
	// timeout is issued; the next violation after the timeout ends the stream.
	MaxWarningsBeforeTimeout = 2

	DefaultTimeoutDuration = 60 * time.Second

	StrategyKeyword = "keyword"
	StrategyModel   = "model"
	StrategyRemote  = "remote"
)
