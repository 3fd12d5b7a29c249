package logger

import (
	"go.uber.org/zap"
)

// Log is the structured logger shared across the application.
// SLog is its sugared counterpart for printf-style call sites.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

// Init configures the global loggers for the given environment.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	if environment == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	Log = l
	SLog = l.Sugar()
	return nil
}

func init() {
	// Safe defaults so packages can log before Init runs (e.g. in tests).
	Log = zap.NewNop()
	SLog = Log.Sugar()
}
