package logging

import "go.uber.org/zap"

// New returns a sugared zap logger. Development mode logs human-readable
// output at debug level; production mode logs JSON at info level.
func New(development bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Must is New for process entry points that cannot run without a logger.
func Must(development bool) *zap.SugaredLogger {
	sl, err := New(development)
	if err != nil {
		panic("cannot initialize zap: " + err.Error())
	}
	return sl
}
