// Package obs holds the module's shared structured-logging construction.
// The resource cache and the mapclient.Map facade take a *zap.SugaredLogger
// tagged with its own "component" field (traversal, navigation and the
// fetcher bridge take none),
// replacing the ad-hoc log.Printf prefixing the teacher uses.
package obs

import "go.uber.org/zap"

// New builds a production zap logger. Callers that already have a logger
// (e.g. a host embedding the module) should call With instead of New.
func New() (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// With tags a logger with a subsystem/component name.
func With(l *zap.SugaredLogger, component string) *zap.SugaredLogger {
	return l.With("component", component)
}
