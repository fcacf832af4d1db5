// README: zap logger constructor shared by the binary and background jobs.
package logging

import "go.uber.org/zap"

// New creates a production zap logger; falls back to a no-op on init failure
// so the binary never dies for want of a logger.
func New() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
