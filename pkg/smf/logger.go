package smf

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger installs the logger used for skipped tracks and other recoverable problems.
func SetLogger(l *zap.Logger) {
	logger = l.Named("smf")
}
