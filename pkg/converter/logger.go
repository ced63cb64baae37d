package converter

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger installs the logger for conversion diagnostics
func SetLogger(l *zap.Logger) {
	logger = l.Named("converter")
}
