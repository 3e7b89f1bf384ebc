package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuildLoggerLevels(t *testing.T) {
	tests := []struct {
		name                  string
		debug, verbose, quiet bool
		want                  zapcore.Level
	}{
		{"default", false, false, false, zapcore.WarnLevel},
		{"verbose", false, true, false, zapcore.InfoLevel},
		{"quiet", false, false, true, zapcore.ErrorLevel},
		{"debug", true, false, false, zapcore.DebugLevel},
		{"debug wins", true, true, true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := BuildLogger(tt.debug, tt.verbose, tt.quiet)
			if !log.Core().Enabled(tt.want) {
				t.Errorf("level %s disabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
				t.Errorf("level %s enabled", tt.want-1)
			}
		})
	}
}
