package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to w (stderr if nil). Debug
// enables debug level messages and caller information.
func NewLogger(debug bool, w io.Writer) *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("%-5s", l.CapitalString()))
	}
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
		cfg.CallerKey = "call"
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
	}

	if w == nil {
		w = os.Stderr
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)

	if debug {
		return zap.New(core, zap.AddCaller())
	}

	return zap.New(core)
}
