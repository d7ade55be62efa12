package main

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MrEthical07/goToken/settings"
)

const (
	modeDevelopment = "development"
	encodingConsole = "console"
	encodingJSON    = "json"
	timeFormat      = "2006-01-02 15:04:05.000"
)

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(timeFormat))
}

// newLogger builds the command's logger from the log settings. Output goes to w.
func newLogger(cfg settings.Log, w io.Writer) (*zap.Logger, error) {
	level, ok := logLevels[cfg.Level]
	if !ok {
		return nil, fmt.Errorf("log level %q is not one of debug, info, warn, error", cfg.Level)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	if cfg.Mode == modeDevelopment {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	encoderCfg.EncodeTime = timeEncoder

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case encodingConsole:
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case encodingJSON, "":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("log encoding %q is not one of json, console", cfg.Encoding)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(level))
	return zap.New(core).Named("gotoken"), nil
}
