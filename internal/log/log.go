package log

import "go.uber.org/zap"

var Logger = zap.NewNop()

// Init replaces the no-op logger with a real one. Call once from main.
func Init(env string) {
	var err error
	if env == "production" || env == "prod" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		Logger = zap.NewNop()
	}
}

func Sync() {
	_ = Logger.Sync()
}
