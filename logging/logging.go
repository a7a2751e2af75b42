package logging

import "go.uber.org/zap"

// InitLogger builds the SugaredLogger shared by every package. Each
// package grabs its own copy in an init() so log lines carry the right
// caller.
func InitLogger() *zap.SugaredLogger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	return logger.Sugar()
}
