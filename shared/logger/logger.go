package logger

import (
	logger "github.com/sirupsen/logrus"
	"github.com/yongjun823/sagemaker-example/shared/environment"
)

// Log is the logger shared by every function, it emits JSON lines so the
// fields can be indexed by the log aggregator
var Log = logger.New()

func init() {
	Log.SetFormatter(&logger.JSONFormatter{})

	level, err := logger.ParseLevel(environment.GetString("LOG_LEVEL", "info"))
	if err != nil {
		level = logger.InfoLevel
	}
	Log.SetLevel(level)
}
