package queue

import (
	"github.com/go-arcade/reviewhub/pkg/log"
)

// asynqLoggerAdapter 适配器，将 asynq.Logger 接口适配到 pkg/log
type asynqLoggerAdapter struct{}

func (l *asynqLoggerAdapter) Debug(args ...any) {
	log.Debugw("asynq", "msg", args)
}

func (l *asynqLoggerAdapter) Info(args ...any) {
	log.Infow("asynq", "msg", args)
}

func (l *asynqLoggerAdapter) Warn(args ...any) {
	log.Warnw("asynq", "msg", args)
}

func (l *asynqLoggerAdapter) Error(args ...any) {
	log.Errorw("asynq", "msg", args)
}

// Fatal 不退出进程，由调用方决定
func (l *asynqLoggerAdapter) Fatal(args ...any) {
	log.Errorw("asynq fatal", "msg", args)
}
