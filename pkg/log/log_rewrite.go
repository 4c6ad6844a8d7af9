package log

import "go.uber.org/zap"

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(args ...any) { current().Debug(args...) }

func Debugf(format string, args ...any) { current().Debugf(format, args...) }

func Debugw(msg string, keysAndValues ...any) { current().Debugw(msg, keysAndValues...) }

func Info(args ...any) { current().Info(args...) }

func Infof(format string, args ...any) { current().Infof(format, args...) }

func Infow(msg string, keysAndValues ...any) { current().Infow(msg, keysAndValues...) }

func Warn(args ...any) { current().Warn(args...) }

func Warnf(format string, args ...any) { current().Warnf(format, args...) }

func Warnw(msg string, keysAndValues ...any) { current().Warnw(msg, keysAndValues...) }

func Error(args ...any) { current().Error(args...) }

func Errorf(format string, args ...any) { current().Errorf(format, args...) }

func Errorw(msg string, keysAndValues ...any) { current().Errorw(msg, keysAndValues...) }

func Fatal(args ...any) { current().Fatal(args...) }

func Fatalf(format string, args ...any) { current().Fatalf(format, args...) }
