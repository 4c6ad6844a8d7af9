package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/reviewhub/pkg/log"
	"gorm.io/gorm/logger"
)

/**
 * @file: gorm_logger.go
 * @description: gorm log routed through pkg/log
 */

type GormLogger struct {
	Config logger.Config
}

func NewGormLogger(config logger.Config) *GormLogger {
	return &GormLogger{Config: config}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *l
	c.Config.LogLevel = level
	return &c
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel < logger.Info {
		return
	}
	log.Infof(msg, data...)
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel < logger.Warn {
		return
	}
	log.Warnf(msg, data...)
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel < logger.Error {
		return
	}
	log.Errorf(msg, data...)
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error &&
		(!errors.Is(err, logger.ErrRecordNotFound) || !l.Config.IgnoreRecordNotFoundError):
		log.Errorw("sql failed", "sql", sql, "rows", rows, "elapsed", elapsed.String(), "error", err)
	case l.Config.SlowThreshold != 0 && elapsed > l.Config.SlowThreshold && l.Config.LogLevel >= logger.Warn:
		log.Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed.String())
	case l.Config.LogLevel == logger.Info:
		log.Debugw("sql", "sql", sql, "rows", rows, "elapsed", elapsed.String())
	}
}
