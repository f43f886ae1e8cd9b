package repositories

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

const msgPrefix = "[DB] "

// GormLogger routes gorm's query log through zap, preferring the logger carried in ctx.
type GormLogger struct {
	base          *zap.Logger
	level         glogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(base *zap.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{base: base, level: glogger.Warn, slowThreshold: slowThreshold}
}

func (l *GormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	newLogger := *l
	newLogger.level = level
	return &newLogger
}

func (l *GormLogger) Info(_ context.Context, s string, i ...interface{}) {
	if l.level >= glogger.Info {
		l.base.Sugar().Infof(msgPrefix+s, i...)
	}
}

func (l *GormLogger) Warn(_ context.Context, s string, i ...interface{}) {
	if l.level >= glogger.Warn {
		l.base.Sugar().Warnf(msgPrefix+s, i...)
	}
}

func (l *GormLogger) Error(_ context.Context, s string, i ...interface{}) {
	if l.level >= glogger.Error {
		l.base.Sugar().Errorf(msgPrefix+s, i...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= glogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= glogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.base.Error(msgPrefix+"query failed", zap.Error(err), zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows), zap.String("sql", sql))
	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.level >= glogger.Warn:
		sql, rows := fc()
		l.base.Warn(msgPrefix+"slow query", zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows), zap.String("sql", sql))
	case l.level >= glogger.Info:
		sql, rows := fc()
		l.base.Debug(msgPrefix+"query", zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
