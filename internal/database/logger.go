package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger sends gorm's output to zerolog. Levels are decided by the
// zerolog logger, LogMode is a no-op.
type gormLogger struct {
	logger zerolog.Logger
}

func newGormLogger(logger zerolog.Logger) gormlogger.Interface {
	return &gormLogger{logger: logger}
}

func (l *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	l.logger.Info().Msgf(msg, args...)
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.logger.Warn().Msgf(msg, args...)
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	l.logger.Error().Msgf(msg, args...)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	var event *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		event = l.logger.Error().Err(err)
	case elapsed > slowQueryThreshold:
		event = l.logger.Warn()
	default:
		event = l.logger.Trace()
	}
	if !event.Enabled() {
		return
	}

	query, rows := fc()
	event.
		Str("sql", query).
		Int64("rows", rows).
		Dur("elapsed", elapsed).
		Msg("query")
}
