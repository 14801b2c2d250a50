// Package stdlogger adapts the global zerolog logger to printf style logger interfaces,
// for example the gorm logger.Writer.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to the global zerolog logger.
type Logger struct {
	component string
	level     zerolog.Level // level used by Printf
}

// New returns a Logger tagged with component "std".
func New() *Logger {
	return NewComponent("std", zerolog.InfoLevel)
}

// NewComponent returns a Logger tagged with component whose Printf logs at level.
func NewComponent(component string, level zerolog.Level) *Logger {
	return &Logger{component: component, level: level}
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	return log.WithLevel(level).Str("component", l.component) //nolint:zerologlint
}

// Printf implements gorm's logger.Writer.
func (l *Logger) Printf(format string, v ...any) {
	l.event(l.level).Msgf(strings.TrimSpace(format), v...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, v ...any) {
	l.event(zerolog.DebugLevel).Msgf(format, v...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, v ...any) {
	l.event(zerolog.InfoLevel).Msgf(format, v...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, v ...any) {
	l.event(zerolog.WarnLevel).Msgf(format, v...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, v ...any) {
	l.event(zerolog.ErrorLevel).Msgf(format, v...)
}
