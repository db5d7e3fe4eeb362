package editor

import (
	"github.com/wb-go/wbf/zlog"
)

// Level is the severity of a user-visible notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows transient notifications to the user. It may be called
// from several goroutines while a session opens.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		zlog.Logger.Error().Str("source", "editor").Msg(message)
	case LevelWarning:
		zlog.Logger.Warn().Str("source", "editor").Msg(message)
	default:
		zlog.Logger.Info().Str("source", "editor").Msg(message)
	}
}
