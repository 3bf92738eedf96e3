package session

import "log"

// Notifier receives user-facing notifications from the store. It is the
// Go stand-in for a toast system: every mutating operation reports success
// or failure through it, while background poll failures stay off it.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
func (NopNotifier) Info(string)    {}

// LogNotifier writes notifications to the standard logger. Used by the CLI.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Printf("[OK] %s", msg) }
func (LogNotifier) Error(msg string)   { log.Printf("[ERR] %s", msg) }
func (LogNotifier) Info(msg string)    { log.Printf("[INFO] %s", msg) }
