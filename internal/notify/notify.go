// Package notify is the surface through which the core raises user-facing
// warnings without depending on any particular UI.
package notify

import "github.com/codefionn/einzel/internal/logger"

// Notifier receives user-facing warnings. Implementations may show a
// dialog, a tray balloon, or anything else; the core only calls Warn.
type Notifier interface {
	Warn(title, message string)
}

// LogNotifier routes warnings to the global logger. It is the default
// when the embedding application does not plug in its own surface.
type LogNotifier struct{}

// Warn logs the warning.
func (LogNotifier) Warn(title, message string) {
	logger.Warn("%s: %s", title, message)
}

// Func adapts a plain function to the Notifier interface.
type Func func(title, message string)

// Warn calls the wrapped function.
func (f Func) Warn(title, message string) {
	f(title, message)
}
