// Package notify provides the shared transient notification service used by
// every page controller. Each notification is printed to the output writer
// and mirrored to the structured log.
package notify

import (
	"fmt"
	"io"

	"github.com/patric-chuzhbe/shopadmin/internal/logger"
)

// Level classifies a notification.
type Level string

// Notification levels.
const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

var levelPrefixes = map[Level]string{
	LevelSuccess: "[OK]",
	LevelWarning: "[WARN]",
	LevelDanger:  "[FAIL]",
}

// Notifier writes leveled notifications to a single output writer.
type Notifier struct {
	out io.Writer
}

// New creates a Notifier writing to out.
func New(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) notify(level Level, message string) {
	fmt.Fprintf(n.out, "%s %s\n", levelPrefixes[level], message)

	switch level {
	case LevelDanger:
		logger.Log.Warnln("notification", "level", level, "message", message)
	default:
		logger.Log.Infoln("notification", "level", level, "message", message)
	}
}

// Success reports a completed operation.
func (n *Notifier) Success(message string) {
	n.notify(LevelSuccess, message)
}

// Warning reports a local validation problem.
func (n *Notifier) Warning(message string) {
	n.notify(LevelWarning, message)
}

// Danger reports a failed operation.
func (n *Notifier) Danger(message string) {
	n.notify(LevelDanger, message)
}
