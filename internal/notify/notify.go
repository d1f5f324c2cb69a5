// Package notify delivers reminder notifications. Delivery is best effort:
// a missing or failing notification backend is never reported to the user.
package notify

import (
	"github.com/gen2brain/beeep"

	appLog "festivalbot/internal/log"
)

// Notifier receives one notification per reminder.
type Notifier interface {
	Notify(title, message string)
}

// Nop discards notifications. It is the default when desktop notifications
// are disabled.
type Nop struct{}

func (Nop) Notify(string, string) {}

// Desktop shows native desktop notifications through beeep.
type Desktop struct {
	appName string
	send    func(title, message string) error
}

// NewDesktop returns a Desktop notifier labelled with appName.
func NewDesktop(appName string) *Desktop {
	return &Desktop{
		appName: appName,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (d *Desktop) Notify(title, message string) {
	if message == "" {
		message = title
	}
	if d.appName != "" {
		beeep.AppName = d.appName
	}
	if err := d.send(title, message); err != nil {
		// No notification daemon, headless session, etc.
		appLog.Debug("notify: desktop delivery failed", "err", err, "title", title)
	}
}

// New picks the notifier for the given setting.
func New(enabled bool, appName string) Notifier {
	if !enabled {
		return Nop{}
	}
	return NewDesktop(appName)
}
