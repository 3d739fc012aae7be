package notification

import (
	"fmt"

	"zerohunger-backend/internal/utils/mailing"

	"github.com/gofiber/fiber/v2/log"
)

type (
	// Dispatcher delivers transition notifications. Implementations must be
	// safe for concurrent use; delivery failures are the implementation's
	// problem to log, never the caller's to handle.
	Dispatcher interface {
		Notify(recipient, subject, message string) error
		NotifyBulk(recipients []string, subject, message string) error
	}

	mailDispatcher struct{}
)

// NewMailDispatcher returns a Dispatcher that sends SMTP mail through the
// shared mailing util.
func NewMailDispatcher() Dispatcher {
	return &mailDispatcher{}
}

func (d *mailDispatcher) Notify(recipient, subject, message string) error {
	return mailing.SendMail(recipient, subject, message)
}

func (d *mailDispatcher) NotifyBulk(recipients []string, subject, message string) error {
	var failed int
	for _, recipient := range recipients {
		if err := mailing.SendMail(recipient, subject, message); err != nil {
			failed++
			log.Errorf("notification to %s failed: %v", recipient, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d notifications failed", failed, len(recipients))
	}
	return nil
}

// Dispatch runs fn on its own goroutine and logs the outcome. State
// transitions commit before their notifications; a failed send never
// propagates back to the transition's caller.
func Dispatch(fn func() error) {
	go func() {
		if err := fn(); err != nil {
			log.Errorf("notification dispatch failed: %v", err)
		}
	}()
}
