package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"reminder-engine/internal/domain/entities"
)

// EmailAdapter delivers reminders over SMTP via gopkg.in/gomail.v2,
// grounded on the familybot/notification-bot style manifests in the
// example pack's other_examples that pull in the same library for outbound
// mail.
type EmailAdapter struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailAdapter(host string, port int, user, password, from string) *EmailAdapter {
	return &EmailAdapter{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (a *EmailAdapter) Channel() entities.NotificationChannel { return entities.NotificationChannelEmail }

func (a *EmailAdapter) Send(ctx context.Context, user *entities.User, reminder *entities.Reminder, tracking *entities.Tracking) error {
	if user.Email == "" {
		return &PermanentError{Err: fmt.Errorf("user %d has no email address on file", user.ID)}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("Reminder: %s", tracking.Question))
	m.SetBody("text/plain", fmt.Sprintf("%s\n\nScheduled for %s.", tracking.Question, reminder.ScheduledTime.Format("2006-01-02 15:04 MST")))

	if err := a.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}
