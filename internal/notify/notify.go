// Package notify tells customers about project milestones by email (SES)
// and SMS (SNS).
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Recipient is where a notification goes. Empty fields are skipped.
type Recipient struct {
	Name  string
	Email string
	Phone string
}

// Notification is a rendered message.
type Notification struct {
	To      Recipient
	Subject string
	Body    string
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Multi sends through every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier only logs; used when no delivery channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	slog.Info("notify: delivery disabled", "subject", n.Subject, "email", n.To.Email != "", "phone", n.To.Phone != "")
	return nil
}

// ProjectCreated renders the notification sent when a PM is assigned.
func ProjectCreated(to Recipient, pmName string) Notification {
	return Notification{
		To:      to,
		Subject: "[창업 컨설팅] 담당 PM이 배정되었습니다",
		Body:    fmt.Sprintf("%s님, 담당 PM %s님이 배정되었습니다. 채팅으로 상담을 시작해 보세요.", to.Name, pmName),
	}
}

// StageChanged renders the notification for a delivery stage change.
func StageChanged(to Recipient, step int, label, description string) Notification {
	return Notification{
		To:      to,
		Subject: fmt.Sprintf("[창업 컨설팅] %d단계: %s", step, label),
		Body:    fmt.Sprintf("%s님, 프로젝트가 %d단계(%s)로 진행되었습니다. %s", to.Name, step, label, description),
	}
}

// Cancelled renders the cancellation notice.
func Cancelled(to Recipient) Notification {
	return Notification{
		To:      to,
		Subject: "[창업 컨설팅] 프로젝트가 취소되었습니다",
		Body:    fmt.Sprintf("%s님, 프로젝트가 취소되었습니다.", to.Name),
	}
}
