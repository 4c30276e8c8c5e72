// Package service turns domain events into in-app notifications, either
// inline or through RabbitMQ.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nyumbalink/nyumbalink/internal/i18n"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/repository"
)

// LanguageLookup returns a user's preferred language.
type LanguageLookup interface {
	GetLanguage(ctx context.Context, userID uint64) (string, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Notifier renders events in the recipient's language and stores them.
type Notifier struct {
	Users         LanguageLookup
	Notifications NotificationStore
}

// Deliver implements queue.Deliverer.
func (n *Notifier) Deliver(ctx context.Context, ev queue.Event) error {
	lang, err := n.Users.GetLanguage(ctx, ev.RecipientID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("%w: recipient %d: %v", queue.ErrUndeliverable, ev.RecipientID, err)
	}
	if err != nil {
		return fmt.Errorf("recipient %d: %w", ev.RecipientID, err)
	}
	title, body, err := Render(lang, ev)
	if err != nil {
		return fmt.Errorf("%w: %v", queue.ErrUndeliverable, err)
	}
	rec := &model.Notification{
		UserID:  ev.RecipientID,
		Type:    ev.Type,
		Title:   title,
		Message: body,
	}
	if ev.RelatedID != 0 {
		rel := ev.RelatedID
		rec.RelatedID = &rel
	}
	return n.Notifications.Create(ctx, rec)
}

// Render returns the localized title and body for ev.
func Render(lang string, ev queue.Event) (title, body string, err error) {
	var args []any
	switch ev.Type {
	case queue.InquiryCreated, queue.BookingCancelled:
		args = []any{ev.ActorName, ev.PropertyTitle}
	case queue.InquiryResponded, queue.BookingApproved, queue.BookingRejected:
		args = []any{ev.PropertyTitle}
	case queue.BookingRequested:
		args = []any{ev.ActorName, ev.PropertyTitle, ev.Date}
	case queue.PaymentRecorded:
		args = []any{ev.ActorName, i18n.FormatTZS(ev.AmountTZS), ev.PropertyTitle}
	case queue.PaymentConfirmed, queue.PaymentRejected:
		args = []any{i18n.FormatTZS(ev.AmountTZS), ev.PropertyTitle}
	default:
		return "", "", fmt.Errorf("unknown event type %q", ev.Type)
	}
	key := "notify." + catalogKey(ev.Type)
	return i18n.T(lang, key+".title"), i18n.T(lang, key+".body", args...), nil
}

// catalogKey maps "booking.approved" to "booking_approved".
func catalogKey(typ string) string {
	b := []byte(typ)
	for i := range b {
		if b[i] == '.' {
			b[i] = '_'
		}
	}
	return string(b)
}
