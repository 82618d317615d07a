package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	accountserrors "rentals/internal/accounts/errors"
	"rentals/pkg/events"
	"rentals/pkg/kafka"
	"rentals/pkg/logger"
	"rentals/pkg/mailer"
	"rentals/pkg/model"
)

type Users interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type Owners interface {
	FindByID(ctx context.Context, id string) (*model.Owner, error)
}

// Notifier turns marketplace events into e-mails. Events without a
// recipient-facing message are acknowledged and dropped.
type Notifier struct {
	users  Users
	owners Owners
	mail   mailer.Mailer
	log    *logger.Logger
}

func NewNotifier(users Users, owners Owners, mail mailer.Mailer, log *logger.Logger) *Notifier {
	return &Notifier{
		users:  users,
		owners: owners,
		mail:   mail,
		log:    log,
	}
}

// Handle satisfies events.Handler. Failures the mail provider may recover
// from are returned as transient so the Kafka consumer retries them.
func (n *Notifier) Handle(ctx context.Context, event events.Event) error {
	log := n.log.WithContext(ctx)

	var (
		email mailer.Email
		ok    bool
		err   error
	)
	switch {
	case event.Type == events.AccountRegistered:
		email, ok, err = n.accountEmail(event)
	case strings.HasPrefix(event.Type, "booking."):
		email, ok, err = n.bookingEmail(ctx, event)
	case strings.HasPrefix(event.Type, "property."):
		email, ok, err = n.propertyEmail(ctx, event)
	}
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("No notification for event", "event_type", event.Type, "event_id", event.ID)
		return nil
	}

	messageID, err := n.mail.Send(ctx, email)
	if err != nil {
		var sendErr *mailer.SendError
		if errors.As(err, &sendErr) && !sendErr.Temporary() {
			return kafka.NewPermanentError("mail rejected", err)
		}
		return kafka.NewTransientError("mail send failed", err)
	}

	log.Info("Notification sent",
		"event_type", event.Type,
		"event_id", event.ID,
		"to", email.ToEmail,
		"message_id", messageID,
	)
	return nil
}

func (n *Notifier) accountEmail(event events.Event) (mailer.Email, bool, error) {
	var payload events.AccountPayload
	if err := event.Decode(&payload); err != nil {
		return mailer.Email{}, false, decodeError(event, err)
	}
	name := payload.FirstName
	if name == "" {
		name = payload.Email
	}
	return mailer.WelcomeEmail(payload.Email, name), true, nil
}

func (n *Notifier) bookingEmail(ctx context.Context, event events.Event) (mailer.Email, bool, error) {
	var payload events.BookingPayload
	if err := event.Decode(&payload); err != nil {
		return mailer.Email{}, false, decodeError(event, err)
	}

	subject, body, ok := bookingMessage(event.Type, payload)
	if !ok {
		return mailer.Email{}, false, nil
	}

	user, err := n.recipient(ctx, payload.UserID)
	if err != nil || user == nil {
		return mailer.Email{}, false, err
	}
	return mailer.BookingEmail(user.Email, user.DisplayName(), subject, body), true, nil
}

func (n *Notifier) propertyEmail(ctx context.Context, event events.Event) (mailer.Email, bool, error) {
	var payload events.PropertyPayload
	if err := event.Decode(&payload); err != nil {
		return mailer.Email{}, false, decodeError(event, err)
	}

	subject, body, ok := propertyMessage(event.Type, payload)
	if !ok {
		return mailer.Email{}, false, nil
	}

	owner, err := n.owners.FindByID(ctx, payload.OwnerID)
	if err != nil {
		if errors.Is(err, accountserrors.ErrOwnerNotFound) || errors.Is(err, accountserrors.ErrInvalidID) {
			n.log.WithContext(ctx).Warn("Owner for notification not found", "owner_id", payload.OwnerID)
			return mailer.Email{}, false, nil
		}
		return mailer.Email{}, false, kafka.NewTransientError("load owner", err)
	}

	user, err := n.recipient(ctx, owner.User)
	if err != nil || user == nil {
		return mailer.Email{}, false, err
	}
	return mailer.BookingEmail(user.Email, user.DisplayName(), subject, body), true, nil
}

// recipient returns nil without error when the account no longer exists.
func (n *Notifier) recipient(ctx context.Context, userID string) (*model.User, error) {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) || errors.Is(err, accountserrors.ErrInvalidID) {
			n.log.WithContext(ctx).Warn("Recipient for notification not found", "user_id", userID)
			return nil, nil
		}
		return nil, kafka.NewTransientError("load recipient", err)
	}
	return user, nil
}

func bookingMessage(eventType string, p events.BookingPayload) (string, string, bool) {
	visit := p.TimeSlot
	if p.VisitDate != nil {
		visit = fmt.Sprintf("%s %s", p.VisitDate.Format("Mon 2 Jan 2006"), p.TimeSlot)
	}

	switch eventType {
	case events.BookingCreated:
		return "Site visit requested",
			fmt.Sprintf("We received your site visit request for %s. You will hear from us once it is reviewed.", visit), true
	case events.BookingStatusChanged:
		return "Site visit " + p.Status,
			fmt.Sprintf("Your site visit for %s is now %s.", visit, p.Status), true
	case events.BookingTimeUpdated:
		return "Site visit rescheduled",
			fmt.Sprintf("Your site visit is now requested for %s and is awaiting review again.", visit), true
	case events.BookingTimeChangeRequested:
		body := fmt.Sprintf("We suggest a different time for your site visit: %s.", strings.Join(p.SuggestedSlots, ", "))
		if p.Reason != "" {
			body += " Reason: " + p.Reason
		}
		return "New time suggested for your site visit", body, true
	case events.BookingTimeChangeResolved:
		if p.Accepted != nil && *p.Accepted {
			return "Site visit confirmed",
				fmt.Sprintf("Your site visit is confirmed for %s.", visit), true
		}
		return "Suggested time declined",
			fmt.Sprintf("You kept your original slot %s.", visit), true
	}
	return "", "", false
}

func propertyMessage(eventType string, p events.PropertyPayload) (string, string, bool) {
	switch eventType {
	case events.PropertySubmitted:
		return "Listing submitted",
			fmt.Sprintf("Your listing %q was submitted and is waiting for review.", p.Title), true
	case events.PropertyStatusChanged:
		if p.To == string(model.PropertyPending) {
			return "Listing back in review",
				fmt.Sprintf("Your changes to %q will be reviewed before the listing goes live again.", p.Title), true
		}
		return "Listing " + p.To,
			fmt.Sprintf("Your listing %q is now %s.", p.Title, p.To), true
	}
	return "", "", false
}

func decodeError(event events.Event, err error) error {
	return kafka.NewPermanentError(fmt.Sprintf("decode %s payload", event.Type), err)
}
