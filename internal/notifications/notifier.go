// Package notifications renders and delivers customer emails for order events.
package notifications

import (
	"context"
	"fmt"

	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
)

// Notifier sends one notification and reports delivery failures.
type Notifier interface {
	Notify(ctx context.Context, kind enums.NotificationKind, order *models.Order) error
}

// EmailNotifier renders the order email and hands it to a Mailer.
type EmailNotifier struct {
	renderer *Renderer
	mailer   Mailer
}

func NewEmailNotifier(renderer *Renderer, mailer Mailer) (*EmailNotifier, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &EmailNotifier{renderer: renderer, mailer: mailer}, nil
}

func (n *EmailNotifier) Notify(ctx context.Context, kind enums.NotificationKind, order *models.Order) error {
	msg, err := n.renderer.Render(kind, order)
	if err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("order %s has no email address", order.ID)
	}
	return n.mailer.Send(ctx, msg)
}
