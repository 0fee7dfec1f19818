package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/mini_shop/internal/events"
	"github.com/Skotchmaster/mini_shop/internal/logging"
	"github.com/Skotchmaster/mini_shop/internal/models"
)

var (
	ErrValidation         = errors.New("validation")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
)

// Identity is the verified caller of a request.
type Identity struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

func requireIdentity(id *Identity) error {
	if id == nil || id.ID == 0 {
		return ErrMissingToken
	}
	return nil
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// publish sends an event and only logs on failure; events never fail a request.
func publish(ctx context.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
