package notification

import (
	"context"
	"time"

	"github.com/meetinghours/attendance-backend/internal/pkg/sse"
)

type Type string

const (
	TypeExcuseRequested Type = "excuse_requested"
	TypeExcuseApproved  Type = "excuse_approved"
	TypeExcuseDenied    Type = "excuse_denied"
)

type Notification struct {
	ID          string
	RecipientID string
	SenderID    string
	Type        Type
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// Notifier delivers notifications without blocking the caller on delivery.
type Notifier interface {
	NotifyUser(ctx context.Context, userID string, n Notification)
	// NotifyAdmins reaches every admin except the sender.
	NotifyAdmins(ctx context.Context, n Notification)
}

type Service interface {
	Notifier
	Subscribe(userID string) (<-chan sse.Event, func())
	Stop()
}

// Nop discards every notification.
type Nop struct{}

func (Nop) NotifyUser(context.Context, string, Notification) {}
func (Nop) NotifyAdmins(context.Context, Notification)       {}

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

func NewNotificationResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
