package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meetinghours/attendance-backend/internal/domain/notification"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/sse"
	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 256
	Timeout     time.Duration // per delivery, default: 10 seconds
}

// delivery is a queued notification. An empty recipient means every admin.
type delivery struct {
	recipient string
	n         notification.Notification
}

type service struct {
	users  user.UserRepository
	hub    *sse.Hub
	config Config

	queue    chan delivery
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewNotificationService starts the delivery workers. Stop drains the queue.
func NewNotificationService(users user.UserRepository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	s := &service{
		users:  users,
		hub:    hub,
		config: cfg,
		queue:  make(chan delivery, cfg.QueueSize),
		stopCh: make(chan struct{}),
		now:    time.Now,
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case d := <-s.queue:
			s.deliver(d)
		case <-s.stopCh:
			for {
				select {
				case d := <-s.queue:
					s.deliver(d)
				default:
					slog.Debug("Notification worker stopped", "worker", id)
					return
				}
			}
		}
	}
}

// NotifyUser implements notification.Notifier.
func (s *service) NotifyUser(ctx context.Context, userID string, n notification.Notification) {
	if userID == "" {
		return
	}
	s.enqueue(ctx, delivery{recipient: userID, n: n})
}

// NotifyAdmins implements notification.Notifier.
func (s *service) NotifyAdmins(ctx context.Context, n notification.Notification) {
	s.enqueue(ctx, delivery{n: n})
}

func (s *service) enqueue(ctx context.Context, d delivery) {
	if d.n.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			slog.Error("Failed to generate notification ID", "error", err)
			return
		}
		d.n.ID = id.String()
	}
	if d.n.CreatedAt.IsZero() {
		d.n.CreatedAt = s.now().UTC()
	}

	select {
	case s.queue <- d:
	case <-ctx.Done():
		slog.Warn("Notification dropped", "type", d.n.Type, "error", ctx.Err())
	default:
		// Queue full, deliver on the caller's goroutine
		s.deliver(d)
	}
}

func (s *service) deliver(d delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	recipients := []string{d.recipient}
	if d.recipient == "" {
		admins, err := s.admins(ctx, d.n.SenderID)
		if err != nil {
			slog.Error("Failed to resolve notification recipients", "type", d.n.Type, "error", err)
			return
		}
		recipients = admins
	}

	for _, recipient := range recipients {
		n := d.n
		n.RecipientID = recipient
		s.hub.Publish(recipient, sse.Event{
			Name: string(n.Type),
			Data: notification.NewNotificationResponse(n),
		})
		telemetry.NotificationsTotal.WithLabelValues(string(n.Type)).Inc()
	}
}

func (s *service) admins(ctx context.Context, except string) ([]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	for _, u := range users {
		if u.IsAdmin && u.ID != except {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// Subscribe opens a live stream for a user.
func (s *service) Subscribe(userID string) (<-chan sse.Event, func()) {
	return s.hub.Subscribe(userID)
}

// Stop delivers what is queued and waits for the workers to exit.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
