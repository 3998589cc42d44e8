package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

type WindowServiceImpl struct {
	window.WindowRepository
	loc *time.Location
	now func() time.Time
}

// CreateWindow implements window.WindowService.
func (s *WindowServiceImpl) CreateWindow(ctx context.Context, req window.CreateWindowRequest) (window.WindowResponse, error) {
	if err := req.Actor.Require(user.PermissionWindowManage); err != nil {
		return window.WindowResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return window.WindowResponse{}, err
	}

	date, err := validator.ParseDateIn(req.Date, s.loc)
	if err != nil {
		return window.WindowResponse{}, fmt.Errorf("failed to parse window date: %w", err)
	}
	start, err := validator.ParseClockOn(date, req.StartTime, s.loc)
	if err != nil {
		return window.WindowResponse{}, fmt.Errorf("failed to parse window start time: %w", err)
	}
	end, err := validator.ParseClockOn(date, req.EndTime, s.loc)
	if err != nil {
		return window.WindowResponse{}, fmt.Errorf("failed to parse window end time: %w", err)
	}
	// DST transitions can collapse a clock range that looked valid.
	if !end.After(start) {
		return window.WindowResponse{}, window.ErrInvalidWindowRange
	}

	id, err := uuid.NewV7()
	if err != nil {
		return window.WindowResponse{}, fmt.Errorf("failed to generate window ID: %w", err)
	}

	created, err := s.WindowRepository.Create(ctx, window.TimeWindow{
		ID:          id.String(),
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Category:    req.Category,
		Description: req.Description,
		CreatedBy:   req.Actor.UserID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return window.WindowResponse{}, fmt.Errorf("failed to create window: %w", err)
	}

	slog.Info("window created", "window_id", created.ID, "category", created.Category, "created_by", created.CreatedBy)
	return window.NewWindowResponse(created, s.loc), nil
}

// GetWindow implements window.WindowService.
func (s *WindowServiceImpl) GetWindow(ctx context.Context, id string) (window.WindowResponse, error) {
	w, err := s.WindowRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, window.ErrWindowNotFound) {
			return window.WindowResponse{}, err
		}
		return window.WindowResponse{}, fmt.Errorf("failed to get window: %w", err)
	}
	return window.NewWindowResponse(w, s.loc), nil
}

// ListWindows implements window.WindowService. Missing bounds default to the
// current calendar month.
func (s *WindowServiceImpl) ListWindows(ctx context.Context, filter window.WindowFilter) ([]window.WindowResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	today := window.DayStart(s.now(), s.loc)
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, 0)
	if filter.StartDate != nil {
		d, err := validator.ParseDateIn(*filter.StartDate, s.loc)
		if err != nil {
			return nil, err
		}
		from = d
	}
	if filter.EndDate != nil {
		d, err := validator.ParseDateIn(*filter.EndDate, s.loc)
		if err != nil {
			return nil, err
		}
		to = d.AddDate(0, 0, 1)
	}

	return s.list(ctx, from, to, filter.Category)
}

// ListUpcoming implements window.WindowService.
func (s *WindowServiceImpl) ListUpcoming(ctx context.Context, filter window.UpcomingFilter) ([]window.WindowResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	return s.list(ctx, now, window.DayStart(now, s.loc).AddDate(0, 0, filter.Days+1), filter.Category)
}

func (s *WindowServiceImpl) list(ctx context.Context, from, to time.Time, category *string) ([]window.WindowResponse, error) {
	var cat *window.Category
	if category != nil {
		c := window.Category(*category)
		cat = &c
	}

	windows, err := s.WindowRepository.ListStartingBetween(ctx, from, to, cat)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}

	responses := make([]window.WindowResponse, 0, len(windows))
	for _, w := range windows {
		responses = append(responses, window.NewWindowResponse(w, s.loc))
	}
	return responses, nil
}

func NewWindowService(windowRepo window.WindowRepository, loc *time.Location) window.WindowService {
	return &WindowServiceImpl{
		WindowRepository: windowRepo,
		loc:              loc,
		now:              time.Now,
	}
}
