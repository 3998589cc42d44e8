package excuse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/notification"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
	attendanceService "github.com/meetinghours/attendance-backend/internal/service/attendance"
)

type ExcuseServiceImpl struct {
	tx          database.Transactor
	excuseRepo  excuse.ExcuseRepository
	requestRepo excuse.RequestRepository
	windowRepo  window.WindowRepository
	periodRepo  period.PeriodRepository
	matcher     *attendanceService.WindowMatcher
	notifier    notification.Notifier
	loc         *time.Location
	now         func() time.Time
}

// CreateExcuse implements excuse.ExcuseService.
func (s *ExcuseServiceImpl) CreateExcuse(ctx context.Context, req excuse.CreateExcuseRequest) (excuse.ExcuseResponse, error) {
	if err := req.Actor.Require(user.PermissionExcuseManage); err != nil {
		return excuse.ExcuseResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return excuse.ExcuseResponse{}, err
	}

	var created excuse.Excuse
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.createExcuse(txCtx, excuse.Excuse{
			UserID:    req.UserID,
			WindowID:  req.WindowID,
			Reason:    req.Reason,
			CreatedBy: req.Actor.UserID,
		}, req.PeriodID)
		return err
	})
	if err != nil {
		return excuse.ExcuseResponse{}, err
	}

	slog.Info("excuse created", "excuse_id", created.ID, "user_id", created.UserID, "window_id", created.WindowID, "period_id", created.PeriodID)
	return excuse.NewExcuseResponse(created), nil
}

// createExcuse attributes e to a period, checks it can be excused and stores it.
// It must run inside a transaction.
func (s *ExcuseServiceImpl) createExcuse(ctx context.Context, e excuse.Excuse, periodID *string) (excuse.Excuse, error) {
	w, err := s.windowRepo.GetByID(ctx, e.WindowID)
	if err != nil {
		if errors.Is(err, window.ErrWindowNotFound) {
			return excuse.Excuse{}, err
		}
		return excuse.Excuse{}, fmt.Errorf("failed to get window: %w", err)
	}
	if w.Category != window.CategoryRegular {
		return excuse.Excuse{}, excuse.ErrOutreachNotExcusable
	}

	p, err := s.resolvePeriod(ctx, w, periodID)
	if err != nil {
		return excuse.Excuse{}, err
	}

	exists, err := s.excuseRepo.Exists(ctx, e.UserID, e.WindowID)
	if err != nil {
		return excuse.Excuse{}, fmt.Errorf("failed to check existing excuse: %w", err)
	}
	if exists {
		return excuse.Excuse{}, excuse.ErrExcuseExists
	}

	id, err := uuid.NewV7()
	if err != nil {
		return excuse.Excuse{}, fmt.Errorf("failed to generate excuse ID: %w", err)
	}
	e.ID = id.String()
	e.PeriodID = p.ID
	e.CreatedAt = s.now().UTC()

	created, err := s.excuseRepo.Create(ctx, e)
	if err != nil {
		if errors.Is(err, excuse.ErrExcuseExists) || errors.Is(err, user.ErrUserNotFound) {
			return excuse.Excuse{}, err
		}
		return excuse.Excuse{}, fmt.Errorf("failed to create excuse: %w", err)
	}
	return created, nil
}

func (s *ExcuseServiceImpl) resolvePeriod(ctx context.Context, w window.TimeWindow, periodID *string) (period.ReportingPeriod, error) {
	if periodID == nil || *periodID == "" {
		p, err := s.periodRepo.GetContaining(ctx, w.StartDate(s.loc))
		if err != nil {
			if errors.Is(err, period.ErrNoActivePeriod) {
				return period.ReportingPeriod{}, excuse.ErrWindowOutsidePeriod
			}
			return period.ReportingPeriod{}, fmt.Errorf("failed to resolve window period: %w", err)
		}
		return p, nil
	}

	p, err := s.periodRepo.GetByID(ctx, *periodID)
	if err != nil {
		if errors.Is(err, period.ErrPeriodNotFound) {
			return period.ReportingPeriod{}, err
		}
		return period.ReportingPeriod{}, fmt.Errorf("failed to get reporting period: %w", err)
	}
	if !p.ContainsDate(w.StartTime, s.loc) {
		return period.ReportingPeriod{}, excuse.ErrWindowOutsidePeriod
	}
	return p, nil
}

// ListExcuses implements excuse.ExcuseService.
func (s *ExcuseServiceImpl) ListExcuses(ctx context.Context, filter excuse.ExcuseFilter) ([]excuse.ExcuseResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.UserID != filter.Actor.UserID {
		if err := filter.Actor.Require(user.PermissionExcuseManage); err != nil {
			return nil, err
		}
	}

	excuses, err := s.excuseRepo.ListByUserAndPeriod(ctx, filter.UserID, filter.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list excuses: %w", err)
	}

	responses := make([]excuse.ExcuseResponse, 0, len(excuses))
	for _, e := range excuses {
		responses = append(responses, excuse.NewExcuseResponse(e))
	}
	return responses, nil
}

// RequestExcuse implements excuse.ExcuseService.
func (s *ExcuseServiceImpl) RequestExcuse(ctx context.Context, req excuse.RequestExcuseRequest) (excuse.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return excuse.RequestResponse{}, err
	}

	var (
		created excuse.Request
		w       window.TimeWindow
	)
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		w, err = s.resolveRequestWindow(txCtx, req)
		if err != nil {
			return err
		}
		if w.Category != window.CategoryRegular {
			return excuse.ErrOutreachNotExcusable
		}

		exists, err := s.excuseRepo.Exists(txCtx, req.UserID, w.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing excuse: %w", err)
		}
		if exists {
			return excuse.ErrExcuseExists
		}

		pending, err := s.requestRepo.HasPending(txCtx, req.UserID, w.ID)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending {
			return excuse.ErrRequestExists
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate request ID: %w", err)
		}

		created, err = s.requestRepo.Create(txCtx, excuse.Request{
			ID:          id.String(),
			UserID:      req.UserID,
			WindowID:    w.ID,
			Reason:      req.Reason,
			Status:      excuse.RequestStatusPending,
			RequestedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to create excuse request: %w", err)
		}
		return nil
	})
	if err != nil {
		return excuse.RequestResponse{}, err
	}

	telemetry.ExcuseRequestsTotal.WithLabelValues("requested").Inc()
	slog.Info("excuse requested", "request_id", created.ID, "user_id", created.UserID, "window_id", created.WindowID)

	s.notifier.NotifyAdmins(ctx, notification.Notification{
		SenderID: created.UserID,
		Type:     notification.TypeExcuseRequested,
		Title:    "Excuse requested",
		Message:  fmt.Sprintf("Excuse requested for the window on %s", w.StartTime.In(s.loc).Format("Mon Jan 2 15:04")),
		Data:     requestData(created),
	})
	return excuse.NewRequestResponse(created), nil
}

// resolveRequestWindow finds the window by id, or the only regular window on
// the given date.
func (s *ExcuseServiceImpl) resolveRequestWindow(ctx context.Context, req excuse.RequestExcuseRequest) (window.TimeWindow, error) {
	if req.WindowID != "" {
		return s.matcher.Match(ctx, attendance.ByID{WindowID: req.WindowID})
	}

	date, err := validator.ParseDateIn(req.Date, s.loc)
	if err != nil {
		return window.TimeWindow{}, fmt.Errorf("failed to parse date: %w", err)
	}
	return s.matcher.Match(ctx, attendance.ByDate{Date: date, Category: window.CategoryRegular})
}

// ListPendingRequests implements excuse.ExcuseService.
func (s *ExcuseServiceImpl) ListPendingRequests(ctx context.Context, filter excuse.PendingRequestFilter) ([]excuse.RequestResponse, error) {
	if err := filter.Actor.Require(user.PermissionExcuseRequestView); err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListByStatus(ctx, excuse.RequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending excuse requests: %w", err)
	}

	responses := make([]excuse.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, excuse.NewRequestResponse(r))
	}
	return responses, nil
}

// ApproveRequest implements excuse.ExcuseService.
func (s *ExcuseServiceImpl) ApproveRequest(ctx context.Context, req excuse.ReviewRequest) (excuse.RequestResponse, error) {
	return s.review(ctx, req, excuse.RequestStatusApproved)
}

// DenyRequest implements excuse.ExcuseService.
func (s *ExcuseServiceImpl) DenyRequest(ctx context.Context, req excuse.ReviewRequest) (excuse.RequestResponse, error) {
	return s.review(ctx, req, excuse.RequestStatusDenied)
}

func (s *ExcuseServiceImpl) review(ctx context.Context, req excuse.ReviewRequest, status excuse.RequestStatus) (excuse.RequestResponse, error) {
	if err := req.Actor.Require(user.PermissionExcuseManage); err != nil {
		return excuse.RequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return excuse.RequestResponse{}, err
	}

	var reviewed excuse.Request
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.requestRepo.GetByID(txCtx, req.RequestID)
		if err != nil {
			if errors.Is(err, excuse.ErrRequestNotFound) {
				return err
			}
			return fmt.Errorf("failed to get excuse request: %w", err)
		}
		if !r.IsPending() {
			return excuse.ErrRequestAlreadyProcessed
		}

		if status == excuse.RequestStatusApproved {
			requestID := r.ID
			_, err := s.createExcuse(txCtx, excuse.Excuse{
				UserID:    r.UserID,
				WindowID:  r.WindowID,
				Reason:    r.Reason,
				CreatedBy: req.Actor.UserID,
				RequestID: &requestID,
			}, nil)
			// An admin may have excused the window directly in the meantime.
			if err != nil && !errors.Is(err, excuse.ErrExcuseExists) {
				return err
			}
		}

		reviewedAt := s.now().UTC()
		reviewer := req.Actor.UserID
		r.Status = status
		r.ReviewedBy = &reviewer
		r.ReviewedAt = &reviewedAt
		if req.AdminNotes != "" {
			notes := req.AdminNotes
			r.AdminNotes = &notes
		}

		if err := s.requestRepo.Update(txCtx, r); err != nil {
			return fmt.Errorf("failed to update excuse request: %w", err)
		}
		reviewed = r
		return nil
	})
	if err != nil {
		return excuse.RequestResponse{}, err
	}

	telemetry.ExcuseRequestsTotal.WithLabelValues(string(status)).Inc()
	slog.Info("excuse request reviewed", "request_id", reviewed.ID, "status", reviewed.Status, "reviewed_by", req.Actor.UserID)

	n := notification.Notification{
		SenderID: req.Actor.UserID,
		Type:     notification.TypeExcuseApproved,
		Title:    "Excuse approved",
		Message:  "Your excuse request was approved",
		Data:     requestData(reviewed),
	}
	if status == excuse.RequestStatusDenied {
		n.Type = notification.TypeExcuseDenied
		n.Title = "Excuse denied"
		n.Message = "Your excuse request was denied"
	}
	if reviewed.AdminNotes != nil {
		n.Data["admin_notes"] = *reviewed.AdminNotes
	}
	s.notifier.NotifyUser(ctx, reviewed.UserID, n)
	return excuse.NewRequestResponse(reviewed), nil
}

func requestData(r excuse.Request) map[string]interface{} {
	return map[string]interface{}{
		"request_id": r.ID,
		"user_id":    r.UserID,
		"window_id":  r.WindowID,
		"status":     string(r.Status),
	}
}

// NewExcuseService returns the excuse service. A nil notifier disables
// notifications.
func NewExcuseService(
	tx database.Transactor,
	excuseRepo excuse.ExcuseRepository,
	requestRepo excuse.RequestRepository,
	windowRepo window.WindowRepository,
	periodRepo period.PeriodRepository,
	notifier notification.Notifier,
	loc *time.Location,
) excuse.ExcuseService {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &ExcuseServiceImpl{
		tx:          tx,
		excuseRepo:  excuseRepo,
		requestRepo: requestRepo,
		windowRepo:  windowRepo,
		periodRepo:  periodRepo,
		matcher:     attendanceService.NewWindowMatcher(windowRepo, loc),
		notifier:    notifier,
		loc:         loc,
		now:         time.Now,
	}
}
