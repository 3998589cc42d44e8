package period

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

type PeriodServiceImpl struct {
	period.PeriodRepository
	loc *time.Location
	now func() time.Time
}

// CreatePeriod implements period.PeriodService.
func (s *PeriodServiceImpl) CreatePeriod(ctx context.Context, req period.CreatePeriodRequest) (period.PeriodResponse, error) {
	if err := req.Actor.Require(user.PermissionPeriodManage); err != nil {
		return period.PeriodResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return period.PeriodResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)

	id, err := uuid.NewV7()
	if err != nil {
		return period.PeriodResponse{}, fmt.Errorf("failed to generate period ID: %w", err)
	}

	created, err := s.PeriodRepository.Create(ctx, period.ReportingPeriod{
		ID:        id.String(),
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		CreatedBy: req.Actor.UserID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return period.PeriodResponse{}, fmt.Errorf("failed to create reporting period: %w", err)
	}

	slog.Info("reporting period created", "period_id", created.ID, "name", created.Name)
	return period.NewPeriodResponse(created), nil
}

// GetPeriod implements period.PeriodService.
func (s *PeriodServiceImpl) GetPeriod(ctx context.Context, id string) (period.PeriodResponse, error) {
	p, err := s.PeriodRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, period.ErrPeriodNotFound) {
			return period.PeriodResponse{}, err
		}
		return period.PeriodResponse{}, fmt.Errorf("failed to get reporting period: %w", err)
	}
	return period.NewPeriodResponse(p), nil
}

// ListPeriods implements period.PeriodService.
func (s *PeriodServiceImpl) ListPeriods(ctx context.Context) ([]period.PeriodResponse, error) {
	periods, err := s.PeriodRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reporting periods: %w", err)
	}

	responses := make([]period.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		responses = append(responses, period.NewPeriodResponse(p))
	}
	return responses, nil
}

// CurrentPeriod implements period.PeriodService.
func (s *PeriodServiceImpl) CurrentPeriod(ctx context.Context) (period.PeriodResponse, error) {
	p, err := s.PeriodRepository.GetContaining(ctx, window.DayStart(s.now(), s.loc))
	if err != nil {
		if errors.Is(err, period.ErrNoActivePeriod) {
			return period.PeriodResponse{}, err
		}
		return period.PeriodResponse{}, fmt.Errorf("failed to resolve current period: %w", err)
	}
	return period.NewPeriodResponse(p), nil
}

func NewPeriodService(periodRepo period.PeriodRepository, loc *time.Location) period.PeriodService {
	return &PeriodServiceImpl{
		PeriodRepository: periodRepo,
		loc:              loc,
		now:              time.Now,
	}
}
