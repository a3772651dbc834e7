package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
)

// closingService implements the ClosingSvcFacade interface
type closingService struct {
	BaseService
	closingRepo   portsrepo.ClosingRepositoryFacade
	reportingRepo portsrepo.ReportingRepositoryFacade
	transferRepo  portsrepo.TransferRepositoryFacade
}

// NewClosingService creates a new closing service.
func NewClosingService(closingRepo portsrepo.ClosingRepositoryFacade, reportingRepo portsrepo.ReportingRepositoryFacade, transferRepo portsrepo.TransferRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.ClosingSvcFacade {
	return &closingService{
		BaseService:   BaseService{HouseholdAuthorizer: authorizer},
		closingRepo:   closingRepo,
		reportingRepo: reportingRepo,
		transferRepo:  transferRepo,
	}
}

var _ portssvc.ClosingSvcFacade = (*closingService)(nil)

// CloseMonth locks every entry of the month and records an immutable closing
// row. The unique (household, yearMonth) constraint makes the whole operation
// at-most-once: a repeated or concurrent close surfaces as a conflict without
// locking anything twice.
func (s *closingService) CloseMonth(ctx context.Context, householdID string, req dto.CloseMonthRequest, requestingUserID string) (*domain.MonthClosing, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleOwner); err != nil {
		return nil, err
	}

	monthStart, monthEnd, err := parseYearMonth(req.YearMonth)
	if err != nil {
		return nil, err
	}
	if !monthStart.Before(time.Now()) {
		return nil, fmt.Errorf("%w: cannot close a future month", apperrors.ErrValidation)
	}

	now := time.Now()

	pending, err := s.countPendingTransfersInMonth(ctx, householdID, monthStart, monthEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to count pending transfers for closing")
		return nil, fmt.Errorf("failed to count pending transfers: %w", err)
	}

	closing := domain.MonthClosing{
		ClosingID:   uuid.NewString(),
		HouseholdID: householdID,
		YearMonth:   req.YearMonth,
		ClosedAt:    now,
		ClosedBy:    requestingUserID,
		Summary: domain.ClosingSummary{
			PendingTransfers: pending,
			ClosedAt:         now,
		},
	}

	result, err := s.closingRepo.CloseMonth(ctx, closing, monthStart, monthEnd)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: month %s is already closed", apperrors.ErrConflict, req.YearMonth)
		}
		s.LogError(ctx, err, "Failed to close month",
			slog.String("household_id", householdID),
			slog.String("year_month", req.YearMonth))
		return nil, err
	}

	s.LogInfo(ctx, "Month closed successfully",
		slog.String("household_id", householdID),
		slog.String("year_month", req.YearMonth),
		slog.Int("locked_count", result.Summary.LockedCount))
	return result, nil
}

func (s *closingService) GetClosing(ctx context.Context, householdID string, yearMonth string, requestingUserID string) (*domain.MonthClosing, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, _, err := parseYearMonth(yearMonth); err != nil {
		return nil, err
	}

	closing, err := s.closingRepo.FindClosingByMonth(ctx, householdID, yearMonth)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find closing", slog.String("year_month", yearMonth))
		}
		return nil, err
	}
	return closing, nil
}

func (s *closingService) ListClosings(ctx context.Context, householdID string, requestingUserID string) ([]domain.MonthClosing, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	closings, err := s.closingRepo.ListClosings(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list closings", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list closings: %w", err)
	}
	if closings == nil {
		return []domain.MonthClosing{}, nil
	}
	return closings, nil
}

// PreviewClosing computes the summary a closing would snapshot, read-only.
func (s *closingService) PreviewClosing(ctx context.Context, householdID string, yearMonth string, requestingUserID string) (*dto.ClosingPreviewResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	monthStart, monthEnd, err := parseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}

	alreadyClosed := false
	if _, err := s.closingRepo.FindClosingByMonth(ctx, householdID, yearMonth); err == nil {
		alreadyClosed = true
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	summary, err := s.reportingRepo.MonthlySummary(ctx, householdID, monthStart, monthEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute monthly summary for preview")
		return nil, fmt.Errorf("failed to compute monthly summary: %w", err)
	}

	pending, err := s.countPendingTransfersInMonth(ctx, householdID, monthStart, monthEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to count pending transfers for preview")
		return nil, fmt.Errorf("failed to count pending transfers: %w", err)
	}

	return &dto.ClosingPreviewResponse{
		YearMonth:     yearMonth,
		AlreadyClosed: alreadyClosed,
		Summary: domain.ClosingSummary{
			TotalIncome:      summary.TotalIncome,
			TotalExpense:     summary.TotalExpense,
			TotalTransfer:    summary.TotalTransfer,
			NetChange:        summary.NetChange,
			EntryCount:       summary.EntryCount,
			PendingTransfers: pending,
		},
		PendingTransfers: pending,
	}, nil
}

// countPendingTransfersInMonth counts PENDING transfer instances due in the window.
func (s *closingService) countPendingTransfersInMonth(ctx context.Context, householdID string, monthStart, monthEnd time.Time) (int, error) {
	status := domain.TransferPending
	instances, err := s.transferRepo.ListInstancesByHousehold(ctx, householdID, &status)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, instance := range instances {
		if !instance.DueDate.Before(monthStart) && instance.DueDate.Before(monthEnd) {
			count++
		}
	}
	return count, nil
}
