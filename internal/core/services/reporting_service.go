package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
)

// reportingService implements the ReportingSvcFacade interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepositoryFacade
	categoryRepo  portsrepo.CategoryRepositoryFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepositoryFacade, categoryRepo portsrepo.CategoryRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.ReportingSvcFacade {
	return &reportingService{
		BaseService:   BaseService{HouseholdAuthorizer: authorizer},
		reportingRepo: reportingRepo,
		categoryRepo:  categoryRepo,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// GetMonthlySummary aggregates a month's income, expense, transfer volume and
// net change from the ledger lines.
func (s *reportingService) GetMonthlySummary(ctx context.Context, householdID string, yearMonth string, requestingUserID string) (*domain.MonthlySummary, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	monthStart, monthEnd, err := parseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}

	summary, err := s.reportingRepo.MonthlySummary(ctx, householdID, monthStart, monthEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute monthly summary",
			slog.String("household_id", householdID),
			slog.String("year_month", yearMonth))
		return nil, fmt.Errorf("failed to compute monthly summary: %w", err)
	}
	return summary, nil
}

// GetCategoryBreakdown totals a month's entries per category. Totals of child
// categories also roll up into their parent's row, so a parent shows its own
// entries plus everything classified under its children.
func (s *reportingService) GetCategoryBreakdown(ctx context.Context, householdID string, yearMonth string, requestingUserID string) ([]domain.CategoryTotal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	monthStart, monthEnd, err := parseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}

	totals, err := s.reportingRepo.CategoryBreakdown(ctx, householdID, monthStart, monthEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute category breakdown",
			slog.String("household_id", householdID),
			slog.String("year_month", yearMonth))
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}
	if len(totals) == 0 {
		return []domain.CategoryTotal{}, nil
	}

	categories, err := s.categoryRepo.ListCategories(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories for breakdown rollup")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	parentOf := make(map[string]*string, len(categories))
	catByID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		parentOf[c.CategoryID] = c.ParentID
		catByID[c.CategoryID] = c
	}

	// Index the direct totals, then add each child's total onto its parent.
	rows := make(map[string]*domain.CategoryTotal, len(totals))
	order := make([]string, 0, len(totals))
	for i := range totals {
		t := totals[i]
		rows[t.CategoryID] = &t
		order = append(order, t.CategoryID)
	}
	for _, t := range totals {
		parentID := parentOf[t.CategoryID]
		if parentID == nil {
			continue
		}
		parentRow, ok := rows[*parentID]
		if !ok {
			parent, exists := catByID[*parentID]
			if !exists {
				continue
			}
			parentRow = &domain.CategoryTotal{
				CategoryID:   parent.CategoryID,
				CategoryName: parent.Name,
				CategoryType: parent.CategoryType,
			}
			rows[*parentID] = parentRow
			order = append(order, *parentID)
		}
		parentRow.Total = parentRow.Total.Add(t.Total)
	}

	result := make([]domain.CategoryTotal, 0, len(order))
	for _, id := range order {
		result = append(result, *rows[id])
	}
	return result, nil
}
