package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockCategoryRepo  *MockCategoryRepository
	mockAuthorizer    *MockHouseholdAuthorizer
	service           portssvc.ReportingSvcFacade
	ctx               context.Context

	householdID string
	userID      string
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.mockReportingRepo = new(MockReportingRepository)
	s.mockCategoryRepo = new(MockCategoryRepository)
	s.mockAuthorizer = new(MockHouseholdAuthorizer)
	s.service = services.NewReportingService(s.mockReportingRepo, s.mockCategoryRepo, s.mockAuthorizer)
	s.ctx = context.Background()

	s.householdID = "household-1"
	s.userID = "user-1"
}

func (s *ReportingServiceTestSuite) TestGetMonthlySummary_Success() {
	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	summary := &domain.MonthlySummary{
		HouseholdID:  s.householdID,
		YearMonth:    "2025-06",
		TotalIncome:  decimal.NewFromInt(4800),
		TotalExpense: decimal.NewFromInt(3100),
		NetChange:    decimal.NewFromInt(1700),
		EntryCount:   37,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockReportingRepo.On("MonthlySummary", s.ctx, s.householdID, monthStart, monthEnd).Return(summary, nil)

	result, err := s.service.GetMonthlySummary(s.ctx, s.householdID, "2025-06", s.userID)

	s.NoError(err)
	s.True(result.NetChange.Equal(decimal.NewFromInt(1700)))
	s.Equal(37, result.EntryCount)
}

func (s *ReportingServiceTestSuite) TestGetMonthlySummary_InvalidYearMonth() {
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)

	result, err := s.service.GetMonthlySummary(s.ctx, s.householdID, "2025/06", s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(result)
}

func (s *ReportingServiceTestSuite) TestGetCategoryBreakdown_RollsChildrenIntoParents() {
	foodID := "category-food"
	groceriesID := "category-groceries"
	diningID := "category-dining"
	salaryID := "category-salary"

	totals := []domain.CategoryTotal{
		{CategoryID: groceriesID, CategoryName: "Groceries", CategoryType: domain.CategoryExpense, Total: decimal.NewFromInt(420)},
		{CategoryID: diningID, CategoryName: "Dining Out", CategoryType: domain.CategoryExpense, Total: decimal.NewFromInt(180)},
		{CategoryID: salaryID, CategoryName: "Salary", CategoryType: domain.CategoryIncome, Total: decimal.NewFromInt(4800)},
	}
	categories := []domain.Category{
		{CategoryID: foodID, Name: "Food", CategoryType: domain.CategoryExpense},
		{CategoryID: groceriesID, Name: "Groceries", CategoryType: domain.CategoryExpense, ParentID: &foodID},
		{CategoryID: diningID, Name: "Dining Out", CategoryType: domain.CategoryExpense, ParentID: &foodID},
		{CategoryID: salaryID, Name: "Salary", CategoryType: domain.CategoryIncome},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockReportingRepo.On("CategoryBreakdown", s.ctx, s.householdID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)).Return(totals, nil)
	s.mockCategoryRepo.On("ListCategories", s.ctx, s.householdID).Return(categories, nil)

	result, err := s.service.GetCategoryBreakdown(s.ctx, s.householdID, "2025-06", s.userID)

	s.NoError(err)

	byID := make(map[string]domain.CategoryTotal)
	for _, t := range result {
		byID[t.CategoryID] = t
	}
	// The parent row aggregates both children even though no entry targets it directly.
	s.True(byID[foodID].Total.Equal(decimal.NewFromInt(600)), "food total %s", byID[foodID].Total)
	s.Equal("Food", byID[foodID].CategoryName)
	s.True(byID[groceriesID].Total.Equal(decimal.NewFromInt(420)))
	s.True(byID[salaryID].Total.Equal(decimal.NewFromInt(4800)))
}

func (s *ReportingServiceTestSuite) TestGetCategoryBreakdown_ParentWithOwnEntries() {
	foodID := "category-food"
	groceriesID := "category-groceries"

	totals := []domain.CategoryTotal{
		{CategoryID: foodID, CategoryName: "Food", CategoryType: domain.CategoryExpense, Total: decimal.NewFromInt(50)},
		{CategoryID: groceriesID, CategoryName: "Groceries", CategoryType: domain.CategoryExpense, Total: decimal.NewFromInt(300)},
	}
	categories := []domain.Category{
		{CategoryID: foodID, Name: "Food", CategoryType: domain.CategoryExpense},
		{CategoryID: groceriesID, Name: "Groceries", CategoryType: domain.CategoryExpense, ParentID: &foodID},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockReportingRepo.On("CategoryBreakdown", s.ctx, s.householdID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)).Return(totals, nil)
	s.mockCategoryRepo.On("ListCategories", s.ctx, s.householdID).Return(categories, nil)

	result, err := s.service.GetCategoryBreakdown(s.ctx, s.householdID, "2025-06", s.userID)

	s.NoError(err)

	byID := make(map[string]domain.CategoryTotal)
	for _, t := range result {
		byID[t.CategoryID] = t
	}
	s.True(byID[foodID].Total.Equal(decimal.NewFromInt(350)), "parent keeps its own total plus the rollup")
}

func (s *ReportingServiceTestSuite) TestGetCategoryBreakdown_EmptyMonth() {
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockReportingRepo.On("CategoryBreakdown", s.ctx, s.householdID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)).Return([]domain.CategoryTotal{}, nil)

	result, err := s.service.GetCategoryBreakdown(s.ctx, s.householdID, "2025-06", s.userID)

	s.NoError(err)
	s.Empty(result)
	s.mockCategoryRepo.AssertNotCalled(s.T(), "ListCategories", mock.Anything, mock.Anything)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
