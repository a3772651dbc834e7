package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/core/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ClosingServiceTestSuite struct {
	suite.Suite
	mockClosingRepo   *MockClosingRepository
	mockReportingRepo *MockReportingRepository
	mockTransferRepo  *MockTransferRepository
	mockAuthorizer    *MockHouseholdAuthorizer
	service           portssvc.ClosingSvcFacade
	ctx               context.Context

	householdID string
	userID      string
}

func (s *ClosingServiceTestSuite) SetupTest() {
	s.mockClosingRepo = new(MockClosingRepository)
	s.mockReportingRepo = new(MockReportingRepository)
	s.mockTransferRepo = new(MockTransferRepository)
	s.mockAuthorizer = new(MockHouseholdAuthorizer)
	s.service = services.NewClosingService(s.mockClosingRepo, s.mockReportingRepo, s.mockTransferRepo, s.mockAuthorizer)
	s.ctx = context.Background()

	s.householdID = "household-1"
	s.userID = "owner-1"
}

func (s *ClosingServiceTestSuite) TestCloseMonth_Success() {
	monthStart := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	stored := &domain.MonthClosing{
		ClosingID:   "closing-1",
		HouseholdID: s.householdID,
		YearMonth:   "2025-05",
		Summary:     domain.ClosingSummary{LockedCount: 14, EntryCount: 14},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleOwner).Return(nil)
	s.mockTransferRepo.On("ListInstancesByHousehold", s.ctx, s.householdID, mock.Anything).Return([]domain.TransferInstance{}, nil)
	s.mockClosingRepo.On("CloseMonth", s.ctx, mock.AnythingOfType("domain.MonthClosing"), monthStart, monthEnd).
		Run(func(args mock.Arguments) {
			closing := args.Get(1).(domain.MonthClosing)
			s.Equal("2025-05", closing.YearMonth)
			s.Equal(s.userID, closing.ClosedBy)
		}).Return(stored, nil)

	result, err := s.service.CloseMonth(s.ctx, s.householdID, dto.CloseMonthRequest{YearMonth: "2025-05"}, s.userID)

	s.NoError(err)
	s.Equal(14, result.Summary.LockedCount)
	s.mockClosingRepo.AssertExpectations(s.T())
}

func (s *ClosingServiceTestSuite) TestCloseMonth_RequiresOwner() {
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleOwner).Return(apperrors.ErrForbidden)

	result, err := s.service.CloseMonth(s.ctx, s.householdID, dto.CloseMonthRequest{YearMonth: "2025-05"}, s.userID)

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Nil(result)
	s.mockClosingRepo.AssertNotCalled(s.T(), "CloseMonth", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClosingServiceTestSuite) TestCloseMonth_FutureMonth() {
	future := time.Now().AddDate(1, 0, 0).Format("2006-01")

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleOwner).Return(nil)

	result, err := s.service.CloseMonth(s.ctx, s.householdID, dto.CloseMonthRequest{YearMonth: future}, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(result)
}

func (s *ClosingServiceTestSuite) TestCloseMonth_InvalidYearMonth() {
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleOwner).Return(nil)

	result, err := s.service.CloseMonth(s.ctx, s.householdID, dto.CloseMonthRequest{YearMonth: "05-2025"}, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(result)
}

func (s *ClosingServiceTestSuite) TestCloseMonth_AlreadyClosed() {
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleOwner).Return(nil)
	s.mockTransferRepo.On("ListInstancesByHousehold", s.ctx, s.householdID, mock.Anything).Return([]domain.TransferInstance{}, nil)
	s.mockClosingRepo.On("CloseMonth", s.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil, apperrors.ErrDuplicate)

	result, err := s.service.CloseMonth(s.ctx, s.householdID, dto.CloseMonthRequest{YearMonth: "2025-05"}, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict, "a duplicate close must surface as a conflict")
	s.Nil(result)
}

func (s *ClosingServiceTestSuite) TestCloseMonth_CountsPendingTransfers() {
	inWindow := domain.TransferInstance{InstanceID: "ti-1", DueDate: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)}
	outOfWindow := domain.TransferInstance{InstanceID: "ti-2", DueDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleOwner).Return(nil)
	s.mockTransferRepo.On("ListInstancesByHousehold", s.ctx, s.householdID, mock.Anything).
		Return([]domain.TransferInstance{inWindow, outOfWindow}, nil)
	s.mockClosingRepo.On("CloseMonth", s.ctx, mock.AnythingOfType("domain.MonthClosing"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			closing := args.Get(1).(domain.MonthClosing)
			s.Equal(1, closing.Summary.PendingTransfers, "only instances due inside the month count")
		}).Return(&domain.MonthClosing{YearMonth: "2025-05"}, nil)

	_, err := s.service.CloseMonth(s.ctx, s.householdID, dto.CloseMonthRequest{YearMonth: "2025-05"}, s.userID)

	s.NoError(err)
	s.mockClosingRepo.AssertExpectations(s.T())
}

func (s *ClosingServiceTestSuite) TestPreviewClosing_OpenMonth() {
	monthStart := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	summary := &domain.MonthlySummary{
		HouseholdID:  s.householdID,
		YearMonth:    "2025-05",
		TotalIncome:  decimal.NewFromInt(5000),
		TotalExpense: decimal.NewFromInt(3200),
		NetChange:    decimal.NewFromInt(1800),
		EntryCount:   42,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockClosingRepo.On("FindClosingByMonth", s.ctx, s.householdID, "2025-05").Return(nil, apperrors.ErrNotFound)
	s.mockReportingRepo.On("MonthlySummary", s.ctx, s.householdID, monthStart, monthEnd).Return(summary, nil)
	s.mockTransferRepo.On("ListInstancesByHousehold", s.ctx, s.householdID, mock.Anything).Return([]domain.TransferInstance{}, nil)

	preview, err := s.service.PreviewClosing(s.ctx, s.householdID, "2025-05", s.userID)

	s.NoError(err)
	s.False(preview.AlreadyClosed)
	s.True(preview.Summary.NetChange.Equal(decimal.NewFromInt(1800)))
	s.Equal(42, preview.Summary.EntryCount)
}

func (s *ClosingServiceTestSuite) TestPreviewClosing_AlreadyClosedMonth() {
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockClosingRepo.On("FindClosingByMonth", s.ctx, s.householdID, "2025-04").
		Return(&domain.MonthClosing{YearMonth: "2025-04"}, nil)
	s.mockReportingRepo.On("MonthlySummary", s.ctx, s.householdID, mock.Anything, mock.Anything).
		Return(&domain.MonthlySummary{YearMonth: "2025-04"}, nil)
	s.mockTransferRepo.On("ListInstancesByHousehold", s.ctx, s.householdID, mock.Anything).Return([]domain.TransferInstance{}, nil)

	preview, err := s.service.PreviewClosing(s.ctx, s.householdID, "2025-04", s.userID)

	s.NoError(err)
	s.True(preview.AlreadyClosed)
}

func (s *ClosingServiceTestSuite) TestListClosings_EmptyResult() {
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockClosingRepo.On("ListClosings", s.ctx, s.householdID).Return(nil, nil)

	closings, err := s.service.ListClosings(s.ctx, s.householdID, s.userID)

	s.NoError(err)
	s.NotNil(closings)
	s.Empty(closings)
}

func TestClosingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClosingServiceTestSuite))
}
