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

type LoanServiceTestSuite struct {
	suite.Suite
	mockLoanRepo    *MockLoanRepository
	mockAccountRepo *MockAccountRepository
	mockClosingRepo *MockClosingRepository
	mockAuthorizer  *MockHouseholdAuthorizer
	service         portssvc.LoanSvcFacade
	ctx             context.Context

	householdID string
	userID      string
	loanID      string
	accountID   string
}

func (s *LoanServiceTestSuite) SetupTest() {
	s.mockLoanRepo = new(MockLoanRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockClosingRepo = new(MockClosingRepository)
	s.mockAuthorizer = new(MockHouseholdAuthorizer)
	s.service = services.NewLoanService(s.mockLoanRepo, s.mockAccountRepo, s.mockClosingRepo, s.mockAuthorizer)
	s.ctx = context.Background()

	s.householdID = "household-1"
	s.userID = "user-1"
	s.loanID = "loan-1"
	s.accountID = "account-checking"
}

func (s *LoanServiceTestSuite) loan() *domain.Loan {
	accountID := s.accountID
	return &domain.Loan{
		LoanID:                 s.loanID,
		HouseholdID:            s.householdID,
		Name:                   "Mortgage",
		PrincipalOriginal:      decimal.NewFromInt(100000),
		StartDate:              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		TermMonths:             12,
		RepaymentType:          domain.Annuity,
		InterestPayDay:         15,
		LinkedPaymentAccountID: &accountID,
		IsActive:               true,
	}
}

func (s *LoanServiceTestSuite) paymentAccount() *domain.Account {
	return &domain.Account{
		AccountID:    s.accountID,
		HouseholdID:  s.householdID,
		Name:         "Checking",
		AccountType:  domain.Bank,
		CurrencyCode: "EUR",
		IsActive:     true,
	}
}

func (s *LoanServiceTestSuite) TestCreateLoan_GeneratesFullSchedule() {
	accountID := s.accountID
	req := dto.CreateLoanRequest{
		Name:                   "Mortgage",
		PrincipalOriginal:      decimal.NewFromInt(100000),
		StartDate:              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		TermMonths:             12,
		RepaymentType:          domain.Annuity,
		InterestPayDay:         15,
		AnnualRate:             decimal.RequireFromString("0.12"),
		LinkedPaymentAccountID: &accountID,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountByID", s.ctx, s.accountID).Return(s.paymentAccount(), nil)
	s.mockLoanRepo.On("CreateLoanWithSchedule", s.ctx, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.LoanRate"), mock.AnythingOfType("[]domain.LoanScheduleEntry")).
		Run(func(args mock.Arguments) {
			loan := args.Get(1).(domain.Loan)
			rate := args.Get(2).(domain.LoanRate)
			schedule := args.Get(3).([]domain.LoanScheduleEntry)

			s.True(loan.IsActive)
			s.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), loan.MaturityDate)
			s.True(rate.AnnualRate.Equal(decimal.RequireFromString("0.12")))
			s.True(rate.EffectiveDate.Equal(req.StartDate))
			s.Len(schedule, 12)
			s.True(schedule[11].BalanceAfter.IsZero())
		}).Return(nil)

	loan, err := s.service.CreateLoan(s.ctx, s.householdID, req, s.userID)

	s.NoError(err)
	s.NotEmpty(loan.LoanID)
	s.mockLoanRepo.AssertExpectations(s.T())
}

func (s *LoanServiceTestSuite) TestCreateLoan_NonPositivePrincipal() {
	req := dto.CreateLoanRequest{
		Name:              "Bad loan",
		PrincipalOriginal: decimal.Zero,
		TermMonths:        12,
		RepaymentType:     domain.Annuity,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)

	loan, err := s.service.CreateLoan(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(loan)
	s.mockLoanRepo.AssertNotCalled(s.T(), "CreateLoanWithSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LoanServiceTestSuite) TestPostPayment_Success() {
	target := &domain.LoanScheduleEntry{
		ScheduleID:      "sched-1",
		LoanID:          s.loanID,
		PeriodStart:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PostingDate:     time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		InterestAmount:  decimal.RequireFromString("1000"),
		PrincipalAmount: decimal.RequireFromString("7884.88"),
		FeeAmount:       decimal.Zero,
	}
	counter := &domain.Account{
		AccountID:   "account-loan-counter",
		HouseholdID: s.householdID,
		Name:        "Loan: Mortgage",
		AccountType: domain.External,
		IsActive:    true,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(s.loan(), nil)
	s.mockLoanRepo.On("FindScheduleEntryByID", s.ctx, "sched-1").Return(target, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return([]domain.LoanScheduleEntry{*target}, nil)
	s.mockAccountRepo.On("FindAccountByID", s.ctx, s.accountID).Return(s.paymentAccount(), nil)
	s.mockAccountRepo.On("FindAccountByName", s.ctx, s.householdID, "Loan: Mortgage").Return(counter, nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, target.PostingDate).Return(false, nil)
	s.mockLoanRepo.On("PostLoanPayment", s.ctx, "sched-1", mock.AnythingOfType("domain.Entry"), mock.AnythingOfType("[]domain.Line"), mock.Anything, s.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			entry := args.Get(2).(domain.Entry)
			balanceChanges := args.Get(4).(map[string]decimal.Decimal)
			s.Equal(domain.EntryExpense, entry.EntryType)
			s.Equal(domain.SourceLoan, entry.Source)
			s.True(entry.OccurredAt.Equal(target.PostingDate))
			s.True(balanceChanges[s.accountID].Equal(decimal.RequireFromString("-8884.88")))
			s.True(balanceChanges[counter.AccountID].Equal(decimal.RequireFromString("8884.88")))
		}).Return(nil)

	entry, err := s.service.PostPayment(s.ctx, s.householdID, s.loanID, dto.PostLoanPaymentRequest{ScheduleID: "sched-1"}, s.userID)

	s.NoError(err)
	s.Len(entry.Lines, 2)
	s.mockLoanRepo.AssertExpectations(s.T())
}

func (s *LoanServiceTestSuite) TestPostPayment_AlreadyPosted() {
	target := &domain.LoanScheduleEntry{
		ScheduleID: "sched-1",
		LoanID:     s.loanID,
		Locked:     true,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(s.loan(), nil)
	s.mockLoanRepo.On("FindScheduleEntryByID", s.ctx, "sched-1").Return(target, nil)

	entry, err := s.service.PostPayment(s.ctx, s.householdID, s.loanID, dto.PostLoanPaymentRequest{ScheduleID: "sched-1"}, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(entry)
	s.mockLoanRepo.AssertNotCalled(s.T(), "PostLoanPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LoanServiceTestSuite) TestPostPayment_EarlierPeriodUnlocked() {
	earlier := domain.LoanScheduleEntry{
		ScheduleID:  "sched-1",
		LoanID:      s.loanID,
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	target := domain.LoanScheduleEntry{
		ScheduleID:  "sched-2",
		LoanID:      s.loanID,
		PeriodStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(s.loan(), nil)
	s.mockLoanRepo.On("FindScheduleEntryByID", s.ctx, "sched-2").Return(&target, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return([]domain.LoanScheduleEntry{earlier, target}, nil)

	entry, err := s.service.PostPayment(s.ctx, s.householdID, s.loanID, dto.PostLoanPaymentRequest{ScheduleID: "sched-2"}, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(entry)
}

func (s *LoanServiceTestSuite) TestPostPayment_ClosedMonth() {
	target := &domain.LoanScheduleEntry{
		ScheduleID:      "sched-1",
		LoanID:          s.loanID,
		PeriodStart:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PostingDate:     time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		InterestAmount:  decimal.NewFromInt(1000),
		PrincipalAmount: decimal.NewFromInt(5000),
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(s.loan(), nil)
	s.mockLoanRepo.On("FindScheduleEntryByID", s.ctx, "sched-1").Return(target, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return([]domain.LoanScheduleEntry{*target}, nil)
	s.mockAccountRepo.On("FindAccountByID", s.ctx, s.accountID).Return(s.paymentAccount(), nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, target.PostingDate).Return(true, nil)

	entry, err := s.service.PostPayment(s.ctx, s.householdID, s.loanID, dto.PostLoanPaymentRequest{ScheduleID: "sched-1"}, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(entry)
}

func (s *LoanServiceTestSuite) TestAddRate_RegeneratesUnlockedTail() {
	loan := s.loan()
	effectiveDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	schedule := []domain.LoanScheduleEntry{
		{ScheduleID: "sched-1", LoanID: s.loanID, PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Locked: true, BalanceAfter: decimal.NewFromInt(92000)},
		{ScheduleID: "sched-2", LoanID: s.loanID, PeriodStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Locked: true, BalanceAfter: decimal.NewFromInt(84000)},
		{ScheduleID: "sched-3", LoanID: s.loanID, PeriodStart: effectiveDate, BalanceAfter: decimal.NewFromInt(76000)},
		{ScheduleID: "sched-4", LoanID: s.loanID, PeriodStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), BalanceAfter: decimal.NewFromInt(68000)},
	}
	req := dto.AddLoanRateRequest{EffectiveDate: effectiveDate, AnnualRate: decimal.RequireFromString("0.06")}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(loan, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return(schedule, nil)
	s.mockLoanRepo.On("AddRateAndReplaceSchedule", s.ctx, mock.AnythingOfType("domain.LoanRate"), effectiveDate, mock.AnythingOfType("[]domain.LoanScheduleEntry")).
		Run(func(args mock.Arguments) {
			rate := args.Get(1).(domain.LoanRate)
			regenerated := args.Get(3).([]domain.LoanScheduleEntry)
			s.True(rate.AnnualRate.Equal(decimal.RequireFromString("0.06")))
			s.Len(regenerated, 2, "only the unlocked tail is regenerated")
			s.True(regenerated[0].PeriodStart.Equal(effectiveDate))
			// The tail amortizes the balance the locked periods left behind.
			s.True(regenerated[1].BalanceAfter.IsZero())
			totalPrincipal := regenerated[0].PrincipalAmount.Add(regenerated[1].PrincipalAmount)
			s.True(totalPrincipal.Equal(decimal.NewFromInt(84000)), "tail principal %s", totalPrincipal)
		}).Return(nil)

	updated, err := s.service.AddRate(s.ctx, s.householdID, s.loanID, req, s.userID)

	s.NoError(err)
	s.NotNil(updated)
	s.mockLoanRepo.AssertExpectations(s.T())
}

func (s *LoanServiceTestSuite) TestAddRate_UnlockedPeriodBeforeEffectiveDate() {
	loan := s.loan()
	schedule := []domain.LoanScheduleEntry{
		{ScheduleID: "sched-1", LoanID: s.loanID, PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ScheduleID: "sched-2", LoanID: s.loanID, PeriodStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	req := dto.AddLoanRateRequest{
		EffectiveDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		AnnualRate:    decimal.RequireFromString("0.06"),
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(loan, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return(schedule, nil)

	updated, err := s.service.AddRate(s.ctx, s.householdID, s.loanID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(updated)
	s.mockLoanRepo.AssertNotCalled(s.T(), "AddRateAndReplaceSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LoanServiceTestSuite) TestSimulatePrepayment_ProjectsSavings() {
	loan := s.loan()
	firstUnlocked := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	schedule := []domain.LoanScheduleEntry{
		{ScheduleID: "sched-1", LoanID: s.loanID, PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Locked: true, BalanceAfter: decimal.NewFromInt(95000)},
		{ScheduleID: "sched-2", LoanID: s.loanID, PeriodStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Locked: true, BalanceAfter: decimal.NewFromInt(90000)},
		{ScheduleID: "sched-3", LoanID: s.loanID, PeriodStart: firstUnlocked},
		{ScheduleID: "sched-4", LoanID: s.loanID, PeriodStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	rates := []domain.LoanRate{
		{RateID: "rate-1", LoanID: s.loanID, EffectiveDate: loan.StartDate, AnnualRate: decimal.RequireFromString("0.12")},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(loan, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return(schedule, nil)
	s.mockLoanRepo.On("ListRates", s.ctx, s.loanID).Return(rates, nil)

	projection, err := s.service.SimulatePrepayment(s.ctx, s.householdID, s.loanID, dto.SimulatePrepaymentRequest{Amount: decimal.NewFromInt(30000)}, s.userID)

	s.NoError(err)
	s.True(projection.CurrentBalance.Equal(decimal.NewFromInt(90000)))
	s.True(projection.NewBalance.Equal(decimal.NewFromInt(60000)))
	s.Equal(2, projection.RemainingMonths)
	s.True(projection.NewPayment.LessThan(projection.OldPayment))
	s.True(projection.PaymentDelta.IsPositive())
	s.True(projection.InterestSaved.IsPositive())
	// Savings = payment delta over the remaining term minus the prepaid capital.
	expectedSaved := projection.PaymentDelta.Mul(decimal.NewFromInt(2)).Sub(decimal.NewFromInt(30000))
	s.True(projection.InterestSaved.Equal(expectedSaved), "saved %s, expected %s", projection.InterestSaved, expectedSaved)
}

func (s *LoanServiceTestSuite) TestSimulatePrepayment_SavingsFlooredAtZero() {
	loan := s.loan()
	loan.RepaymentType = domain.InterestOnly
	firstUnlocked := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	schedule := []domain.LoanScheduleEntry{
		{ScheduleID: "sched-1", LoanID: s.loanID, PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Locked: true, BalanceAfter: decimal.NewFromInt(100000)},
		{ScheduleID: "sched-2", LoanID: s.loanID, PeriodStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Locked: true, BalanceAfter: decimal.NewFromInt(90000)},
		{ScheduleID: "sched-3", LoanID: s.loanID, PeriodStart: firstUnlocked},
		{ScheduleID: "sched-4", LoanID: s.loanID, PeriodStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	rates := []domain.LoanRate{
		{RateID: "rate-1", LoanID: s.loanID, EffectiveDate: loan.StartDate, AnnualRate: decimal.RequireFromString("0.12")},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(loan, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return(schedule, nil)
	s.mockLoanRepo.On("ListRates", s.ctx, s.loanID).Return(rates, nil)

	// Interest-only: the first-period payment drops by 300/month, so two months
	// of delta can never recoup a 30,000 prepayment. The estimate floors at zero.
	projection, err := s.service.SimulatePrepayment(s.ctx, s.householdID, s.loanID, dto.SimulatePrepaymentRequest{Amount: decimal.NewFromInt(30000)}, s.userID)

	s.NoError(err)
	s.True(projection.PaymentDelta.IsPositive())
	s.True(projection.InterestSaved.IsZero(), "saved %s", projection.InterestSaved)
}

func (s *LoanServiceTestSuite) TestSimulatePrepayment_AmountExceedsBalance() {
	loan := s.loan()
	schedule := []domain.LoanScheduleEntry{
		{ScheduleID: "sched-1", LoanID: s.loanID, PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(loan, nil)
	s.mockLoanRepo.On("ListSchedule", s.ctx, s.loanID).Return(schedule, nil)

	projection, err := s.service.SimulatePrepayment(s.ctx, s.householdID, s.loanID, dto.SimulatePrepaymentRequest{Amount: decimal.NewFromInt(100000)}, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(projection)
}

func (s *LoanServiceTestSuite) TestGetLoanByID_WrongHousehold() {
	other := s.loan()
	other.HouseholdID = "household-other"

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockLoanRepo.On("FindLoanByID", s.ctx, s.loanID).Return(other, nil)

	loan, err := s.service.GetLoanByID(s.ctx, s.householdID, s.loanID, s.userID)

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Nil(loan)
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}
