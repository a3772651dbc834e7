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

type TransferServiceTestSuite struct {
	suite.Suite
	mockTransferRepo *MockTransferRepository
	mockAccountRepo  *MockAccountRepository
	mockClosingRepo  *MockClosingRepository
	mockAuthorizer   *MockHouseholdAuthorizer
	service          portssvc.TransferSvcFacade
	ctx              context.Context

	householdID string
	userID      string
	fromAccount string
	toAccount   string
}

func (s *TransferServiceTestSuite) SetupTest() {
	s.mockTransferRepo = new(MockTransferRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockClosingRepo = new(MockClosingRepository)
	s.mockAuthorizer = new(MockHouseholdAuthorizer)
	s.service = services.NewTransferService(s.mockTransferRepo, s.mockAccountRepo, s.mockClosingRepo, s.mockAuthorizer)
	s.ctx = context.Background()

	s.householdID = "household-1"
	s.userID = "user-1"
	s.fromAccount = "account-salary"
	s.toAccount = "account-savings"
}

func (s *TransferServiceTestSuite) rule() *domain.TransferRule {
	return &domain.TransferRule{
		RuleID:         "rule-1",
		HouseholdID:    s.householdID,
		Name:           "Monthly savings",
		FromAccountID:  s.fromAccount,
		ToAccountID:    s.toAccount,
		AmountExpected: decimal.NewFromInt(500),
		DayOfMonth:     25,
		IsActive:       true,
	}
}

func (s *TransferServiceTestSuite) TestCreateRule_Success() {
	req := dto.CreateTransferRuleRequest{
		Name:           "Monthly savings",
		FromAccountID:  s.fromAccount,
		ToAccountID:    s.toAccount,
		AmountExpected: decimal.NewFromInt(500),
		DayOfMonth:     25,
	}
	accounts := map[string]domain.Account{
		s.fromAccount: {AccountID: s.fromAccount, HouseholdID: s.householdID, IsActive: true},
		s.toAccount:   {AccountID: s.toAccount, HouseholdID: s.householdID, IsActive: true},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{s.fromAccount, s.toAccount}).Return(accounts, nil)
	s.mockTransferRepo.On("SaveRule", s.ctx, mock.AnythingOfType("domain.TransferRule")).
		Run(func(args mock.Arguments) {
			rule := args.Get(1).(domain.TransferRule)
			s.True(rule.IsActive)
			s.Equal(25, rule.DayOfMonth)
		}).Return(nil)

	rule, err := s.service.CreateRule(s.ctx, s.householdID, req, s.userID)

	s.NoError(err)
	s.NotEmpty(rule.RuleID)
	s.mockTransferRepo.AssertExpectations(s.T())
}

func (s *TransferServiceTestSuite) TestCreateRule_SameAccount() {
	req := dto.CreateTransferRuleRequest{
		Name:           "Broken rule",
		FromAccountID:  s.fromAccount,
		ToAccountID:    s.fromAccount,
		AmountExpected: decimal.NewFromInt(500),
		DayOfMonth:     1,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)

	rule, err := s.service.CreateRule(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(rule)
	s.mockTransferRepo.AssertNotCalled(s.T(), "SaveRule", mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestCreateRule_NonPositiveAmount() {
	req := dto.CreateTransferRuleRequest{
		Name:           "Zero rule",
		FromAccountID:  s.fromAccount,
		ToAccountID:    s.toAccount,
		AmountExpected: decimal.Zero,
		DayOfMonth:     1,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)

	rule, err := s.service.CreateRule(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(rule)
}

func (s *TransferServiceTestSuite) TestConfirmInstance_DefaultsToExpected() {
	instance := &domain.TransferInstance{
		InstanceID:     "instance-1",
		RuleID:         "rule-1",
		DueDate:        time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
		ExpectedAmount: decimal.NewFromInt(500),
		Status:         domain.TransferPending,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockTransferRepo.On("FindInstanceByID", s.ctx, "instance-1").Return(instance, nil)
	s.mockTransferRepo.On("FindRuleByID", s.ctx, "rule-1").Return(s.rule(), nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, instance.DueDate).Return(false, nil)
	s.mockTransferRepo.On("ConfirmInstance", s.ctx, mock.AnythingOfType("domain.TransferInstance"), mock.AnythingOfType("domain.Entry"), mock.AnythingOfType("[]domain.Line"), mock.Anything).
		Run(func(args mock.Arguments) {
			confirmed := args.Get(1).(domain.TransferInstance)
			entry := args.Get(2).(domain.Entry)
			lines := args.Get(3).([]domain.Line)
			balanceChanges := args.Get(4).(map[string]decimal.Decimal)

			s.Equal(domain.TransferConfirmed, confirmed.Status)
			s.NotNil(confirmed.GeneratedEntryID)
			s.Equal(domain.EntryTransfer, entry.EntryType)
			s.Equal(domain.SourceAutoTransfer, entry.Source)
			s.True(entry.OccurredAt.Equal(instance.DueDate))
			s.Len(lines, 2)
			s.True(balanceChanges[s.fromAccount].Equal(decimal.NewFromInt(-500)))
			s.True(balanceChanges[s.toAccount].Equal(decimal.NewFromInt(500)))
		}).Return(nil)

	confirmed, err := s.service.ConfirmInstance(s.ctx, s.householdID, "instance-1", dto.ConfirmTransferRequest{}, s.userID)

	s.NoError(err)
	s.Equal(domain.TransferConfirmed, confirmed.Status)
	s.mockTransferRepo.AssertExpectations(s.T())
}

func (s *TransferServiceTestSuite) TestConfirmInstance_ActualAmountOverride() {
	instance := &domain.TransferInstance{
		InstanceID:     "instance-1",
		RuleID:         "rule-1",
		DueDate:        time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
		ExpectedAmount: decimal.NewFromInt(500),
		Status:         domain.TransferPending,
	}
	actual := decimal.NewFromInt(450)

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockTransferRepo.On("FindInstanceByID", s.ctx, "instance-1").Return(instance, nil)
	s.mockTransferRepo.On("FindRuleByID", s.ctx, "rule-1").Return(s.rule(), nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, instance.DueDate).Return(false, nil)
	s.mockTransferRepo.On("ConfirmInstance", s.ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			balanceChanges := args.Get(4).(map[string]decimal.Decimal)
			s.True(balanceChanges[s.fromAccount].Equal(decimal.NewFromInt(-450)))
			s.True(balanceChanges[s.toAccount].Equal(decimal.NewFromInt(450)))
		}).Return(nil)

	_, err := s.service.ConfirmInstance(s.ctx, s.householdID, "instance-1", dto.ConfirmTransferRequest{ActualAmount: &actual}, s.userID)

	s.NoError(err)
}

func (s *TransferServiceTestSuite) TestConfirmInstance_AlreadyConfirmed() {
	instance := &domain.TransferInstance{
		InstanceID: "instance-1",
		RuleID:     "rule-1",
		Status:     domain.TransferConfirmed,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockTransferRepo.On("FindInstanceByID", s.ctx, "instance-1").Return(instance, nil)
	s.mockTransferRepo.On("FindRuleByID", s.ctx, "rule-1").Return(s.rule(), nil)

	confirmed, err := s.service.ConfirmInstance(s.ctx, s.householdID, "instance-1", dto.ConfirmTransferRequest{}, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(confirmed)
	s.mockTransferRepo.AssertNotCalled(s.T(), "ConfirmInstance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestConfirmInstance_ClosedMonth() {
	instance := &domain.TransferInstance{
		InstanceID:     "instance-1",
		RuleID:         "rule-1",
		DueDate:        time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC),
		ExpectedAmount: decimal.NewFromInt(500),
		Status:         domain.TransferPending,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockTransferRepo.On("FindInstanceByID", s.ctx, "instance-1").Return(instance, nil)
	s.mockTransferRepo.On("FindRuleByID", s.ctx, "rule-1").Return(s.rule(), nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, instance.DueDate).Return(true, nil)

	confirmed, err := s.service.ConfirmInstance(s.ctx, s.householdID, "instance-1", dto.ConfirmTransferRequest{}, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(confirmed)
}

func (s *TransferServiceTestSuite) TestSkipInstance_Success() {
	instance := &domain.TransferInstance{
		InstanceID: "instance-1",
		RuleID:     "rule-1",
		Status:     domain.TransferPending,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockTransferRepo.On("FindInstanceByID", s.ctx, "instance-1").Return(instance, nil)
	s.mockTransferRepo.On("FindRuleByID", s.ctx, "rule-1").Return(s.rule(), nil)
	s.mockTransferRepo.On("SkipInstance", s.ctx, "instance-1", s.userID, mock.AnythingOfType("time.Time")).Return(nil)

	skipped, err := s.service.SkipInstance(s.ctx, s.householdID, "instance-1", s.userID)

	s.NoError(err)
	s.Equal(domain.TransferSkipped, skipped.Status)
}

func (s *TransferServiceTestSuite) TestSkipInstance_NotPending() {
	instance := &domain.TransferInstance{
		InstanceID: "instance-1",
		RuleID:     "rule-1",
		Status:     domain.TransferMissed,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockTransferRepo.On("FindInstanceByID", s.ctx, "instance-1").Return(instance, nil)
	s.mockTransferRepo.On("FindRuleByID", s.ctx, "rule-1").Return(s.rule(), nil)

	skipped, err := s.service.SkipInstance(s.ctx, s.householdID, "instance-1", s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(skipped)
	s.mockTransferRepo.AssertNotCalled(s.T(), "SkipInstance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestMaterializeDueInstances_WalksMonthsFromLastDueDate() {
	rule := *s.rule()
	now := time.Date(2025, 6, 26, 12, 0, 0, 0, time.UTC)
	latest := time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC)

	s.mockTransferRepo.On("ListActiveRules", s.ctx).Return([]domain.TransferRule{rule}, nil)
	s.mockTransferRepo.On("FindLatestDueDate", s.ctx, rule.RuleID).Return(&latest, nil)

	var dueDates []time.Time
	s.mockTransferRepo.On("SaveInstance", s.ctx, mock.AnythingOfType("domain.TransferInstance")).
		Run(func(args mock.Arguments) {
			instance := args.Get(1).(domain.TransferInstance)
			s.Equal(domain.TransferPending, instance.Status)
			s.True(instance.ExpectedAmount.Equal(rule.AmountExpected))
			dueDates = append(dueDates, instance.DueDate)
		}).Return(nil)
	s.mockTransferRepo.On("MarkMissedBefore", s.ctx, now.AddDate(0, -1, 0), now).Return(2, nil)

	created, missed, err := s.service.MaterializeDueInstances(s.ctx, now)

	s.NoError(err)
	s.Equal(2, created, "May and June are due; July is not")
	s.Equal(2, missed)
	s.Len(dueDates, 2)
	s.Equal(time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC), dueDates[0])
	s.Equal(time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC), dueDates[1])
}

func (s *TransferServiceTestSuite) TestMaterializeDueInstances_NewRuleSkipsElapsedDay() {
	// Rule created after its day-of-month already passed: the first instance
	// lands in the following month.
	rule := *s.rule()
	rule.DayOfMonth = 5
	rule.AuditFields.CreatedAt = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC)

	s.mockTransferRepo.On("ListActiveRules", s.ctx).Return([]domain.TransferRule{rule}, nil)
	s.mockTransferRepo.On("FindLatestDueDate", s.ctx, rule.RuleID).Return(nil, nil)
	s.mockTransferRepo.On("SaveInstance", s.ctx, mock.AnythingOfType("domain.TransferInstance")).
		Run(func(args mock.Arguments) {
			instance := args.Get(1).(domain.TransferInstance)
			s.Equal(time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC), instance.DueDate)
		}).Return(nil).Once()
	s.mockTransferRepo.On("MarkMissedBefore", s.ctx, mock.Anything, mock.Anything).Return(0, nil)

	created, _, err := s.service.MaterializeDueInstances(s.ctx, now)

	s.NoError(err)
	s.Equal(1, created)
	s.mockTransferRepo.AssertExpectations(s.T())
}

func (s *TransferServiceTestSuite) TestMaterializeDueInstances_ClampsShortMonths() {
	rule := *s.rule()
	rule.DayOfMonth = 31
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	s.mockTransferRepo.On("ListActiveRules", s.ctx).Return([]domain.TransferRule{rule}, nil)
	s.mockTransferRepo.On("FindLatestDueDate", s.ctx, rule.RuleID).Return(&latest, nil)
	s.mockTransferRepo.On("SaveInstance", s.ctx, mock.AnythingOfType("domain.TransferInstance")).
		Run(func(args mock.Arguments) {
			instance := args.Get(1).(domain.TransferInstance)
			s.Equal(time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), instance.DueDate, "April has no 31st")
		}).Return(nil).Once()
	s.mockTransferRepo.On("MarkMissedBefore", s.ctx, mock.Anything, mock.Anything).Return(0, nil)

	created, _, err := s.service.MaterializeDueInstances(s.ctx, now)

	s.NoError(err)
	s.Equal(1, created)
}

func (s *TransferServiceTestSuite) TestListRules_FiltersInactiveByDefault() {
	active := *s.rule()
	inactive := *s.rule()
	inactive.RuleID = "rule-2"
	inactive.IsActive = false

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockTransferRepo.On("ListRulesByHousehold", s.ctx, s.householdID).Return([]domain.TransferRule{active, inactive}, nil)

	rules, err := s.service.ListRules(s.ctx, s.householdID, s.userID, false)

	s.NoError(err)
	s.Len(rules, 1)
	s.Equal("rule-1", rules[0].RuleID)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
