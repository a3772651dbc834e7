package services_test

import (
	"context"
	"testing"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/core/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo     *MockAccountRepository
	mockEntryRepo       *MockEntryRepository
	mockHouseholdReader *MockHouseholdReader
	mockAuthorizer      *MockHouseholdAuthorizer
	service             portssvc.AccountSvcFacade
	ctx                 context.Context

	householdID string
	userID      string
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockEntryRepo = new(MockEntryRepository)
	s.mockHouseholdReader = new(MockHouseholdReader)
	s.mockAuthorizer = new(MockHouseholdAuthorizer)
	s.service = services.NewAccountService(s.mockAccountRepo,
		services.WithHouseholdReaderSvc(s.mockHouseholdReader),
		services.WithHouseholdAuthorizer(s.mockAuthorizer),
		services.WithEntryRepository(s.mockEntryRepo),
	)
	s.ctx = context.Background()

	s.householdID = "household-1"
	s.userID = "user-1"
}

func (s *AccountServiceTestSuite) household() *domain.Household {
	return &domain.Household{
		HouseholdID:  s.householdID,
		Name:         "Home",
		CurrencyCode: "EUR",
	}
}

func (s *AccountServiceTestSuite) TestCreateAccount_ZeroOpeningBalance() {
	req := dto.CreateAccountRequest{
		Name:           "Checking",
		AccountType:    domain.Bank,
		OpeningBalance: decimal.Zero,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockHouseholdReader.On("FindHouseholdByID", s.ctx, s.householdID).Return(s.household(), nil)
	s.mockAccountRepo.On("SaveAccount", s.ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			account := args.Get(1).(domain.Account)
			s.Equal("EUR", account.CurrencyCode, "account inherits the household currency")
			s.True(account.Balance.IsZero())
			s.True(account.IsActive)
		}).Return(nil)

	account, err := s.service.CreateAccount(s.ctx, s.householdID, req, s.userID)

	s.NoError(err)
	s.NotEmpty(account.AccountID)
	s.mockEntryRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCreateAccount_OpeningBalancePostsSystemEntry() {
	req := dto.CreateAccountRequest{
		Name:           "Savings",
		AccountType:    domain.Bank,
		OpeningBalance: decimal.NewFromInt(2500),
	}
	counter := &domain.Account{
		AccountID:   "account-opening",
		HouseholdID: s.householdID,
		Name:        "Opening Balances",
		AccountType: domain.Virtual,
		IsActive:    true,
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockHouseholdReader.On("FindHouseholdByID", s.ctx, s.householdID).Return(s.household(), nil)
	s.mockAccountRepo.On("SaveAccount", s.ctx, mock.AnythingOfType("domain.Account")).Return(nil)
	s.mockAccountRepo.On("FindAccountByName", s.ctx, s.householdID, "Opening Balances").Return(counter, nil)
	s.mockEntryRepo.On("SaveEntry", s.ctx, mock.AnythingOfType("domain.Entry"), mock.AnythingOfType("[]domain.Line"), mock.Anything).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(domain.Entry)
			lines := args.Get(2).([]domain.Line)
			balanceChanges := args.Get(3).(map[string]decimal.Decimal)
			s.Equal(domain.EntryAdjustment, entry.EntryType)
			s.Equal(domain.SourceSystem, entry.Source)
			s.Len(lines, 2)
			s.True(balanceChanges[counter.AccountID].Equal(decimal.NewFromInt(-2500)))
		}).Return(nil)

	account, err := s.service.CreateAccount(s.ctx, s.householdID, req, s.userID)

	s.NoError(err)
	s.True(account.Balance.Equal(decimal.NewFromInt(2500)))
	s.mockEntryRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestCreateAccount_DuplicateName() {
	req := dto.CreateAccountRequest{Name: "Checking", AccountType: domain.Bank}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockHouseholdReader.On("FindHouseholdByID", s.ctx, s.householdID).Return(s.household(), nil)
	s.mockAccountRepo.On("SaveAccount", s.ctx, mock.Anything).Return(apperrors.ErrDuplicate)

	account, err := s.service.CreateAccount(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Nil(account)
}

func (s *AccountServiceTestSuite) TestGetAccountByID_WrongHousehold() {
	stored := &domain.Account{AccountID: "account-1", HouseholdID: "household-other"}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockAccountRepo.On("FindAccountByID", s.ctx, "account-1").Return(stored, nil)

	account, err := s.service.GetAccountByID(s.ctx, s.householdID, "account-1", s.userID)

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Nil(account)
}

func (s *AccountServiceTestSuite) TestGetAccountsByIDs_FiltersForeignAccounts() {
	accounts := map[string]domain.Account{
		"account-1": {AccountID: "account-1", HouseholdID: s.householdID},
		"account-2": {AccountID: "account-2", HouseholdID: "household-other"},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{"account-1", "account-2"}).Return(accounts, nil)

	result, err := s.service.GetAccountsByIDs(s.ctx, s.householdID, []string{"account-1", "account-2"}, s.userID)

	s.NoError(err)
	s.Len(result, 1)
	s.Contains(result, "account-1")
}

func (s *AccountServiceTestSuite) TestUpdateAccount_NoChanges() {
	stored := &domain.Account{AccountID: "account-1", HouseholdID: s.householdID, Name: "Checking", IsActive: true}
	sameName := "Checking"

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, mock.Anything).Return(nil)
	s.mockAccountRepo.On("FindAccountByID", s.ctx, "account-1").Return(stored, nil)

	account, err := s.service.UpdateAccount(s.ctx, s.householdID, "account-1", dto.UpdateAccountRequest{Name: &sameName}, s.userID)

	s.NoError(err)
	s.Equal("Checking", account.Name)
	s.mockAccountRepo.AssertNotCalled(s.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCalculateAccountBalance_ReturnsMaintainedBalance() {
	stored := &domain.Account{
		AccountID:   "account-1",
		HouseholdID: s.householdID,
		Balance:     decimal.RequireFromString("1234.56"),
	}

	s.mockAccountRepo.On("FindAccountByID", s.ctx, "account-1").Return(stored, nil)

	balance, err := s.service.CalculateAccountBalance(s.ctx, s.householdID, "account-1")

	s.NoError(err)
	s.True(balance.Equal(decimal.RequireFromString("1234.56")))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
