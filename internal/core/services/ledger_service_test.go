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

type LedgerServiceTestSuite struct {
	suite.Suite
	mockEntryRepo   *MockEntryRepository
	mockAccountRepo *MockAccountRepository
	mockClosingRepo *MockClosingRepository
	mockAuthorizer  *MockHouseholdAuthorizer
	service         portssvc.LedgerSvcFacade
	ctx             context.Context

	householdID string
	userID      string
	accountA    string
	accountB    string
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockEntryRepo = new(MockEntryRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockClosingRepo = new(MockClosingRepository)
	s.mockAuthorizer = new(MockHouseholdAuthorizer)
	s.service = services.NewLedgerService(s.mockEntryRepo, s.mockAccountRepo, s.mockClosingRepo, s.mockAuthorizer)
	s.ctx = context.Background()

	s.householdID = "household-1"
	s.userID = "user-1"
	s.accountA = "account-a"
	s.accountB = "account-b"
}

func (s *LedgerServiceTestSuite) activeAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		s.accountA: {AccountID: s.accountA, HouseholdID: s.householdID, IsActive: true},
		s.accountB: {AccountID: s.accountB, HouseholdID: s.householdID, IsActive: true},
	}
}

func (s *LedgerServiceTestSuite) balancedRequest(entryType domain.EntryType) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		OccurredAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		EntryType:  entryType,
		Memo:       "groceries",
		Lines: []dto.CreateLineRequest{
			{AccountID: s.accountA, Amount: decimal.NewFromInt(-120)},
			{AccountID: s.accountB, Amount: decimal.NewFromInt(120)},
		},
	}
}

func (s *LedgerServiceTestSuite) TestCreateEntry_Success() {
	req := s.balancedRequest(domain.EntryExpense)

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{s.accountA, s.accountB}).Return(s.activeAccounts(), nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, req.OccurredAt).Return(false, nil)
	s.mockEntryRepo.On("SaveEntry", s.ctx, mock.AnythingOfType("domain.Entry"), mock.AnythingOfType("[]domain.Line"), mock.Anything).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(domain.Entry)
			lines := args.Get(2).([]domain.Line)
			balanceChanges := args.Get(3).(map[string]decimal.Decimal)
			s.Equal(s.householdID, entry.HouseholdID)
			s.Equal(domain.SourceManual, entry.Source)
			s.Len(lines, 2)
			s.True(balanceChanges[s.accountA].Equal(decimal.NewFromInt(-120)))
			s.True(balanceChanges[s.accountB].Equal(decimal.NewFromInt(120)))
		}).Return(nil)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	s.NoError(err)
	s.NotNil(entry)
	s.NotEmpty(entry.EntryID)
	s.Len(entry.Lines, 2)
	s.mockEntryRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestCreateEntry_AuthorizationFailure() {
	req := s.balancedRequest(domain.EntryExpense)
	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(apperrors.ErrForbidden)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Nil(entry)
	s.mockEntryRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateEntry_UnbalancedLines() {
	req := s.balancedRequest(domain.EntryExpense)
	req.Lines[0].Amount = decimal.NewFromInt(-30000)
	req.Lines[1].Amount = decimal.NewFromInt(29999)

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	// An off-by-one must come back as a validation error, not an internal one.
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(entry)
	s.mockAccountRepo.AssertNotCalled(s.T(), "FindAccountsByIDs", mock.Anything, mock.Anything)
	s.mockEntryRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateEntry_AccountFromOtherHousehold() {
	req := s.balancedRequest(domain.EntryExpense)
	accounts := s.activeAccounts()
	foreign := accounts[s.accountB]
	foreign.HouseholdID = "household-other"
	accounts[s.accountB] = foreign

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{s.accountA, s.accountB}).Return(accounts, nil)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(entry)
	s.mockEntryRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateEntry_InactiveAccount() {
	req := s.balancedRequest(domain.EntryExpense)
	accounts := s.activeAccounts()
	inactive := accounts[s.accountA]
	inactive.IsActive = false
	accounts[s.accountA] = inactive

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{s.accountA, s.accountB}).Return(accounts, nil)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(entry)
}

func (s *LedgerServiceTestSuite) TestCreateEntry_ClosedMonth() {
	req := s.balancedRequest(domain.EntryExpense)

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{s.accountA, s.accountB}).Return(s.activeAccounts(), nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, req.OccurredAt).Return(true, nil)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(entry)
	s.mockEntryRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateEntry_AdjustmentBypassesClosedMonth() {
	req := s.balancedRequest(domain.EntryAdjustment)

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{s.accountA, s.accountB}).Return(s.activeAccounts(), nil)
	s.mockEntryRepo.On("SaveEntry", s.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	s.NoError(err)
	s.NotNil(entry)
	s.mockClosingRepo.AssertNotCalled(s.T(), "HasClosingForDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateEntry_PreservesExplicitSource() {
	req := s.balancedRequest(domain.EntryExpense)
	req.Source = domain.SourceImport

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, []string{s.accountA, s.accountB}).Return(s.activeAccounts(), nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, req.OccurredAt).Return(false, nil)
	s.mockEntryRepo.On("SaveEntry", s.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	entry, err := s.service.CreateEntry(s.ctx, s.householdID, req, s.userID)

	s.NoError(err)
	s.Equal(domain.SourceImport, entry.Source)
}

func (s *LedgerServiceTestSuite) TestGetEntryByID_Success() {
	entryID := "entry-1"
	stored := &domain.Entry{EntryID: entryID, HouseholdID: s.householdID, EntryType: domain.EntryExpense}
	lines := []domain.Line{{LineID: "line-1", EntryID: entryID, AccountID: s.accountA, Amount: decimal.NewFromInt(-50)}}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockEntryRepo.On("FindEntryByID", s.ctx, entryID).Return(stored, nil)
	s.mockEntryRepo.On("FindLinesByEntryID", s.ctx, entryID).Return(lines, nil)

	entry, err := s.service.GetEntryByID(s.ctx, s.householdID, entryID, s.userID)

	s.NoError(err)
	s.Equal(entryID, entry.EntryID)
	s.Len(entry.Lines, 1)
}

func (s *LedgerServiceTestSuite) TestGetEntryByID_WrongHousehold() {
	entryID := "entry-1"
	stored := &domain.Entry{EntryID: entryID, HouseholdID: "household-other"}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)
	s.mockEntryRepo.On("FindEntryByID", s.ctx, entryID).Return(stored, nil)

	entry, err := s.service.GetEntryByID(s.ctx, s.householdID, entryID, s.userID)

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Nil(entry)
}

func (s *LedgerServiceTestSuite) TestUpdateEntry_LockedEntry() {
	entryID := "entry-1"
	stored := &domain.Entry{EntryID: entryID, HouseholdID: s.householdID, IsLocked: true}
	newMemo := "corrected memo"

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockEntryRepo.On("FindEntryByID", s.ctx, entryID).Return(stored, nil)

	entry, err := s.service.UpdateEntry(s.ctx, s.householdID, entryID, dto.UpdateEntryRequest{Memo: &newMemo}, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(entry)
	s.mockEntryRepo.AssertNotCalled(s.T(), "UpdateEntryHeader", mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestUpdateEntry_MoveIntoClosedMonth() {
	entryID := "entry-1"
	stored := &domain.Entry{
		EntryID:     entryID,
		HouseholdID: s.householdID,
		EntryType:   domain.EntryExpense,
		OccurredAt:  time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	closedDate := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockEntryRepo.On("FindEntryByID", s.ctx, entryID).Return(stored, nil)
	s.mockClosingRepo.On("HasClosingForDate", s.ctx, s.householdID, closedDate).Return(true, nil)

	entry, err := s.service.UpdateEntry(s.ctx, s.householdID, entryID, dto.UpdateEntryRequest{OccurredAt: &closedDate}, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Nil(entry)
	s.mockEntryRepo.AssertNotCalled(s.T(), "UpdateEntryHeader", mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestUpdateEntry_MemoOnly() {
	entryID := "entry-1"
	stored := &domain.Entry{EntryID: entryID, HouseholdID: s.householdID, Memo: "old"}
	newMemo := "new"

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockEntryRepo.On("FindEntryByID", s.ctx, entryID).Return(stored, nil)
	s.mockEntryRepo.On("UpdateEntryHeader", s.ctx, mock.AnythingOfType("domain.Entry")).
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(domain.Entry)
			s.Equal("new", updated.Memo)
			s.Equal(s.userID, updated.LastUpdatedBy)
		}).Return(nil)

	entry, err := s.service.UpdateEntry(s.ctx, s.householdID, entryID, dto.UpdateEntryRequest{Memo: &newMemo}, s.userID)

	s.NoError(err)
	s.Equal("new", entry.Memo)
	s.mockClosingRepo.AssertNotCalled(s.T(), "HasClosingForDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestDeleteEntry_ReversesBalances() {
	entryID := "entry-1"
	stored := &domain.Entry{EntryID: entryID, HouseholdID: s.householdID}
	lines := []domain.Line{
		{LineID: "line-1", EntryID: entryID, AccountID: s.accountA, Amount: decimal.NewFromInt(-75)},
		{LineID: "line-2", EntryID: entryID, AccountID: s.accountB, Amount: decimal.NewFromInt(75)},
	}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockEntryRepo.On("FindEntryByID", s.ctx, entryID).Return(stored, nil)
	s.mockEntryRepo.On("FindLinesByEntryID", s.ctx, entryID).Return(lines, nil)
	s.mockEntryRepo.On("DeleteEntry", s.ctx, entryID, mock.Anything, s.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			balanceChanges := args.Get(2).(map[string]decimal.Decimal)
			s.True(balanceChanges[s.accountA].Equal(decimal.NewFromInt(75)), "deletion must reverse the original delta")
			s.True(balanceChanges[s.accountB].Equal(decimal.NewFromInt(-75)))
		}).Return(nil)

	err := s.service.DeleteEntry(s.ctx, s.householdID, entryID, s.userID)

	s.NoError(err)
	s.mockEntryRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestDeleteEntry_LockedEntry() {
	entryID := "entry-1"
	stored := &domain.Entry{EntryID: entryID, HouseholdID: s.householdID, IsLocked: true}

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleMember).Return(nil)
	s.mockEntryRepo.On("FindEntryByID", s.ctx, entryID).Return(stored, nil)

	err := s.service.DeleteEntry(s.ctx, s.householdID, entryID, s.userID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockEntryRepo.AssertNotCalled(s.T(), "DeleteEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestListEntries_InvalidYearMonth() {
	badMonth := "June 2025"

	s.mockAuthorizer.On("AuthorizeUserAction", s.ctx, s.userID, s.householdID, domain.RoleReadOnly).Return(nil)

	resp, err := s.service.ListEntries(s.ctx, s.householdID, s.userID, dto.ListEntriesParams{YearMonth: &badMonth})

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(resp)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
