package services_test

import (
	"context"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock HouseholdAuthorizer ---

type MockHouseholdAuthorizer struct {
	mock.Mock
}

var _ portssvc.HouseholdAuthorizerSvc = (*MockHouseholdAuthorizer)(nil)

func (m *MockHouseholdAuthorizer) AuthorizeUserAction(ctx context.Context, userID, householdID string, requiredRole domain.UserHouseholdRole) error {
	args := m.Called(ctx, userID, householdID, requiredRole)
	return args.Error(0)
}

// --- Mock HouseholdReader ---

type MockHouseholdReader struct {
	mock.Mock
}

var _ portssvc.HouseholdReaderSvc = (*MockHouseholdReader)(nil)

func (m *MockHouseholdReader) FindHouseholdByID(ctx context.Context, householdID string) (*domain.Household, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Household), args.Error(1)
}

func (m *MockHouseholdReader) ListUserHouseholds(ctx context.Context, userID string) ([]domain.Household, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Household), args.Error(1)
}

func (m *MockHouseholdReader) ListHouseholdMembers(ctx context.Context, householdID string, requestingUserID string) ([]domain.UserHousehold, error) {
	args := m.Called(ctx, householdID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserHousehold), args.Error(1)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByName(ctx context.Context, householdID string, name string) (*domain.Account, error) {
	args := m.Called(ctx, householdID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, householdID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, householdID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock EntryRepository ---

type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryWithTx = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.Line, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Line), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.Line, error) {
	args := m.Called(ctx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.Line), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByHousehold(ctx context.Context, householdID string, filter portsrepo.ListEntriesFilter, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	args := m.Called(ctx, householdID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.Entry), returnedToken, args.Error(2)
}

func (m *MockEntryRepository) ListLinesByAccountID(ctx context.Context, householdID, accountID string, limit int, nextToken *string) ([]domain.Line, *string, error) {
	args := m.Called(ctx, householdID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.Line), returnedToken, args.Error(2)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, entry, lines, balanceChanges)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateEntryHeader(ctx context.Context, entry domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) DeleteEntry(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockEntryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockEntryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEntryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ClosingRepository ---

type MockClosingRepository struct {
	mock.Mock
}

var _ portsrepo.ClosingRepositoryFacade = (*MockClosingRepository)(nil)

func (m *MockClosingRepository) CloseMonth(ctx context.Context, closing domain.MonthClosing, monthStart, monthEnd time.Time) (*domain.MonthClosing, error) {
	args := m.Called(ctx, closing, monthStart, monthEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthClosing), args.Error(1)
}

func (m *MockClosingRepository) FindClosingByMonth(ctx context.Context, householdID string, yearMonth string) (*domain.MonthClosing, error) {
	args := m.Called(ctx, householdID, yearMonth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthClosing), args.Error(1)
}

func (m *MockClosingRepository) ListClosings(ctx context.Context, householdID string) ([]domain.MonthClosing, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthClosing), args.Error(1)
}

func (m *MockClosingRepository) HasClosingForDate(ctx context.Context, householdID string, date time.Time) (bool, error) {
	args := m.Called(ctx, householdID, date)
	return args.Bool(0), args.Error(1)
}

// --- Mock TransferRepository ---

type MockTransferRepository struct {
	mock.Mock
}

var _ portsrepo.TransferRepositoryFacade = (*MockTransferRepository)(nil)

func (m *MockTransferRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.TransferRule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferRule), args.Error(1)
}

func (m *MockTransferRepository) ListRulesByHousehold(ctx context.Context, householdID string) ([]domain.TransferRule, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransferRule), args.Error(1)
}

func (m *MockTransferRepository) ListActiveRules(ctx context.Context) ([]domain.TransferRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransferRule), args.Error(1)
}

func (m *MockTransferRepository) SaveRule(ctx context.Context, rule domain.TransferRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockTransferRepository) UpdateRule(ctx context.Context, rule domain.TransferRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockTransferRepository) DeactivateRule(ctx context.Context, ruleID string, userID string, now time.Time) error {
	args := m.Called(ctx, ruleID, userID, now)
	return args.Error(0)
}

func (m *MockTransferRepository) FindInstanceByID(ctx context.Context, instanceID string) (*domain.TransferInstance, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferInstance), args.Error(1)
}

func (m *MockTransferRepository) ListInstancesByHousehold(ctx context.Context, householdID string, status *domain.TransferInstanceStatus) ([]domain.TransferInstance, error) {
	args := m.Called(ctx, householdID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransferInstance), args.Error(1)
}

func (m *MockTransferRepository) FindLatestDueDate(ctx context.Context, ruleID string) (*time.Time, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockTransferRepository) SaveInstance(ctx context.Context, instance domain.TransferInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockTransferRepository) ConfirmInstance(ctx context.Context, instance domain.TransferInstance, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, instance, entry, lines, balanceChanges)
	return args.Error(0)
}

func (m *MockTransferRepository) SkipInstance(ctx context.Context, instanceID string, userID string, now time.Time) error {
	args := m.Called(ctx, instanceID, userID, now)
	return args.Error(0)
}

func (m *MockTransferRepository) MarkMissedBefore(ctx context.Context, cutoff time.Time, now time.Time) (int, error) {
	args := m.Called(ctx, cutoff, now)
	return args.Int(0), args.Error(1)
}

// --- Mock LoanRepository ---

type MockLoanRepository struct {
	mock.Mock
}

var _ portsrepo.LoanRepositoryFacade = (*MockLoanRepository)(nil)

func (m *MockLoanRepository) CreateLoanWithSchedule(ctx context.Context, loan domain.Loan, rate domain.LoanRate, schedule []domain.LoanScheduleEntry) error {
	args := m.Called(ctx, loan, rate, schedule)
	return args.Error(0)
}

func (m *MockLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListLoansByHousehold(ctx context.Context, householdID string) ([]domain.Loan, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListRates(ctx context.Context, loanID string) ([]domain.LoanRate, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanRate), args.Error(1)
}

func (m *MockLoanRepository) ListSchedule(ctx context.Context, loanID string) ([]domain.LoanScheduleEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanScheduleEntry), args.Error(1)
}

func (m *MockLoanRepository) FindScheduleEntryByID(ctx context.Context, scheduleID string) (*domain.LoanScheduleEntry, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanScheduleEntry), args.Error(1)
}

func (m *MockLoanRepository) AddRateAndReplaceSchedule(ctx context.Context, rate domain.LoanRate, fromDate time.Time, regenerated []domain.LoanScheduleEntry) error {
	args := m.Called(ctx, rate, fromDate, regenerated)
	return args.Error(0)
}

func (m *MockLoanRepository) PostLoanPayment(ctx context.Context, scheduleID string, entry domain.Entry, lines []domain.Line, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, scheduleID, entry, lines, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockLoanRepository) DeactivateLoan(ctx context.Context, loanID string, userID string, now time.Time) error {
	args := m.Called(ctx, loanID, userID, now)
	return args.Error(0)
}

// --- Mock InvestmentRepository ---

type MockInvestmentRepository struct {
	mock.Mock
}

var _ portsrepo.InvestmentRepositoryFacade = (*MockInvestmentRepository)(nil)

func (m *MockInvestmentRepository) RecordTrade(ctx context.Context, req portsrepo.TradeRequest) (*domain.Trade, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trade), args.Error(1)
}

func (m *MockInvestmentRepository) SaveSecurity(ctx context.Context, security domain.Security) error {
	args := m.Called(ctx, security)
	return args.Error(0)
}

func (m *MockInvestmentRepository) FindSecurityByID(ctx context.Context, securityID string) (*domain.Security, error) {
	args := m.Called(ctx, securityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Security), args.Error(1)
}

func (m *MockInvestmentRepository) FindSecurityByTicker(ctx context.Context, householdID string, ticker string) (*domain.Security, error) {
	args := m.Called(ctx, householdID, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Security), args.Error(1)
}

func (m *MockInvestmentRepository) ListSecurities(ctx context.Context, householdID string) ([]domain.Security, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Security), args.Error(1)
}

func (m *MockInvestmentRepository) ListHoldings(ctx context.Context, householdID string) ([]domain.Holding, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Holding), args.Error(1)
}

func (m *MockInvestmentRepository) FindHolding(ctx context.Context, securityID string, accountID string) (*domain.Holding, error) {
	args := m.Called(ctx, securityID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holding), args.Error(1)
}

func (m *MockInvestmentRepository) ListTrades(ctx context.Context, householdID string, limit int, nextToken *string) ([]domain.Trade, *string, error) {
	args := m.Called(ctx, householdID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.Trade), returnedToken, args.Error(2)
}

func (m *MockInvestmentRepository) UpdatePrices(ctx context.Context, updates []portsrepo.PriceUpdate, now time.Time) error {
	args := m.Called(ctx, updates, now)
	return args.Error(0)
}

func (m *MockInvestmentRepository) UpsertSnapshots(ctx context.Context, snapshots []domain.HoldingSnapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

func (m *MockInvestmentRepository) ListSnapshots(ctx context.Context, householdID string, snapshotDate time.Time) ([]domain.HoldingSnapshot, error) {
	args := m.Called(ctx, householdID, snapshotDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HoldingSnapshot), args.Error(1)
}

// --- Mock BudgetRepository ---

type MockBudgetRepository struct {
	mock.Mock
}

var _ portsrepo.BudgetRepositoryFacade = (*MockBudgetRepository)(nil)

func (m *MockBudgetRepository) SaveTemplate(ctx context.Context, template domain.BudgetTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindTemplateByID(ctx context.Context, budgetID string) (*domain.BudgetTemplate, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetTemplate), args.Error(1)
}

func (m *MockBudgetRepository) ListTemplates(ctx context.Context, householdID string) ([]domain.BudgetTemplate, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetTemplate), args.Error(1)
}

func (m *MockBudgetRepository) UpdateTemplate(ctx context.Context, template domain.BudgetTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockBudgetRepository) DeactivateTemplate(ctx context.Context, budgetID string, userID string, now time.Time) error {
	args := m.Called(ctx, budgetID, userID, now)
	return args.Error(0)
}

func (m *MockBudgetRepository) SumExpenseByCategory(ctx context.Context, householdID string, monthStart, monthEnd time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, householdID, monthStart, monthEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// --- Mock CategoryRepository ---

type MockCategoryRepository struct {
	mock.Mock
}

var _ portsrepo.CategoryRepositoryFacade = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) SaveCategories(ctx context.Context, categories []domain.Category) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, householdID string) ([]domain.Category, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeactivateCategory(ctx context.Context, categoryID string, userID string, now time.Time) error {
	args := m.Called(ctx, categoryID, userID, now)
	return args.Error(0)
}

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepositoryFacade = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) MonthlySummary(ctx context.Context, householdID string, monthStart, monthEnd time.Time) (*domain.MonthlySummary, error) {
	args := m.Called(ctx, householdID, monthStart, monthEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlySummary), args.Error(1)
}

func (m *MockReportingRepository) CategoryBreakdown(ctx context.Context, householdID string, monthStart, monthEnd time.Time) ([]domain.CategoryTotal, error) {
	args := m.Called(ctx, householdID, monthStart, monthEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryTotal), args.Error(1)
}
