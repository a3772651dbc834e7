package pgsql

import (
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	categoryRepo := newPgxCategoryRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo)
	closingRepo := newPgxClosingRepository(dbPool)
	transferRepo := newPgxTransferRepository(dbPool, accountRepo)
	loanRepo := newPgxLoanRepository(dbPool, accountRepo)
	investmentRepo := newPgxInvestmentRepository(dbPool, accountRepo)
	budgetRepo := newPgxBudgetRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	householdRepo := newPgxHouseholdRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:    accountRepo,
		CategoryRepo:   categoryRepo,
		EntryRepo:      entryRepo,
		ClosingRepo:    closingRepo,
		TransferRepo:   transferRepo,
		LoanRepo:       loanRepo,
		InvestmentRepo: investmentRepo,
		BudgetRepo:     budgetRepo,
		ReportingRepo:  reportingRepo,
		UserRepo:       userRepo,
		HouseholdRepo:  householdRepo,
	}
}
