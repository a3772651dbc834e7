package services

import (
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Household service first: it authorizes every other service.
	container.Household = NewHouseholdService(repos.HouseholdRepo)
	authorizer := container.Household.(portssvc.HouseholdAuthorizerSvc)
	householdReader := container.Household.(portssvc.HouseholdReaderSvc)

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithHouseholdReaderSvc(householdReader),
		WithHouseholdAuthorizer(authorizer),
		WithEntryRepository(repos.EntryRepo),
	)

	container.User = NewUserService(repos.UserRepo)
	container.Category = NewCategoryService(repos.CategoryRepo, authorizer)
	container.Ledger = NewLedgerService(repos.EntryRepo, repos.AccountRepo, repos.ClosingRepo, authorizer)
	container.Closing = NewClosingService(repos.ClosingRepo, repos.ReportingRepo, repos.TransferRepo, authorizer)
	container.Transfer = NewTransferService(repos.TransferRepo, repos.AccountRepo, repos.ClosingRepo, authorizer)
	container.Loan = NewLoanService(repos.LoanRepo, repos.AccountRepo, repos.ClosingRepo, authorizer)
	container.Investment = NewInvestmentService(repos.InvestmentRepo, repos.AccountRepo, repos.ClosingRepo, authorizer)
	container.Budget = NewBudgetService(repos.BudgetRepo, repos.CategoryRepo, authorizer)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.CategoryRepo, authorizer)

	container.Token = NewTokenService(cfg, container.User)
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)

	return container
}
