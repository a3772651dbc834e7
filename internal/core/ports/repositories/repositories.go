package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo    AccountRepositoryFacade
	CategoryRepo   CategoryRepositoryFacade
	EntryRepo      EntryRepositoryWithTx
	ClosingRepo    ClosingRepositoryFacade
	TransferRepo   TransferRepositoryFacade
	LoanRepo       LoanRepositoryFacade
	InvestmentRepo InvestmentRepositoryFacade
	BudgetRepo     BudgetRepositoryFacade
	ReportingRepo  ReportingRepositoryFacade
	UserRepo       UserRepositoryFacade
	HouseholdRepo  HouseholdRepositoryFacade
}
