package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	User        UserSvcFacade
	Household   HouseholdSvcFacade
	Account     AccountSvcFacade
	Category    CategorySvcFacade
	Ledger      LedgerSvcFacade
	Closing     ClosingSvcFacade
	Transfer    TransferSvcFacade
	Loan        LoanSvcFacade
	Investment  InvestmentSvcFacade
	Budget      BudgetSvcFacade
	Reporting   ReportingSvcFacade
	Token       TokenSvcFacade
	GoogleOAuth GoogleOAuthHandlerSvcFacade
}
