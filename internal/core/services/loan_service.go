package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	portsrepo "github.com/hearthsoft/household_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hearthsoft/household_ledger_app/internal/core/ports/services"
	"github.com/hearthsoft/household_ledger_app/internal/dto"
	"github.com/hearthsoft/household_ledger_app/internal/utils/amortization"
	"github.com/shopspring/decimal"
)

// loanService implements the LoanSvcFacade interface
type loanService struct {
	BaseService
	loanRepo    portsrepo.LoanRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	closingRepo portsrepo.ClosingRepositoryFacade
}

// NewLoanService creates a new loan service.
func NewLoanService(loanRepo portsrepo.LoanRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, closingRepo portsrepo.ClosingRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.LoanSvcFacade {
	return &loanService{
		BaseService: BaseService{HouseholdAuthorizer: authorizer},
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		closingRepo: closingRepo,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// CreateLoan registers a loan, records the initial rate as the first rate
// history row and generates the full amortization schedule, all persisted in
// one transaction.
func (s *loanService) CreateLoan(ctx context.Context, householdID string, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	if !req.PrincipalOriginal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", apperrors.ErrValidation)
	}
	if req.AnnualRate.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate must not be negative", apperrors.ErrValidation)
	}
	if req.LinkedPaymentAccountID != nil {
		if err := s.validatePaymentAccount(ctx, householdID, *req.LinkedPaymentAccountID); err != nil {
			return nil, err
		}
	}

	periods, err := amortization.GenerateSchedule(amortization.ScheduleParams{
		StartBalance:  req.PrincipalOriginal,
		AnnualRate:    req.AnnualRate,
		TermMonths:    req.TermMonths,
		RepaymentType: req.RepaymentType,
		StartDate:     req.StartDate,
		PayDay:        req.InterestPayDay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	now := time.Now()
	loanID := uuid.NewString()

	loan := domain.Loan{
		LoanID:                 loanID,
		HouseholdID:            householdID,
		Name:                   req.Name,
		PrincipalOriginal:      req.PrincipalOriginal,
		StartDate:              req.StartDate,
		MaturityDate:           req.StartDate.AddDate(0, req.TermMonths, 0),
		TermMonths:             req.TermMonths,
		RepaymentType:          req.RepaymentType,
		InterestPayDay:         req.InterestPayDay,
		LinkedPaymentAccountID: req.LinkedPaymentAccountID,
		IsActive:               true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	rate := domain.LoanRate{
		RateID:        uuid.NewString(),
		LoanID:        loanID,
		EffectiveDate: req.StartDate,
		AnnualRate:    req.AnnualRate,
	}
	schedule := toScheduleEntries(loanID, periods)

	if err := s.loanRepo.CreateLoanWithSchedule(ctx, loan, rate, schedule); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to create loan", slog.String("name", req.Name))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Loan created successfully",
		slog.String("loan_id", loanID),
		slog.Int("term_months", req.TermMonths))
	return &loan, nil
}

func (s *loanService) GetLoanByID(ctx context.Context, householdID string, loanID string, requestingUserID string) (*domain.Loan, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.findHouseholdLoan(ctx, householdID, loanID)
}

func (s *loanService) ListLoans(ctx context.Context, householdID string, requestingUserID string, includeInactive bool) ([]domain.Loan, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	loans, err := s.loanRepo.ListLoansByHousehold(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list loans", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	if includeInactive {
		return loans, nil
	}
	active := make([]domain.Loan, 0, len(loans))
	for _, l := range loans {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active, nil
}

func (s *loanService) GetSchedule(ctx context.Context, householdID string, loanID string, requestingUserID string) ([]domain.LoanScheduleEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.findHouseholdLoan(ctx, householdID, loanID); err != nil {
		return nil, err
	}

	schedule, err := s.loanRepo.ListSchedule(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list loan schedule", slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to list loan schedule: %w", err)
	}
	return schedule, nil
}

func (s *loanService) GetRateHistory(ctx context.Context, householdID string, loanID string, requestingUserID string) ([]domain.LoanRate, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.findHouseholdLoan(ctx, householdID, loanID); err != nil {
		return nil, err
	}

	rates, err := s.loanRepo.ListRates(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list loan rates", slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to list loan rates: %w", err)
	}
	return rates, nil
}

// AddRate appends a rate history row and regenerates the unlocked schedule
// periods starting at the effective date. Locked periods keep their posted
// figures; the regenerated portion amortizes the balance they left behind.
func (s *loanService) AddRate(ctx context.Context, householdID string, loanID string, req dto.AddLoanRateRequest, requestingUserID string) ([]domain.LoanScheduleEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}
	loan, err := s.findHouseholdLoan(ctx, householdID, loanID)
	if err != nil {
		return nil, err
	}
	if req.AnnualRate.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate must not be negative", apperrors.ErrValidation)
	}

	schedule, err := s.loanRepo.ListSchedule(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list loan schedule for rate change", slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to list loan schedule: %w", err)
	}

	firstIdx := -1
	for i, entry := range schedule {
		if !entry.Locked && !entry.PeriodStart.Before(req.EffectiveDate) {
			firstIdx = i
			break
		}
	}
	if firstIdx == -1 {
		return nil, fmt.Errorf("%w: no unlocked periods on or after the effective date", apperrors.ErrValidation)
	}
	for i := 0; i < firstIdx; i++ {
		if !schedule[i].Locked {
			return nil, fmt.Errorf("%w: unlocked periods exist before the effective date", apperrors.ErrValidation)
		}
	}

	startBalance := loan.PrincipalOriginal
	if firstIdx > 0 {
		startBalance = schedule[firstIdx-1].BalanceAfter
	}
	remaining := len(schedule) - firstIdx
	if startBalance.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: loan is already fully repaid", apperrors.ErrValidation)
	}

	periods, err := amortization.GenerateSchedule(amortization.ScheduleParams{
		StartBalance:  startBalance,
		AnnualRate:    req.AnnualRate,
		TermMonths:    remaining,
		RepaymentType: loan.RepaymentType,
		StartDate:     schedule[firstIdx].PeriodStart,
		PayDay:        loan.InterestPayDay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	rate := domain.LoanRate{
		RateID:        uuid.NewString(),
		LoanID:        loanID,
		EffectiveDate: req.EffectiveDate,
		AnnualRate:    req.AnnualRate,
	}
	regenerated := toScheduleEntries(loanID, periods)

	if err := s.loanRepo.AddRateAndReplaceSchedule(ctx, rate, req.EffectiveDate, regenerated); err != nil {
		s.LogError(ctx, err, "Failed to apply rate change", slog.String("loan_id", loanID))
		return nil, err
	}

	s.LogInfo(ctx, "Loan rate changed",
		slog.String("loan_id", loanID),
		slog.Int("regenerated_periods", len(regenerated)))
	return s.loanRepo.ListSchedule(ctx, loanID)
}

// PostPayment posts one scheduled period's payment as an EXPENSE entry and
// locks the period. Periods are strictly ordered: a period can only be posted
// once every earlier one is locked, and the repository rejects double posting.
func (s *loanService) PostPayment(ctx context.Context, householdID string, loanID string, req dto.PostLoanPaymentRequest, requestingUserID string) (*domain.Entry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}
	loan, err := s.findHouseholdLoan(ctx, householdID, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive {
		return nil, fmt.Errorf("%w: loan %s is inactive", apperrors.ErrValidation, loanID)
	}

	target, err := s.loanRepo.FindScheduleEntryByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if target.LoanID != loanID {
		return nil, apperrors.ErrNotFound
	}
	if target.Locked {
		return nil, fmt.Errorf("%w: schedule entry %s is already posted", apperrors.ErrConflict, req.ScheduleID)
	}

	schedule, err := s.loanRepo.ListSchedule(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan schedule: %w", err)
	}
	for _, entry := range schedule {
		if entry.PeriodStart.Before(target.PeriodStart) && !entry.Locked {
			return nil, fmt.Errorf("%w: earlier periods must be posted first", apperrors.ErrValidation)
		}
	}

	paymentAccountID := loan.LinkedPaymentAccountID
	if req.PaymentAccountID != nil {
		paymentAccountID = req.PaymentAccountID
	}
	if paymentAccountID == nil {
		return nil, fmt.Errorf("%w: no payment account given and the loan has none linked", apperrors.ErrValidation)
	}
	if err := s.validatePaymentAccount(ctx, householdID, *paymentAccountID); err != nil {
		return nil, err
	}
	paymentAccount, err := s.accountRepo.FindAccountByID(ctx, *paymentAccountID)
	if err != nil {
		return nil, err
	}

	closed, err := s.closingRepo.HasClosingForDate(ctx, householdID, target.PostingDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to check month closing for loan payment")
		return nil, fmt.Errorf("failed to check month closing: %w", err)
	}
	if closed {
		return nil, fmt.Errorf("%w: the month of %s is closed", apperrors.ErrConflict, target.PostingDate.Format("2006-01"))
	}

	counter, err := findOrCreateSystemAccount(ctx, s.accountRepo, householdID, paymentAccount.CurrencyCode, loanCounterAccountName(loan.Name), domain.External, requestingUserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve loan counter account", slog.String("loan_id", loanID))
		return nil, err
	}

	total := target.InterestAmount.Add(target.PrincipalAmount).Add(target.FeeAmount)
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: schedule entry %s has no amount due", apperrors.ErrValidation, req.ScheduleID)
	}

	now := time.Now()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     requestingUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: requestingUserID,
	}

	entry := domain.Entry{
		EntryID:     entryID,
		HouseholdID: householdID,
		OccurredAt:  target.PostingDate,
		EntryType:   domain.EntryExpense,
		Memo:        fmt.Sprintf("Loan payment: %s (%s)", loan.Name, target.PeriodStart.Format("2006-01")),
		Source:      domain.SourceLoan,
		AuditFields: audit,
	}
	lines := []domain.Line{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: *paymentAccountID, Amount: total.Neg(), AuditFields: audit},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: counter.AccountID, Amount: total, AuditFields: audit},
	}
	balanceChanges := map[string]decimal.Decimal{
		*paymentAccountID: total.Neg(),
		counter.AccountID: total,
	}

	if err := s.loanRepo.PostLoanPayment(ctx, req.ScheduleID, entry, lines, balanceChanges, requestingUserID, now); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to post loan payment",
				slog.String("loan_id", loanID),
				slog.String("schedule_id", req.ScheduleID))
		}
		return nil, err
	}

	entry.Lines = lines
	s.LogInfo(ctx, "Loan payment posted",
		slog.String("loan_id", loanID),
		slog.String("schedule_id", req.ScheduleID),
		slog.String("entry_id", entryID))
	return &entry, nil
}

// SimulatePrepayment projects the effect of an extra principal payment while
// keeping the remaining term. Nothing is written.
func (s *loanService) SimulatePrepayment(ctx context.Context, householdID string, loanID string, req dto.SimulatePrepaymentRequest, requestingUserID string) (*domain.PrepaymentProjection, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	loan, err := s.findHouseholdLoan(ctx, householdID, loanID)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: prepayment amount must be positive", apperrors.ErrValidation)
	}

	schedule, err := s.loanRepo.ListSchedule(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan schedule: %w", err)
	}

	currentBalance := loan.PrincipalOriginal
	remainingMonths := 0
	var firstUnlocked *domain.LoanScheduleEntry
	for i := range schedule {
		if schedule[i].Locked {
			currentBalance = schedule[i].BalanceAfter
		} else {
			if firstUnlocked == nil {
				firstUnlocked = &schedule[i]
			}
			remainingMonths++
		}
	}
	if remainingMonths == 0 || firstUnlocked == nil {
		return nil, fmt.Errorf("%w: loan is already fully repaid", apperrors.ErrValidation)
	}
	if req.Amount.GreaterThanOrEqual(currentBalance) {
		return nil, fmt.Errorf("%w: prepayment must be less than the outstanding balance of %s", apperrors.ErrValidation, currentBalance)
	}

	rates, err := s.loanRepo.ListRates(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan rates: %w", err)
	}
	annualRate := rateEffectiveOn(rates, firstUnlocked.PeriodStart)

	oldPeriods, err := amortization.GenerateSchedule(amortization.ScheduleParams{
		StartBalance:  currentBalance,
		AnnualRate:    annualRate,
		TermMonths:    remainingMonths,
		RepaymentType: loan.RepaymentType,
		StartDate:     firstUnlocked.PeriodStart,
		PayDay:        loan.InterestPayDay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	newBalance := currentBalance.Sub(req.Amount)
	newPeriods, err := amortization.GenerateSchedule(amortization.ScheduleParams{
		StartBalance:  newBalance,
		AnnualRate:    annualRate,
		TermMonths:    remainingMonths,
		RepaymentType: loan.RepaymentType,
		StartDate:     firstUnlocked.PeriodStart,
		PayDay:        loan.InterestPayDay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	oldPayment := oldPeriods[0].InterestAmount.Add(oldPeriods[0].PrincipalAmount)
	newPayment := newPeriods[0].InterestAmount.Add(newPeriods[0].PrincipalAmount)

	// Savings estimate: the payment delta over the remaining term minus the
	// capital spent on the prepayment, floored at zero.
	interestSaved := oldPayment.Sub(newPayment).
		Mul(decimal.NewFromInt(int64(remainingMonths))).
		Sub(req.Amount)
	if interestSaved.IsNegative() {
		interestSaved = decimal.Zero
	}

	return &domain.PrepaymentProjection{
		CurrentBalance:  currentBalance,
		NewBalance:      newBalance,
		RemainingMonths: remainingMonths,
		OldPayment:      oldPayment,
		NewPayment:      newPayment,
		PaymentDelta:    oldPayment.Sub(newPayment),
		InterestSaved:   interestSaved,
	}, nil
}

// DeactivateLoan marks a loan inactive. Its schedule and history remain readable.
func (s *loanService) DeactivateLoan(ctx context.Context, householdID string, loanID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return err
	}
	if _, err := s.findHouseholdLoan(ctx, householdID, loanID); err != nil {
		return err
	}

	now := time.Now()
	if err := s.loanRepo.DeactivateLoan(ctx, loanID, requestingUserID, now); err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate loan", slog.String("loan_id", loanID))
		}
		return err
	}

	s.LogInfo(ctx, "Loan deactivated successfully", slog.String("loan_id", loanID))
	return nil
}

func (s *loanService) findHouseholdLoan(ctx context.Context, householdID string, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find loan", slog.String("loan_id", loanID))
		}
		return nil, err
	}
	if loan.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}
	return loan, nil
}

func (s *loanService) validatePaymentAccount(ctx context.Context, householdID string, accountID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: payment account %s not found", apperrors.ErrValidation, accountID)
		}
		return err
	}
	if account.HouseholdID != householdID {
		return fmt.Errorf("%w: payment account %s not found in household", apperrors.ErrValidation, accountID)
	}
	if !account.IsActive {
		return fmt.Errorf("%w: payment account %s is inactive", apperrors.ErrValidation, accountID)
	}
	return nil
}

// toScheduleEntries converts computed periods into persistable schedule rows.
func toScheduleEntries(loanID string, periods []amortization.Period) []domain.LoanScheduleEntry {
	entries := make([]domain.LoanScheduleEntry, len(periods))
	for i, p := range periods {
		entries[i] = domain.LoanScheduleEntry{
			ScheduleID:      uuid.NewString(),
			LoanID:          loanID,
			PeriodStart:     p.PeriodStart,
			PeriodEnd:       p.PeriodEnd,
			PostingDate:     p.PostingDate,
			InterestAmount:  p.InterestAmount,
			PrincipalAmount: p.PrincipalAmount,
			FeeAmount:       decimal.Zero,
			BalanceAfter:    p.BalanceAfter,
		}
	}
	return entries
}

// rateEffectiveOn picks the latest rate with EffectiveDate on or before the
// given date; rates are ordered by effective date ascending.
func rateEffectiveOn(rates []domain.LoanRate, date time.Time) decimal.Decimal {
	annualRate := decimal.Zero
	for _, r := range rates {
		if !r.EffectiveDate.After(date) {
			annualRate = r.AnnualRate
		}
	}
	return annualRate
}
