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
	"github.com/hearthsoft/household_ledger_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// snapshotAvgScale matches the precision holdings carry their average price at.
const snapshotAvgScale = accounting.AvgPriceScale

// investmentService implements the InvestmentSvcFacade interface
type investmentService struct {
	BaseService
	investmentRepo portsrepo.InvestmentRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	closingRepo    portsrepo.ClosingRepositoryFacade
}

// NewInvestmentService creates a new investment service.
func NewInvestmentService(investmentRepo portsrepo.InvestmentRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, closingRepo portsrepo.ClosingRepositoryFacade, authorizer portssvc.HouseholdAuthorizerSvc) portssvc.InvestmentSvcFacade {
	return &investmentService{
		BaseService:    BaseService{HouseholdAuthorizer: authorizer},
		investmentRepo: investmentRepo,
		accountRepo:    accountRepo,
		closingRepo:    closingRepo,
	}
}

var _ portssvc.InvestmentSvcFacade = (*investmentService)(nil)

// CreateSecurity registers a tradable instrument for the household.
func (s *investmentService) CreateSecurity(ctx context.Context, householdID string, req dto.CreateSecurityRequest, creatorUserID string) (*domain.Security, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	now := time.Now()
	security := domain.Security{
		SecurityID:  uuid.NewString(),
		HouseholdID: householdID,
		Ticker:      req.Ticker,
		Name:        req.Name,
		Market:      req.Market,
		LastPrice:   decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.investmentRepo.SaveSecurity(ctx, security); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save security", slog.String("ticker", req.Ticker))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Security created successfully",
		slog.String("security_id", security.SecurityID),
		slog.String("ticker", req.Ticker))
	return &security, nil
}

func (s *investmentService) ListSecurities(ctx context.Context, householdID string, requestingUserID string) ([]domain.Security, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	securities, err := s.investmentRepo.ListSecurities(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list securities", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list securities: %w", err)
	}
	return securities, nil
}

// UpdatePrices sets the last known market price of several securities at once.
// Average cost is untouched; prices only affect valuations.
func (s *investmentService) UpdatePrices(ctx context.Context, householdID string, req dto.UpdatePricesRequest, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return err
	}

	updates := make([]portsrepo.PriceUpdate, 0, len(req.Prices))
	for _, item := range req.Prices {
		if !item.Price.IsPositive() {
			return fmt.Errorf("%w: price for security %s must be positive", apperrors.ErrValidation, item.SecurityID)
		}
		security, err := s.investmentRepo.FindSecurityByID(ctx, item.SecurityID)
		if err != nil {
			return err
		}
		if security.HouseholdID != householdID {
			return apperrors.ErrNotFound
		}
		updates = append(updates, portsrepo.PriceUpdate{SecurityID: item.SecurityID, Price: item.Price})
	}

	now := time.Now()
	if err := s.investmentRepo.UpdatePrices(ctx, updates, now); err != nil {
		s.LogError(ctx, err, "Failed to update security prices")
		return err
	}

	s.LogInfo(ctx, "Security prices updated", slog.Int("count", len(updates)))
	return nil
}

// RecordTrade records a buy or sell. The holding's weighted-average cost and
// the balanced ledger entry are written in one transaction; a sell exceeding
// the held quantity is rejected before anything is persisted.
func (s *investmentService) RecordTrade(ctx context.Context, householdID string, req dto.RecordTradeRequest, creatorUserID string) (*domain.Trade, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", apperrors.ErrValidation)
	}
	if req.Fee.IsNegative() {
		return nil, fmt.Errorf("%w: fee must not be negative", apperrors.ErrValidation)
	}

	security, err := s.investmentRepo.FindSecurityByID(ctx, req.SecurityID)
	if err != nil {
		return nil, err
	}
	if security.HouseholdID != householdID {
		return nil, apperrors.ErrNotFound
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.HouseholdID != householdID {
		return nil, fmt.Errorf("%w: account %s not found in household", apperrors.ErrValidation, req.AccountID)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, req.AccountID)
	}

	closed, err := s.closingRepo.HasClosingForDate(ctx, householdID, req.OccurredAt)
	if err != nil {
		s.LogError(ctx, err, "Failed to check month closing for trade")
		return nil, fmt.Errorf("failed to check month closing: %w", err)
	}
	if closed {
		return nil, fmt.Errorf("%w: the month of %s is closed", apperrors.ErrConflict, req.OccurredAt.Format("2006-01"))
	}

	counter, err := findOrCreateSystemAccount(ctx, s.accountRepo, householdID, account.CurrencyCode, investmentAccountName, domain.Virtual, creatorUserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve investments counter account")
		return nil, err
	}

	now := time.Now()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	// Cash moves: a buy costs quantity*price plus fee, a sell yields
	// quantity*price minus fee.
	gross := req.Quantity.Mul(req.Price)
	var accountDelta decimal.Decimal
	if req.TradeType == domain.Buy {
		accountDelta = gross.Add(req.Fee).Neg()
	} else {
		accountDelta = gross.Sub(req.Fee)
		if !accountDelta.IsPositive() {
			return nil, fmt.Errorf("%w: fee exceeds the sale proceeds", apperrors.ErrValidation)
		}
	}

	entry := domain.Entry{
		EntryID:     entryID,
		HouseholdID: householdID,
		OccurredAt:  req.OccurredAt,
		EntryType:   domain.EntryTransfer,
		Memo:        fmt.Sprintf("%s %s %s @ %s", req.TradeType, req.Quantity, security.Ticker, req.Price),
		Source:      domain.SourceSystem,
		AuditFields: audit,
	}
	lines := []domain.Line{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: req.AccountID, Amount: accountDelta, AuditFields: audit},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: counter.AccountID, Amount: accountDelta.Neg(), AuditFields: audit},
	}
	balanceChanges := map[string]decimal.Decimal{
		req.AccountID:     accountDelta,
		counter.AccountID: accountDelta.Neg(),
	}

	trade := domain.Trade{
		TradeID:     uuid.NewString(),
		HouseholdID: householdID,
		SecurityID:  req.SecurityID,
		AccountID:   req.AccountID,
		TradeType:   req.TradeType,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Fee:         req.Fee,
		OccurredAt:  req.OccurredAt,
		EntryID:     entryID,
		AuditFields: audit,
	}

	recorded, err := s.investmentRepo.RecordTrade(ctx, portsrepo.TradeRequest{
		Trade:          trade,
		Security:       *security,
		Entry:          entry,
		Lines:          lines,
		BalanceChanges: balanceChanges,
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to record trade",
				slog.String("security_id", req.SecurityID),
				slog.String("trade_type", string(req.TradeType)))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Trade recorded successfully",
		slog.String("trade_id", recorded.TradeID),
		slog.String("ticker", security.Ticker),
		slog.String("trade_type", string(req.TradeType)))
	return recorded, nil
}

func (s *investmentService) ListTrades(ctx context.Context, householdID string, requestingUserID string, params dto.ListTradesParams) ([]domain.Trade, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	// Fetch enough rows to cover the offset, then filter in memory.
	fetchLimit := params.Limit + params.Offset
	if fetchLimit <= 0 {
		fetchLimit = 50
	}
	trades, _, err := s.investmentRepo.ListTrades(ctx, householdID, fetchLimit, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list trades", slog.String("household_id", householdID))
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	filtered := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if params.SecurityID != nil && t.SecurityID != *params.SecurityID {
			continue
		}
		if params.AccountID != nil && t.AccountID != *params.AccountID {
			continue
		}
		filtered = append(filtered, t)
	}

	if params.Offset >= len(filtered) {
		return []domain.Trade{}, nil
	}
	filtered = filtered[params.Offset:]
	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}
	return filtered, nil
}

// ListHoldings returns the household's open positions, valued at the last
// known prices.
func (s *investmentService) ListHoldings(ctx context.Context, householdID string, requestingUserID string) ([]dto.HoldingResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	holdings, securities, err := s.loadHoldingsWithSecurities(ctx, householdID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.HoldingResponse, 0, len(holdings))
	for i := range holdings {
		if holdings[i].Quantity.IsZero() {
			continue
		}
		security, ok := securities[holdings[i].SecurityID]
		if !ok {
			continue
		}
		responses = append(responses, dto.ToHoldingResponse(&holdings[i], &security))
	}
	return responses, nil
}

// SnapshotHoldings captures a per-security valuation as of a date. Quantities
// are summed across accounts and the average price is the quantity-weighted
// mean; re-running for the same date overwrites the previous snapshot.
func (s *investmentService) SnapshotHoldings(ctx context.Context, householdID string, req dto.SnapshotHoldingsRequest, requestingUserID string) ([]domain.HoldingSnapshot, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleMember); err != nil {
		return nil, err
	}

	holdings, securities, err := s.loadHoldingsWithSecurities(ctx, householdID)
	if err != nil {
		return nil, err
	}

	type aggregate struct {
		quantity decimal.Decimal
		cost     decimal.Decimal
	}
	totals := make(map[string]aggregate)
	order := make([]string, 0)
	for _, h := range holdings {
		if h.Quantity.IsZero() {
			continue
		}
		agg, seen := totals[h.SecurityID]
		if !seen {
			order = append(order, h.SecurityID)
		}
		agg.quantity = agg.quantity.Add(h.Quantity)
		agg.cost = agg.cost.Add(h.Quantity.Mul(h.AvgPrice))
		totals[h.SecurityID] = agg
	}

	snapshots := make([]domain.HoldingSnapshot, 0, len(order))
	for _, securityID := range order {
		agg := totals[securityID]
		security := securities[securityID]
		avgPrice := agg.cost.DivRound(agg.quantity, snapshotAvgScale)
		snapshots = append(snapshots, domain.HoldingSnapshot{
			SnapshotID:   uuid.NewString(),
			HouseholdID:  householdID,
			SnapshotDate: req.SnapshotDate,
			SecurityID:   securityID,
			Quantity:     agg.quantity,
			AvgPrice:     avgPrice,
			LastPrice:    security.LastPrice,
			Valuation:    agg.quantity.Mul(security.LastPrice),
		})
	}

	if len(snapshots) > 0 {
		if err := s.investmentRepo.UpsertSnapshots(ctx, snapshots); err != nil {
			s.LogError(ctx, err, "Failed to upsert holding snapshots")
			return nil, err
		}
	}

	s.LogInfo(ctx, "Holding snapshots captured",
		slog.String("snapshot_date", req.SnapshotDate.Format("2006-01-02")),
		slog.Int("count", len(snapshots)))
	return snapshots, nil
}

func (s *investmentService) ListSnapshots(ctx context.Context, householdID string, requestingUserID string, dateStr string) ([]domain.HoldingSnapshot, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, householdID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	snapshotDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", apperrors.ErrValidation)
	}

	snapshots, err := s.investmentRepo.ListSnapshots(ctx, householdID, snapshotDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to list holding snapshots", slog.String("date", dateStr))
		return nil, fmt.Errorf("failed to list holding snapshots: %w", err)
	}
	return snapshots, nil
}

func (s *investmentService) loadHoldingsWithSecurities(ctx context.Context, householdID string) ([]domain.Holding, map[string]domain.Security, error) {
	holdings, err := s.investmentRepo.ListHoldings(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list holdings", slog.String("household_id", householdID))
		return nil, nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	securities, err := s.investmentRepo.ListSecurities(ctx, householdID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list securities", slog.String("household_id", householdID))
		return nil, nil, fmt.Errorf("failed to list securities: %w", err)
	}

	byID := make(map[string]domain.Security, len(securities))
	for _, sec := range securities {
		byID[sec.SecurityID] = sec
	}
	return holdings, byID, nil
}
