package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/fx"
	"github.com/ndewijer/portfolio-dashboard/internal/ledger"
	"github.com/ndewijer/portfolio-dashboard/internal/marketdata"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
)

// PositionService handles position-related business logic operations.
type PositionService struct {
	db           *sql.DB
	positionRepo *repository.PositionRepository
	writer       *ledgerWriter
	market       marketdata.Client
	converter    *fx.Converter
}

// NewPositionService creates a new PositionService with the provided dependencies.
func NewPositionService(
	db *sql.DB,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	market marketdata.Client,
	converter *fx.Converter,
) *PositionService {
	return &PositionService{
		db:           db,
		positionRepo: positionRepo,
		writer: &ledgerWriter{
			db:              db,
			positionRepo:    positionRepo,
			transactionRepo: transactionRepo,
		},
		market:    market,
		converter: converter,
	}
}

// GetPositions returns every position valued at its latest quote.
// When currency is set and differs from a position's currency, the converted
// market value and cost are added.
func (s *PositionService) GetPositions(ctx context.Context, currency string) ([]model.PositionResponse, error) {
	positions, err := s.positionRepo.GetPositions(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, positions, currency)
}

// GetPosition returns one position valued at its latest quote.
func (s *PositionService) GetPosition(ctx context.Context, id, currency string) (model.PositionResponse, error) {
	position, err := s.positionRepo.GetPosition(ctx, id)
	if err != nil {
		return model.PositionResponse{}, err
	}
	enriched, err := s.enrich(ctx, []model.Position{position}, currency)
	if err != nil {
		return model.PositionResponse{}, err
	}
	return enriched[0], nil
}

// CreatePosition registers a new, empty position.
// Returns ErrDuplicateEntry when the symbol is already tracked.
func (s *PositionService) CreatePosition(ctx context.Context, req request.CreatePositionRequest) (*model.Position, error) {
	now := time.Now().UTC()
	position := &model.Position{
		ID:        uuid.New().String(),
		Symbol:    strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Name:      strings.TrimSpace(req.Name),
		Market:    strings.ToUpper(strings.TrimSpace(req.Market)),
		Currency:  strings.ToUpper(req.Currency),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.positionRepo.InsertPosition(ctx, *position); err != nil {
		return nil, fmt.Errorf("failed to create position: %w", err)
	}
	return position, nil
}

// DeletePosition removes a position together with its ledger and schedules.
func (s *PositionService) DeletePosition(ctx context.Context, id string) error {
	return s.positionRepo.DeletePosition(ctx, id)
}

// RecalculatePosition replays the full ledger of a position from zero.
func (s *PositionService) RecalculatePosition(ctx context.Context, id string) (model.Position, error) {
	var position model.Position
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		position, err = s.writer.rebuild(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.Position{}, err
	}
	return position, nil
}

// enrich attaches quotes, fetched concurrently. A position without a quote is
// valued at its average cost and flagged as unpriced.
func (s *PositionService) enrich(ctx context.Context, positions []model.Position, currency string) ([]model.PositionResponse, error) {
	currency = strings.ToUpper(currency)

	tickers := make([]string, len(positions))
	for i, p := range positions {
		tickers[i] = marketdata.Ticker(p.Symbol, p.Market)
	}
	quotes := marketdata.FetchQuotes(ctx, s.market, tickers)

	responses := make([]model.PositionResponse, 0, len(positions))
	for i, p := range positions {
		resp := model.PositionResponse{Position: p, CurrentPrice: p.AverageCost}

		if q, ok := quotes[tickers[i]]; ok && q.Price > 0 {
			price, err := s.priceIn(ctx, q, p.Currency)
			if err != nil {
				log.Warn().Err(err).Str("symbol", p.Symbol).Msg("quote currency not convertible")
			} else {
				resp.CurrentPrice = price
				resp.PriceAvailable = true
			}
		}

		v := ledger.Unrealized(ledger.FromPosition(p), resp.CurrentPrice)
		resp.MarketValue = v.MarketValue
		resp.UnrealizedGain = v.UnrealizedGain
		resp.UnrealizedGainPercent = v.UnrealizedGainPercent

		if currency != "" && currency != p.Currency {
			rate, err := s.converter.Rate(ctx, p.Currency, currency)
			if err != nil {
				return nil, err
			}
			resp.DisplayCurrency = currency
			resp.ConvertedMarketValue = resp.MarketValue * rate.Rate
			resp.ConvertedTotalCost = p.TotalCost * rate.Rate
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// priceIn expresses a quote in the position currency.
func (s *PositionService) priceIn(ctx context.Context, q model.Quote, currency string) (float64, error) {
	if q.Currency == "" || strings.EqualFold(q.Currency, currency) {
		return q.Price, nil
	}
	conv, err := s.converter.Convert(ctx, q.Price, q.Currency, currency)
	if err != nil {
		return 0, err
	}
	return conv.Converted, nil
}
