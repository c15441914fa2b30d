package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-dashboard/internal/api/request"
	"github.com/ndewijer/portfolio-dashboard/internal/marketdata"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
)

// WatchlistService manages followed symbols.
type WatchlistService struct {
	watchlistRepo *repository.WatchlistRepository
	market        marketdata.Client
}

// NewWatchlistService creates a new WatchlistService.
func NewWatchlistService(watchlistRepo *repository.WatchlistRepository, market marketdata.Client) *WatchlistService {
	return &WatchlistService{
		watchlistRepo: watchlistRepo,
		market:        market,
	}
}

// GetWatchlist returns every item with its latest quote. DistanceToTarget is
// the percent move needed to reach the target price.
func (s *WatchlistService) GetWatchlist(ctx context.Context) ([]model.WatchlistItemResponse, error) {
	items, err := s.watchlistRepo.GetItems(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(items))
	for i, item := range items {
		tickers[i] = marketdata.Ticker(item.Symbol, item.Market)
	}
	quotes := marketdata.FetchQuotes(ctx, s.market, tickers)

	responses := make([]model.WatchlistItemResponse, 0, len(items))
	for i, item := range items {
		resp := model.WatchlistItemResponse{WatchlistItem: item}
		if q, ok := quotes[tickers[i]]; ok && q.Price > 0 {
			resp.Price = q.Price
			resp.Currency = q.Currency
			resp.ChangePercent = q.ChangePercent
			resp.PriceAvailable = true
			if item.TargetPrice != nil {
				d := (*item.TargetPrice - q.Price) / q.Price * 100
				resp.DistanceToTarget = &d
			}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// AddItem follows a new symbol.
// Returns ErrDuplicateEntry when the symbol is already on the watchlist.
func (s *WatchlistService) AddItem(ctx context.Context, req request.CreateWatchlistItemRequest) (*model.WatchlistItem, error) {
	item := &model.WatchlistItem{
		ID:          uuid.New().String(),
		Symbol:      strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Name:        strings.TrimSpace(req.Name),
		Market:      strings.ToUpper(strings.TrimSpace(req.Market)),
		TargetPrice: req.TargetPrice,
		Note:        strings.TrimSpace(req.Note),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.watchlistRepo.InsertItem(ctx, *item); err != nil {
		return nil, fmt.Errorf("failed to add watchlist item: %w", err)
	}
	return item, nil
}

// DeleteItem removes a watchlist entry.
func (s *WatchlistService) DeleteItem(ctx context.Context, id string) error {
	return s.watchlistRepo.DeleteItem(ctx, id)
}
