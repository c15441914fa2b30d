package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	money "github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/ledger"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/repository"
)

// reportMovers is the length of the gainers and losers lists.
const reportMovers = 3

// ReportService builds weekly reports.
type ReportService struct {
	reportRepo       *repository.ReportRepository
	transactionRepo  *repository.TransactionRepository
	portfolioService *PortfolioService
}

// NewReportService creates a new ReportService.
func NewReportService(
	reportRepo *repository.ReportRepository,
	transactionRepo *repository.TransactionRepository,
	portfolioService *PortfolioService,
) *ReportService {
	return &ReportService{
		reportRepo:       reportRepo,
		transactionRepo:  transactionRepo,
		portfolioService: portfolioService,
	}
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := analytics.Truncate(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// PreviousWeekStart returns the Monday of the week before the one containing t.
func PreviousWeekStart(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, -7)
}

// GetReports returns up to limit reports, newest week first.
func (s *ReportService) GetReports(ctx context.Context, limit int) ([]model.WeeklyReport, error) {
	return s.reportRepo.GetReports(ctx, limit)
}

// GetReport retrieves one report by ID.
func (s *ReportService) GetReport(ctx context.Context, id string) (model.WeeklyReport, error) {
	return s.reportRepo.GetReport(ctx, id)
}

// GetLatestReport returns the report of the most recent week.
// Returns ErrReportNotFound when none has been generated.
func (s *ReportService) GetLatestReport(ctx context.Context) (model.WeeklyReport, error) {
	return s.reportRepo.GetLatestReport(ctx)
}

// Generate builds and stores the report of the week containing weekStart,
// replacing an earlier report of the same week. A zero weekStart selects
// the previous week.
func (s *ReportService) Generate(ctx context.Context, weekStart time.Time) (model.WeeklyReport, error) {
	if weekStart.IsZero() {
		weekStart = PreviousWeekStart(time.Now())
	} else {
		weekStart = WeekStart(weekStart)
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	snap, err := s.portfolioService.load(ctx)
	if err != nil {
		return model.WeeklyReport{}, err
	}
	summary := summarize(snap)

	report := model.WeeklyReport{
		ID:             uuid.New().String(),
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		BaseCurrency:   summary.BaseCurrency,
		TotalValue:     summary.TotalValue,
		TotalCost:      summary.TotalCost,
		UnrealizedGain: summary.UnrealizedGain,
		ReturnPercent:  summary.UnrealizedGainPercent,
		CreatedAt:      time.Now().UTC(),
	}
	report.TopGainers, report.TopLosers = movers(snap.positions, reportMovers)

	week, err := s.transactionRepo.GetTransactions(ctx, model.TransactionFilter{StartDate: weekStart, EndDate: weekEnd})
	if err != nil {
		return model.WeeklyReport{}, err
	}
	if err := s.addActivity(ctx, &report, week, snap); err != nil {
		return model.WeeklyReport{}, err
	}

	report.Summary = formatSummary(report)

	if err := s.reportRepo.UpsertReport(ctx, report); err != nil {
		return model.WeeklyReport{}, err
	}
	log.Info().Str("week_start", weekStart.Format("2006-01-02")).Int("transactions", report.TransactionCount).Msg("weekly report generated")
	return report, nil
}

// addActivity totals the week's transactions in base currency. Realized gain
// and dividend income come from replaying each touched position's full
// ledger, so sells are measured against the average cost at that moment.
func (s *ReportService) addActivity(ctx context.Context, report *model.WeeklyReport, week []model.TransactionResponse, snap snapshot) error {
	inWeek := make(map[string]bool, len(week))
	touched := []string{}
	for _, t := range week {
		inWeek[t.ID] = true
		if !slices.Contains(touched, t.PositionID) {
			touched = append(touched, t.PositionID)
		}
		report.TransactionCount++
		if t.PurchaseMethod == model.PurchaseMethodAuto {
			report.AutoInvestCount++
		}
	}

	currencies := make(map[string]string, len(snap.positions))
	for _, p := range snap.positions {
		currencies[p.ID] = p.Currency
	}

	for _, positionID := range touched {
		rate := snap.rates[currencies[positionID]]

		txs, err := s.transactionRepo.GetLedger(ctx, positionID)
		if err != nil {
			return err
		}
		ledger.Sort(txs)

		state := ledger.State{}
		for _, t := range txs {
			next, err := ledger.Apply(state, t)
			if err != nil {
				return fmt.Errorf("failed to replay position %s: %w", positionID, err)
			}
			if inWeek[t.ID] {
				gross := t.Shares * t.Price * exchangeRate(t)
				switch t.Type {
				case model.TransactionTypeBuy:
					report.BuyAmount += gross * rate
				case model.TransactionTypeSell:
					report.SellAmount += gross * rate
					report.RealizedGain += next.RealizedGain.Sub(state.RealizedGain).InexactFloat64() * rate
				case model.TransactionTypeDividend:
					report.DividendIncome += next.TotalDividends.Sub(state.TotalDividends).InexactFloat64() * rate
				}
			}
			state = next
		}
	}
	return nil
}

func exchangeRate(t model.Transaction) float64 {
	if t.ExchangeRate <= 0 {
		return 1
	}
	return t.ExchangeRate
}

func formatSummary(r model.WeeklyReport) string {
	display := func(amount float64) string {
		return money.NewFromFloat(amount, r.BaseCurrency).Display()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Week of %s to %s: ", r.WeekStart.Format("2006-01-02"), r.WeekEnd.Format("2006-01-02"))
	if r.TransactionCount == 0 {
		b.WriteString("no transactions. ")
	} else {
		fmt.Fprintf(&b, "%d transactions (%d automatic), bought %s, sold %s, dividends %s, realized %s. ",
			r.TransactionCount, r.AutoInvestCount,
			display(r.BuyAmount), display(r.SellAmount), display(r.DividendIncome), display(r.RealizedGain))
	}
	fmt.Fprintf(&b, "Portfolio value %s on a cost of %s, unrealized %s (%.2f%%).",
		display(r.TotalValue), display(r.TotalCost), display(r.UnrealizedGain), r.ReturnPercent)

	if len(r.TopGainers) > 0 {
		fmt.Fprintf(&b, " Top gainer %s %+.2f%%.", r.TopGainers[0].Symbol, r.TopGainers[0].UnrealizedGainPercent)
	}
	if len(r.TopLosers) > 0 {
		fmt.Fprintf(&b, " Top loser %s %+.2f%%.", r.TopLosers[0].Symbol, r.TopLosers[0].UnrealizedGainPercent)
	}
	return b.String()
}
