package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ndewijer/portfolio-dashboard/internal/analytics"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// Context is everything the advisor is told about the household.
type Context struct {
	Settings   model.PersonalizationSettings
	Summary    model.PortfolioSummary
	Positions  []model.PositionResponse
	Allocation analytics.Allocation
	Risk       *analytics.RiskReport
	Report     *model.WeeklyReport
}

var languageNames = map[string]string{
	"en": "English",
	"ko": "Korean",
	"ja": "Japanese",
	"zh": "Chinese",
	"de": "German",
	"fr": "French",
	"nl": "Dutch",
	"es": "Spanish",
}

// SystemPrompt builds the model instruction from the household's preferences.
func SystemPrompt(s model.PersonalizationSettings) string {
	lang := languageNames[strings.ToLower(s.AdvisorLanguage)]
	if lang == "" {
		lang = "English"
	}

	var b strings.Builder
	b.WriteString("You are a careful personal investment advisor for a single household. ")
	b.WriteString("Base every statement on the figures provided and say so when data is missing. ")
	b.WriteString("Do not invent prices, news or events. Do not promise returns. ")
	b.WriteString("Answer in concise markdown with short sections and bullet points.\n")
	fmt.Fprintf(&b, "Write in %s.\n", lang)
	if s.RiskTolerance != "" {
		fmt.Fprintf(&b, "The household's risk tolerance is %s.\n", s.RiskTolerance)
	}
	if s.InvestmentGoal != "" {
		fmt.Fprintf(&b, "Their stated investment goal: %s\n", s.InvestmentGoal)
	}
	return b.String()
}

// InsightPrompt asks for a general review of the portfolio.
func InsightPrompt(c Context) string {
	var b strings.Builder
	writeContext(&b, c)
	b.WriteString("\nReview this portfolio. Cover concentration and diversification, risk relative to ")
	b.WriteString("the stated tolerance, how the holdings compare to the target allocation, and at most ")
	b.WriteString("three concrete next steps.\n")
	return b.String()
}

// WeeklyPrompt asks for a review of the last weekly report.
func WeeklyPrompt(c Context) string {
	var b strings.Builder
	writeContext(&b, c)
	b.WriteString("\nSummarize the past week for the household: what changed, how the recurring ")
	b.WriteString("purchases went and what to watch next week. Keep it under 200 words.\n")
	return b.String()
}

// QuestionPrompt asks the household's own question against the same context.
func QuestionPrompt(c Context, question string) string {
	var b strings.Builder
	writeContext(&b, c)
	fmt.Fprintf(&b, "\nQuestion from the household:\n%s\n", strings.TrimSpace(question))
	return b.String()
}

func writeContext(b *strings.Builder, c Context) {
	s := c.Summary
	cur := s.BaseCurrency

	b.WriteString("## Portfolio summary\n")
	fmt.Fprintf(b, "- Total value: %.2f %s\n", s.TotalValue, cur)
	fmt.Fprintf(b, "- Cost basis: %.2f %s\n", s.TotalCost, cur)
	fmt.Fprintf(b, "- Unrealized gain: %.2f %s (%.2f%%)\n", s.UnrealizedGain, cur, s.UnrealizedGainPercent)
	fmt.Fprintf(b, "- Realized gain: %.2f %s, dividends: %.2f %s\n", s.RealizedGain, cur, s.TotalDividends, cur)
	if len(s.UnpricedSymbols) > 0 {
		fmt.Fprintf(b, "- No current price for: %s\n", strings.Join(s.UnpricedSymbols, ", "))
	}

	if len(c.Positions) > 0 {
		b.WriteString("\n## Positions\n")
		b.WriteString("| symbol | market | shares | avg cost | price | unrealized % |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, p := range c.Positions {
			fmt.Fprintf(b, "| %s | %s | %.4f | %.2f %s | %.2f %s | %.2f |\n",
				p.Symbol, p.Market, p.Shares, p.AverageCost, p.Currency,
				p.CurrentPrice, p.Currency, p.UnrealizedGainPercent)
		}
	}

	if len(c.Allocation.Slices) > 0 {
		fmt.Fprintf(b, "\n## Allocation by %s\n", c.Allocation.By)
		for _, sl := range c.Allocation.Slices {
			fmt.Fprintf(b, "- %s: %.1f%%\n", sl.Key, sl.Weight)
		}
	}

	if len(c.Settings.TargetAllocation) > 0 {
		b.WriteString("\n## Target allocation\n")
		keys := make([]string, 0, len(c.Settings.TargetAllocation))
		for k := range c.Settings.TargetAllocation {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "- %s: %.1f%%\n", k, c.Settings.TargetAllocation[k])
		}
	}

	if r := c.Risk; r != nil && r.Observations > 0 {
		b.WriteString("\n## Risk\n")
		fmt.Fprintf(b, "- Annualized volatility: %.2f%%\n", r.PortfolioVolatility)
		fmt.Fprintf(b, "- Max drawdown: %.2f%%\n", r.MaxDrawdown)
		fmt.Fprintf(b, "- Sharpe ratio: %.2f (risk-free %.2f%%)\n", r.SharpeRatio, r.RiskFreeRate)
	}

	if w := c.Report; w != nil {
		fmt.Fprintf(b, "\n## Last weekly report (%s to %s)\n", w.WeekStart.Format("2006-01-02"), w.WeekEnd.Format("2006-01-02"))
		b.WriteString(w.Summary)
		b.WriteString("\n")
	}
}
