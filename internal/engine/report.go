package engine

import (
	"math"

	"range-breakout/internal/model"

	"github.com/shopspring/decimal"
)

// Summarize derives the performance statistics of a ledger. Money is
// reported as decimals rounded to cents, percentages to two places.
func Summarize(ledger model.Ledger) model.Summary {
	summary := model.Summary{
		TotalTrades:    len(ledger.Trades),
		InitialBalance: money(ledger.InitialBalance),
		FinalBalance:   money(ledger.FinalBalance),
		TotalProfit:    decimal.Zero,
		EquityCurve:    make([]model.EquityPoint, 0, len(ledger.Trades)),
	}
	if ledger.InitialBalance > 0 {
		summary.TotalReturn = round2((ledger.FinalBalance - ledger.InitialBalance) / ledger.InitialBalance * 100)
	}
	if len(ledger.Trades) == 0 {
		return summary
	}

	var profit float64
	for _, t := range ledger.Trades {
		if t.ProfitLossAmount > 0 {
			summary.WinningTrades++
		}
		profit += t.ProfitLossAmount
		summary.EquityCurve = append(summary.EquityCurve, model.EquityPoint{
			Time:    t.ExitTime,
			Balance: money(t.BalanceAfter),
		})
	}
	summary.TotalProfit = money(profit)
	summary.WinRate = round2(float64(summary.WinningTrades) / float64(len(ledger.Trades)) * 100)
	summary.MaxDrawdown = round2(maxDrawdown(ledger) * 100)
	return summary
}

// maxDrawdown is the largest peak-to-trough fall of the per-trade balance,
// as a fraction of the peak. The initial balance is the first peak.
func maxDrawdown(ledger model.Ledger) float64 {
	peak := ledger.InitialBalance
	maxDD := 0.0
	for _, t := range ledger.Trades {
		if t.BalanceAfter > peak {
			peak = t.BalanceAfter
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - t.BalanceAfter) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
