package engine

import (
	"testing"

	"range-breakout/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ledger := model.Ledger{
		InitialBalance: 1000,
		FinalBalance:   1075,
		Trades: []model.Trade{
			{ExitTime: t0.AddDate(0, 0, 2), ProfitLossAmount: 100, BalanceAfter: 1100},
			{ExitTime: t0.AddDate(0, 0, 4), ProfitLossAmount: -50, BalanceAfter: 1050},
			{ExitTime: t0.AddDate(0, 0, 6), ProfitLossAmount: 25, BalanceAfter: 1075},
		},
	}

	s := Summarize(ledger)
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Equal(t, 66.67, s.WinRate)
	assert.True(t, s.TotalProfit.Equal(decimal.NewFromInt(75)), s.TotalProfit.String())
	assert.Equal(t, 7.5, s.TotalReturn)
	// 1100 -> 1050
	assert.Equal(t, 4.55, s.MaxDrawdown)
	assert.True(t, s.InitialBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, s.FinalBalance.Equal(decimal.NewFromInt(1075)))

	require.Len(t, s.EquityCurve, 3)
	assert.Equal(t, t0.AddDate(0, 0, 4), s.EquityCurve[1].Time)
	assert.True(t, s.EquityCurve[1].Balance.Equal(decimal.NewFromInt(1050)))
}

func TestSummarize_DrawdownFromInitialBalance(t *testing.T) {
	ledger := model.Ledger{
		InitialBalance: 1000,
		FinalBalance:   900,
		Trades:         []model.Trade{{ProfitLossAmount: -100, BalanceAfter: 900}},
	}
	s := Summarize(ledger)
	assert.Equal(t, 10.0, s.MaxDrawdown)
	assert.Equal(t, -10.0, s.TotalReturn)
	assert.Equal(t, 0.0, s.WinRate)
}

func TestSummarize_NoTrades(t *testing.T) {
	s := Summarize(model.Ledger{InitialBalance: 10000, FinalBalance: 10000})
	assert.Zero(t, s.TotalTrades)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.TotalReturn)
	assert.Zero(t, s.MaxDrawdown)
	assert.True(t, s.TotalProfit.IsZero())
	assert.Empty(t, s.EquityCurve)
	assert.True(t, s.FinalBalance.Equal(decimal.NewFromInt(10000)))
}

func TestSummarize_RoundsMoney(t *testing.T) {
	s := Summarize(model.Ledger{
		InitialBalance: 10000,
		FinalBalance:   10033.336,
		Trades:         []model.Trade{{ProfitLossAmount: 33.336, BalanceAfter: 10033.336}},
	})
	assert.Equal(t, "33.34", s.TotalProfit.String())
	assert.Equal(t, "10033.34", s.FinalBalance.String())
	assert.Equal(t, 0.33, s.TotalReturn)
}
