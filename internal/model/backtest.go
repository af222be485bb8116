package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade 已平仓交易记录. Created only when a position closes.
type Trade struct {
	EntryTime         time.Time `json:"entry_time"`
	ExitTime          time.Time `json:"exit_time"`
	Direction         Direction `json:"direction"`
	EntryPrice        float64   `json:"entry_price"`
	ExitPrice         float64   `json:"exit_price"`
	ProfitLossPercent float64   `json:"profit_loss_percent"`
	ProfitLossAmount  float64   `json:"profit_loss_amount"`
	BalanceAfter      float64   `json:"balance"`
	Forced            bool      `json:"forced,omitempty"` // closed at the last bar rather than by SL/TP
}

// Ledger is the ordered trade list of one run.
type Ledger struct {
	Trades         []Trade `json:"trades"`
	InitialBalance float64 `json:"initial_balance"`
	FinalBalance   float64 `json:"final_balance"`
}

// EquityPoint 权益曲线上的一个点
type EquityPoint struct {
	Time    time.Time       `json:"time"`
	Balance decimal.Decimal `json:"balance"`
}

// Summary 回测绩效统计
type Summary struct {
	TotalTrades    int             `json:"total_trades"`
	WinningTrades  int             `json:"winning_trades"`
	WinRate        float64         `json:"win_rate"` // percent
	TotalProfit    decimal.Decimal `json:"total_profit"`
	TotalReturn    float64         `json:"total_return"` // percent
	MaxDrawdown    float64         `json:"max_drawdown"` // percent
	InitialBalance decimal.Decimal `json:"initial_balance"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	EquityCurve    []EquityPoint   `json:"equity_curve"`
}

// BacktestReport 回测结果报告
type BacktestReport struct {
	RunID     uuid.UUID              `json:"run_id"`
	Symbol    string                 `json:"symbol"`
	Period    string                 `json:"period,omitempty"`
	Strategy  string                 `json:"strategy"`
	Params    map[string]interface{} `json:"params"`
	Ledger    Ledger                 `json:"ledger"`
	Summary   Summary                `json:"summary"`
	Signals   int                    `json:"signals"`
	Series    []SeriesPoint          `json:"series,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
