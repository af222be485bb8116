package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"range-breakout/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrBadCSV = errors.New("bad csv")

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type csvColumns struct {
	time, open, high, low, close, volume int
}

var defaultColumns = csvColumns{time: 0, open: 1, high: 2, low: 3, close: 4, volume: 5}

// ReadCSV parses timestamp,open,high,low,close[,volume] rows. A header row is
// optional; when present its names select the columns, so exports with extra
// columns ("Adj Close") load as well. UTF-8 and UTF-16 byte order marks are
// honoured.
func ReadCSV(r io.Reader, symbol string) ([]model.KLine, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cols := defaultColumns
	klines := make([]model.KLine, 0)
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadCSV, err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			h, ok, err := headerColumns(rec)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadCSV, line, err)
			}
			if ok {
				cols = h
				continue
			}
		}

		k, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadCSV, line, err)
		}
		k.Symbol = symbol
		klines = append(klines, k)
	}
	return klines, nil
}

// headerColumns recognises a header row by a non-numeric open column. A first
// row too short to hold a bar is neither a header nor data.
func headerColumns(rec []string) (csvColumns, bool, error) {
	if len(rec) <= defaultColumns.close {
		return csvColumns{}, false, fmt.Errorf("want at least %d columns, got %d", defaultColumns.close+1, len(rec))
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(rec[defaultColumns.open])); err == nil {
		return csvColumns{}, false, nil
	}

	cols := csvColumns{time: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range rec {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "time", "date", "datetime":
			cols.time = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume":
			cols.volume = i
		}
	}
	if cols.time < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.close < 0 {
		// unnamed header, fall back to positional columns
		return defaultColumns, true, nil
	}
	return cols, true, nil
}

func parseRow(rec []string, cols csvColumns) (model.KLine, error) {
	var k model.KLine
	field := func(i int) (string, error) {
		if i >= len(rec) {
			return "", fmt.Errorf("want at least %d columns, got %d", i+1, len(rec))
		}
		return strings.TrimSpace(rec[i]), nil
	}

	raw, err := field(cols.time)
	if err != nil {
		return k, err
	}
	if k.Timestamp, err = parseTime(raw); err != nil {
		return k, err
	}

	prices := []struct {
		idx int
		dst *decimal.Decimal
	}{
		{cols.open, &k.Open}, {cols.high, &k.High}, {cols.low, &k.Low}, {cols.close, &k.Close},
	}
	for _, p := range prices {
		raw, err := field(p.idx)
		if err != nil {
			return k, err
		}
		if *p.dst, err = decimal.NewFromString(raw); err != nil {
			return k, fmt.Errorf("price %q: %v", raw, err)
		}
	}

	if cols.volume >= 0 && cols.volume < len(rec) {
		if raw := strings.TrimSpace(rec[cols.volume]); raw != "" {
			if k.Volume, err = decimal.NewFromString(raw); err != nil {
				return k, fmt.Errorf("volume %q: %v", raw, err)
			}
		}
	}
	return k, nil
}

func parseTime(raw string) (time.Time, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

var tradeHeader = []string{
	"entry_time", "exit_time", "direction", "entry_price", "exit_price",
	"profit_loss_percent", "profit_loss_amount", "balance",
}

// WriteTradesCSV writes the ledger in the tabular export layout.
func WriteTradesCSV(w io.Writer, trades []model.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		row := []string{
			t.EntryTime.UTC().Format(time.RFC3339),
			t.ExitTime.UTC().Format(time.RFC3339),
			t.Direction.String(),
			decimal.NewFromFloat(t.EntryPrice).String(),
			decimal.NewFromFloat(t.ExitPrice).String(),
			decimal.NewFromFloat(t.ProfitLossPercent).StringFixed(2),
			decimal.NewFromFloat(t.ProfitLossAmount).StringFixed(2),
			decimal.NewFromFloat(t.BalanceAfter).StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
