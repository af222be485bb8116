package model

import "fmt"

// TrendState classifies a trailing window of candle bodies against the EMA.
type TrendState uint8

const (
	TrendNone         TrendState = iota // mixed, or not enough history
	TrendAllAbove                       // every body strictly above the EMA
	TrendAllBelow                       // every body strictly below the EMA
	TrendUndetermined                   // no body touches the EMA from either side

	lastTrendState = TrendUndetermined
)

func (s TrendState) String() string {
	switch s {
	case TrendNone:
		return "none"
	case TrendAllAbove:
		return "all_above"
	case TrendAllBelow:
		return "all_below"
	case TrendUndetermined:
		return "undetermined"
	}
	return fmt.Sprintf("trend(%d)", uint8(s))
}

func (s TrendState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *TrendState) UnmarshalText(text []byte) error {
	for v := TrendState(0); v <= lastTrendState; v++ {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown trend %q", text)
}

// PivotState marks a bar whose high and/or low is a local extreme.
type PivotState uint8

const (
	PivotNone PivotState = iota
	PivotHigh
	PivotLow
	PivotBoth

	lastPivotState = PivotBoth
)

func (s PivotState) String() string {
	switch s {
	case PivotNone:
		return "none"
	case PivotHigh:
		return "high"
	case PivotLow:
		return "low"
	case PivotBoth:
		return "both"
	}
	return fmt.Sprintf("pivot(%d)", uint8(s))
}

func (s PivotState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PivotState) UnmarshalText(text []byte) error {
	for v := PivotState(0); v <= lastPivotState; v++ {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown pivot %q", text)
}

// PatternState is the triple-touch breakout detected at a bar.
type PatternState uint8

const (
	PatternNone            PatternState = iota
	PatternSupportBreak                 // sell
	PatternResistanceBreak              // buy

	lastPatternState = PatternResistanceBreak
)

func (s PatternState) String() string {
	switch s {
	case PatternNone:
		return "none"
	case PatternSupportBreak:
		return "support_break"
	case PatternResistanceBreak:
		return "resistance_break"
	}
	return fmt.Sprintf("pattern(%d)", uint8(s))
}

func (s PatternState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PatternState) UnmarshalText(text []byte) error {
	for v := PatternState(0); v <= lastPatternState; v++ {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown pattern %q", text)
}

// Signal is the fused directional decision for a bar.
type Signal uint8

const (
	SignalNone Signal = iota
	SignalBuy
	SignalSell

	lastSignal = SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	}
	return fmt.Sprintf("signal(%d)", uint8(s))
}

func (s Signal) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Signal) UnmarshalText(text []byte) error {
	for v := Signal(0); v <= lastSignal; v++ {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown signal %q", text)
}

// Direction is the side of an open or closed position.
type Direction uint8

const (
	Long Direction = iota + 1
	Short
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "long":
		*d = Long
	case "short":
		*d = Short
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}
