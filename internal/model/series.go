package model

import "time"

// Series owns the bars of one run and the annotations derived from them.
// Every slice has the same length as Bars and is indexed by bar position.
type Series struct {
	Symbol  string         `json:"symbol"`
	Bars    []Bar          `json:"-"`
	EMA     []float64      `json:"-"`
	Trend   []TrendState   `json:"-"`
	Pivot   []PivotState   `json:"-"`
	Pattern []PatternState `json:"-"`
	Signal  []Signal       `json:"-"`
}

// SeriesPoint is one row of the annotated series, the shape a chart consumes.
type SeriesPoint struct {
	Time    time.Time    `json:"time"`
	Open    float64      `json:"open"`
	High    float64      `json:"high"`
	Low     float64      `json:"low"`
	Close   float64      `json:"close"`
	EMA     float64      `json:"ema"`
	Trend   TrendState   `json:"trend"`
	Pivot   PivotState   `json:"pivot"`
	Pattern PatternState `json:"pattern"`
	Signal  Signal       `json:"signal"`
}

func (s *Series) Len() int { return len(s.Bars) }

func (s *Series) Point(i int) SeriesPoint {
	b := s.Bars[i]
	return SeriesPoint{
		Time:    b.Time,
		Open:    b.Open,
		High:    b.High,
		Low:     b.Low,
		Close:   b.Close,
		EMA:     s.EMA[i],
		Trend:   s.Trend[i],
		Pivot:   s.Pivot[i],
		Pattern: s.Pattern[i],
		Signal:  s.Signal[i],
	}
}

func (s *Series) Rows() []SeriesPoint {
	rows := make([]SeriesPoint, s.Len())
	for i := range rows {
		rows[i] = s.Point(i)
	}
	return rows
}

// SignalCount returns how many bars carry a non-None signal.
func (s *Series) SignalCount() int {
	n := 0
	for _, sig := range s.Signal {
		if sig != SignalNone {
			n++
		}
	}
	return n
}
