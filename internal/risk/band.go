// Package risk maps a WBGT value to a heat-stress band and its
// work-rest guideline.
package risk

import "fmt"

// Level names a heat-stress band.
type Level string

const (
	LevelUnknown Level = "Unknown"
	LevelWhite   Level = "White"
	LevelGreen   Level = "Green"
	LevelYellow  Level = "Yellow"
	LevelRed     Level = "Red"
	LevelBlack   Level = "Black"
	LevelCutOff  Level = "Cut-Off"
)

// Band is a classified WBGT. WorkMinutes and RestMinutes are zero for
// Unknown and Cut-Off.
type Band struct {
	Level       Level  `json:"level"`
	Color       string `json:"color"`
	Symbol      string `json:"symbol"`
	WorkMinutes int    `json:"work_minutes,omitempty"`
	RestMinutes int    `json:"rest_minutes,omitempty"`
	Guidance    string `json:"guidance"`
}

var (
	Unknown = Band{Level: LevelUnknown, Color: "gray", Symbol: "❌", Guidance: "Error fetching prediction"}
	White   = cycle(LevelWhite, "white", "⚪", 60, 15)
	Green   = cycle(LevelGreen, "green", "🟢", 45, 15)
	Yellow  = cycle(LevelYellow, "yellow", "🟡", 30, 15)
	Red     = cycle(LevelRed, "red", "🔴", 30, 30)
	Black   = cycle(LevelBlack, "black", "⚫", 15, 30)
	CutOff  = Band{Level: LevelCutOff, Color: "#8B0000", Symbol: "❌", Guidance: "No Strenuous Training"}
)

// thresholds are exclusive upper bounds, checked in ascending order.
var thresholds = []struct {
	below float64
	band  Band
}{
	{29.9, White},
	{30.9, Green},
	{31.9, Yellow},
	{32.9, Red},
	{34.9, Black},
}

func cycle(level Level, color, symbol string, work, rest int) Band {
	return Band{
		Level:       level,
		Color:       color,
		Symbol:      symbol,
		WorkMinutes: work,
		RestMinutes: rest,
		Guidance:    fmt.Sprintf("Work-Rest (min): %d–%d", work, rest),
	}
}

// Classify returns Unknown for a missing value.
func Classify(wbgt *float64) Band {
	if wbgt == nil {
		return Unknown
	}
	return ClassifyValue(*wbgt)
}

// ClassifyValue picks the first band whose upper bound exceeds wbgt.
func ClassifyValue(wbgt float64) Band {
	for _, t := range thresholds {
		if wbgt < t.below {
			return t.band
		}
	}
	return CutOff
}

// Label renders the band the way the dashboard lists it, e.g.
// "🟢 Green — Work-Rest (min): 45–15".
func (b Band) Label() string {
	return fmt.Sprintf("%s %s — %s", b.Symbol, b.Level, b.Guidance)
}
