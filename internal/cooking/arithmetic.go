package cooking

import (
	"fmt"
	"math"
	"time"

	"pasta-logger/internal/model"
)

// SaltPercentage returns the salt concentration of the boiling water in
// percent, rounded to one decimal place. Results that do not fit the stored
// column are rejected.
func SaltPercentage(waterLitres, saltGrams float64) (float64, error) {
	if !finite(waterLitres) || !finite(saltGrams) || waterLitres <= 0 || saltGrams < 0 {
		return 0, model.ErrInvalidSaltInput
	}
	pct := math.Round(saltGrams/(waterLitres*1000)*100*10) / 10
	if !finite(pct) || pct > model.MaxStoredDecimal {
		return 0, model.ErrInvalidSaltInput
	}
	return pct, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

const (
	MaxBoilMinutes  = 9
	BoilSecondStep  = 10
	DefaultBoilTime = 480
)

// BoilDuration is the boil countdown length as edited with the minute and
// second steppers.
type BoilDuration struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// BoilPresets are the one-tap durations offered next to the steppers.
var BoilPresets = []BoilDuration{
	{Minutes: 5, Seconds: 0},
	{Minutes: 6, Seconds: 30},
	{Minutes: 7, Seconds: 0},
	{Minutes: 8, Seconds: 0},
	{Minutes: 9, Seconds: 0},
}

// NewBoilDuration splits a total number of seconds into a duration.
func NewBoilDuration(total int) BoilDuration {
	if total < 0 {
		total = 0
	}
	return BoilDuration{Minutes: total / 60, Seconds: total % 60}.clamp()
}

// ParseBoilDuration clamps form input into a valid duration.
func ParseBoilDuration(minutes, seconds int) BoilDuration {
	return BoilDuration{Minutes: minutes, Seconds: seconds}.clamp()
}

func (d BoilDuration) clamp() BoilDuration {
	d.Minutes = min(max(d.Minutes, 0), MaxBoilMinutes)
	d.Seconds = min(max(d.Seconds, 0), 59)
	return d
}

// TotalSeconds returns the countdown length in seconds.
func (d BoilDuration) TotalSeconds() int {
	return d.Minutes*60 + d.Seconds
}

func (d BoilDuration) IncMinute() BoilDuration {
	d.Minutes = min(MaxBoilMinutes, d.Minutes+1)
	return d
}

func (d BoilDuration) DecMinute() BoilDuration {
	d.Minutes = max(0, d.Minutes-1)
	return d
}

// IncSecond adds ten seconds, rolling over into the next minute at 60.
func (d BoilDuration) IncSecond() BoilDuration {
	next := d.Seconds + BoilSecondStep
	if next >= 60 {
		d.Seconds = 0
		d.Minutes = min(MaxBoilMinutes, d.Minutes+1)
		return d
	}
	d.Seconds = next
	return d
}

func (d BoilDuration) DecSecond() BoilDuration {
	d.Seconds = max(0, d.Seconds-BoilSecondStep)
	return d
}

// Step applies a stepper operation by name.
func (d BoilDuration) Step(op string) (BoilDuration, error) {
	switch op {
	case "minute_plus":
		return d.IncMinute(), nil
	case "minute_minus":
		return d.DecMinute(), nil
	case "second_plus":
		return d.IncSecond(), nil
	case "second_minus":
		return d.DecSecond(), nil
	default:
		return d, fmt.Errorf("unknown boil stepper operation %q", op)
	}
}

func (d BoilDuration) String() string {
	return FormatClock(d.TotalSeconds())
}

// FormatClock renders whole seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatMinutesSeconds renders a duration as "3m 05s" for the analysis panel.
func FormatMinutesSeconds(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%dm %02ds", secs/60, secs%60)
}
