package cooking

import "time"

// EventType names the kinds of events a process publishes.
type EventType string

const (
	EventStageRecorded EventType = "stage_recorded"
	EventStageTick     EventType = "stage_tick"
	EventStageDone     EventType = "stage_done"
	EventCountdownTick EventType = "countdown_tick"
	EventAlarm         EventType = "alarm"
	EventAnalysis      EventType = "analysis"
)

// Event is published to a Sink while a process runs.
type Event struct {
	Type             EventType       `json:"type"`
	Stage            Stage           `json:"stage,omitempty"`
	Label            string          `json:"label,omitempty"`
	ElapsedSeconds   *int            `json:"elapsedSeconds,omitempty"`
	RemainingSeconds *int            `json:"remainingSeconds,omitempty"`
	Display          string          `json:"display,omitempty"`
	Alarm            *Alarm          `json:"alarm,omitempty"`
	Analysis         *AnalysisReport `json:"analysis,omitempty"`
	At               time.Time       `json:"at"`
}

// Sink receives process events. Publish must not block for long; it is
// called from timer goroutines.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

// Publish calls f(ev).
func (f SinkFunc) Publish(ev Event) { f(ev) }

type discardSink struct{}

func (discardSink) Publish(Event) {}

// Tone is one beep of an alarm sequence.
type Tone struct {
	FrequencyHz float64 `json:"frequencyHz"`
	Waveform    string  `json:"waveform"`
	Gain        float64 `json:"gain"`
	OffsetMs    int     `json:"offsetMs"`
	DurationMs  int     `json:"durationMs"`
}

// Notification is the desktop notification shown alongside an alarm.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Alarm describes what the browser plays when the boil countdown reaches zero.
type Alarm struct {
	Tones        []Tone       `json:"tones"`
	Notification Notification `json:"notification"`
}

// BoilAlarm returns the three-beep sequence fired at the end of a countdown.
func BoilAlarm() *Alarm {
	tones := make([]Tone, 3)
	for i := range tones {
		tones[i] = Tone{
			FrequencyHz: 800,
			Waveform:    "sine",
			Gain:        0.3,
			OffsetMs:    i * 600,
			DurationMs:  500,
		}
	}
	return &Alarm{
		Tones: tones,
		Notification: Notification{
			Title: "Pasta is ready!",
			Body:  "Press the pasta-up button",
		},
	}
}

func intPtr(v int) *int { return &v }
