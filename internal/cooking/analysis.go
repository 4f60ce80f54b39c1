package cooking

import "time"

// Analysis holds the durations derived from recorded stage times. A nil
// field means the stages it needs are not both recorded.
type Analysis struct {
	SauceWait       *time.Duration
	PastaWait       *time.Duration
	CombineDuration *time.Duration
	Total           *time.Duration
}

// AnalysisReport is the display form of an Analysis.
type AnalysisReport struct {
	SauceWaitSeconds       *int   `json:"sauceWaitSeconds,omitempty"`
	PastaWaitSeconds       *int   `json:"pastaWaitSeconds,omitempty"`
	CombineDurationSeconds *int   `json:"combineDurationSeconds,omitempty"`
	TotalSeconds           *int   `json:"totalSeconds,omitempty"`
	SauceWait              string `json:"sauceWait,omitempty"`
	PastaWait              string `json:"pastaWait,omitempty"`
	CombineDuration        string `json:"combineDuration,omitempty"`
	Total                  string `json:"total,omitempty"`
}

// StageDuration returns end minus start when both stages are recorded.
func StageDuration(times map[Stage]time.Time, start, end Stage) (time.Duration, bool) {
	s, ok := times[start]
	if !ok {
		return 0, false
	}
	e, ok := times[end]
	if !ok {
		return 0, false
	}
	return e.Sub(s), true
}

// Analyze derives the wait and cook durations of a session.
//
// Sauce wait is how long the finished sauce waited for the pasta; it is zero
// when the pasta came up first.
func Analyze(times map[Stage]time.Time) Analysis {
	var a Analysis
	if d, ok := StageDuration(times, SauceFinish, PastaFinish); ok {
		d = max(d, 0)
		a.SauceWait = &d
	}
	if d, ok := StageDuration(times, PastaFinish, CombineStart); ok {
		a.PastaWait = &d
	}
	if d, ok := StageDuration(times, CombineStart, Completion); ok {
		a.CombineDuration = &d
	}
	if d, ok := StageDuration(times, SauceStart, Completion); ok {
		a.Total = &d
	}
	return a
}

// AnalyzeStored analyzes stage times as persisted on a log entry. Unknown
// stage names are ignored.
func AnalyzeStored(times map[string]time.Time) Analysis {
	typed := make(map[Stage]time.Time, len(times))
	for name, at := range times {
		if st, err := ParseStage(name); err == nil {
			typed[st] = at
		}
	}
	return Analyze(typed)
}

// Empty reports whether no duration could be derived.
func (a Analysis) Empty() bool {
	return a.SauceWait == nil && a.PastaWait == nil && a.CombineDuration == nil && a.Total == nil
}

// Report converts the analysis to whole seconds and display strings.
func (a Analysis) Report() AnalysisReport {
	var r AnalysisReport
	fill := func(d *time.Duration, secs **int, text *string) {
		if d == nil {
			return
		}
		*secs = intPtr(int(*d / time.Second))
		*text = FormatMinutesSeconds(*d)
	}
	fill(a.SauceWait, &r.SauceWaitSeconds, &r.SauceWait)
	fill(a.PastaWait, &r.PastaWaitSeconds, &r.PastaWait)
	fill(a.CombineDuration, &r.CombineDurationSeconds, &r.CombineDuration)
	fill(a.Total, &r.TotalSeconds, &r.Total)
	return r
}
