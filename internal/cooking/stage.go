// Package cooking tracks the stages of one pasta cooking session: stage
// timestamps, live stage stopwatches, the boil countdown and its alarm, and
// the durations derived once a session is complete.
package cooking

import (
	"pasta-logger/internal/model"
)

// Stage is a named milestone of the cooking process.
type Stage string

const (
	SauceStart   Stage = "sauce_start"
	PastaStart   Stage = "pasta_start"
	SauceFinish  Stage = "sauce_finish"
	PastaFinish  Stage = "pasta_finish"
	CombineStart Stage = "combine_start"
	Completion   Stage = "completion"
)

// Stages lists every stage in the order they appear on the form.
var Stages = []Stage{SauceStart, PastaStart, PastaFinish, SauceFinish, CombineStart, Completion}

// stopwatch describes the live timer that runs from a start stage until its end stage.
type stopwatch struct {
	end   Stage
	label string
}

var stopwatches = map[Stage]stopwatch{
	SauceStart:   {end: SauceFinish, label: "sauce"},
	PastaStart:   {end: PastaFinish, label: "boil"},
	CombineStart: {end: Completion, label: "combine"},
}

// startOf maps an end stage back to the start stage whose stopwatch it stops.
var startOf = map[Stage]Stage{
	SauceFinish: SauceStart,
	PastaFinish: PastaStart,
	Completion:  CombineStart,
}

var stageLabels = map[Stage]string{
	SauceStart:   "Sauce start",
	PastaStart:   "Pasta in",
	PastaFinish:  "Pasta up",
	SauceFinish:  "Sauce done",
	CombineStart: "Combine start",
	Completion:   "Done",
}

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if _, ok := stageLabels[st]; !ok {
		return "", model.ErrUnknownStage
	}
	return st, nil
}

// Label returns the button label of the stage.
func (s Stage) Label() string {
	return stageLabels[s]
}

// Mark is one of the three legacy timestamps kept on every log entry.
type Mark string

const (
	MarkBoilStart  Mark = "B"
	MarkUp         Mark = "U"
	MarkCombineEnd Mark = "C"
)

var markStages = map[Mark]Stage{
	MarkBoilStart:  PastaStart,
	MarkUp:         PastaFinish,
	MarkCombineEnd: CombineStart,
}

// ParseMark validates a legacy mark name.
func ParseMark(s string) (Mark, error) {
	m := Mark(s)
	if _, ok := markStages[m]; !ok {
		return "", model.ErrUnknownStage
	}
	return m, nil
}

// Stage returns the process stage a legacy mark stands for.
func (m Mark) Stage() Stage {
	return markStages[m]
}
