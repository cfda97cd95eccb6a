// Package messages defines Bubbletea message types for the progress display.
// Each message mirrors one call on a driven.ProgressReporter.
package messages

// StepStarted begins a named step with Total units of work.
type StepStarted struct {
	Step  string
	Total int
}

// StepAdvanced marks N more units complete.
type StepAdvanced struct {
	N      int
	Detail string
}

// StepFinished ends the current step.
type StepFinished struct{}

// RunFinished is sent once the wrapped work returns.
type RunFinished struct {
	Err error
}
