package driven

// ProgressReporter receives progress of long-running pipeline steps.
// Implementations must tolerate Advance calls after Done.
type ProgressReporter interface {
	// Start begins a named step with total units of work.
	Start(step string, total int)

	// Advance marks n units complete; detail names the current item.
	Advance(n int, detail string)

	// Done finishes the current step.
	Done()
}

// NopProgress discards all progress updates.
type NopProgress struct{}

// Start implements ProgressReporter.
func (NopProgress) Start(string, int) {}

// Advance implements ProgressReporter.
func (NopProgress) Advance(int, string) {}

// Done implements ProgressReporter.
func (NopProgress) Done() {}
