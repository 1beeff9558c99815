// Package metrics records pipeline run statistics.
package metrics

import "time"

// Recorder receives pipeline events.
type Recorder interface {
	// ObservePeriod records one parsed period.
	ObservePeriod(label, header, period string, records int)

	// ObserveLookup records the outcome of one disambiguation key.
	ObserveLookup(outcome string, elapsed time.Duration)

	// IncLookupRetry counts a directory lookup retry.
	IncLookupRetry()

	// ObserveFetch records a document download.
	ObserveFetch(service string, elapsed time.Duration, err error)

	// ObserveRun records the end of a pipeline run.
	ObserveRun(elapsed time.Duration, err error)
}

// NopRecorder discards everything.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

// NewNop creates a no-op recorder.
func NewNop() NopRecorder {
	return NopRecorder{}
}

// ObservePeriod discards the period metric.
func (NopRecorder) ObservePeriod(_, _, _ string, _ int) {}

// ObserveLookup discards the lookup metric.
func (NopRecorder) ObserveLookup(_ string, _ time.Duration) {}

// IncLookupRetry discards the retry counter.
func (NopRecorder) IncLookupRetry() {}

// ObserveFetch discards the fetch metric.
func (NopRecorder) ObserveFetch(_ string, _ time.Duration, _ error) {}

// ObserveRun discards the run metric.
func (NopRecorder) ObserveRun(_ time.Duration, _ error) {}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
