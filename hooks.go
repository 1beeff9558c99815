package grao

import (
	"sync"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/tables"
)

// Hook function types for pipeline events
type (
	// PeriodParsedHook is called after a period has been parsed and assembled
	PeriodParsedHook func(d layout.Descriptor, records []tables.FullRecord)

	// KeyProcessedHook is called once for every settlement key of a run
	KeyProcessedHook func(outcome disambiguation.Outcome, elapsed time.Duration)
)

// hooks manages event callbacks
type hooks struct {
	mu             sync.RWMutex
	onPeriodParsed []PeriodParsedHook
	onKeyProcessed []KeyProcessedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnPeriodParsed registers a callback for parsed periods
func (h *hooks) OnPeriodParsed(fn PeriodParsedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPeriodParsed = append(h.onPeriodParsed, fn)
}

// OnKeyProcessed registers a callback for settlement keys
func (h *hooks) OnKeyProcessed(fn KeyProcessedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onKeyProcessed = append(h.onKeyProcessed, fn)
}

func (h *hooks) periodParsed(d layout.Descriptor, records []tables.FullRecord) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onPeriodParsed {
		fn(d, records)
	}
}

func (h *hooks) keyProcessed(o disambiguation.Outcome, elapsed time.Duration) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onKeyProcessed {
		fn(o, elapsed)
	}
}
