package stats

import (
	"sync/atomic"
	"time"
)

// Collector holds the pipeline's observability counters. It is explicitly
// owned and injected into the pipeline rather than being process-wide state,
// so tests can run pipelines with their own collectors.
type Collector struct {
	MessagesProcessed   uint64
	MessagesAllowed     uint64
	MessagesRedacted    uint64
	MessagesBlocked     uint64
	FallbackEngaged     uint64
	ClassifierErrors    uint64
	AttachmentsAnalyzed uint64
	PersistenceFailures uint64
	BidsSaved           uint64
	startTime           time.Time
}

func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) IncProcessed() { atomic.AddUint64(&c.MessagesProcessed, 1) }
func (c *Collector) IncAllowed() { atomic.AddUint64(&c.MessagesAllowed, 1) }
func (c *Collector) IncRedacted() { atomic.AddUint64(&c.MessagesRedacted, 1) }
func (c *Collector) IncBlocked() { atomic.AddUint64(&c.MessagesBlocked, 1) }
func (c *Collector) IncFallback() { atomic.AddUint64(&c.FallbackEngaged, 1) }
func (c *Collector) IncClassifierError() { atomic.AddUint64(&c.ClassifierErrors, 1) }
func (c *Collector) IncAttachmentAnalyzed() { atomic.AddUint64(&c.AttachmentsAnalyzed, 1) }
func (c *Collector) IncPersistenceFailure() { atomic.AddUint64(&c.PersistenceFailures, 1) }
func (c *Collector) IncBidSaved() { atomic.AddUint64(&c.BidsSaved, 1) }

// Snapshot returns the current counter values for the metrics endpoint.
func (c *Collector) Snapshot() map[string]any {
	return map[string]any{
		"messages_processed":   atomic.LoadUint64(&c.MessagesProcessed),
		"messages_allowed":     atomic.LoadUint64(&c.MessagesAllowed),
		"messages_redacted":    atomic.LoadUint64(&c.MessagesRedacted),
		"messages_blocked":     atomic.LoadUint64(&c.MessagesBlocked),
		"fallback_engaged":     atomic.LoadUint64(&c.FallbackEngaged),
		"classifier_errors":    atomic.LoadUint64(&c.ClassifierErrors),
		"attachments_analyzed": atomic.LoadUint64(&c.AttachmentsAnalyzed),
		"persistence_failures": atomic.LoadUint64(&c.PersistenceFailures),
		"bids_saved":           atomic.LoadUint64(&c.BidsSaved),
		"uptime_seconds":       time.Since(c.startTime).Seconds(),
	}
}
