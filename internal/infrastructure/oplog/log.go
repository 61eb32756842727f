// Package oplog is the append-only audit trail of every attempted action in
// a campaign, with derived summary statistics.
package oplog

import (
	"sync"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Log implements ports.OperationsLog. Records are immutable after append;
// the slice is only ever grown under the lock. An optional persistent store
// mirrors each record best-effort.
type Log struct {
	mu      sync.RWMutex
	records []domain.OperationRecord
	store   *SQLiteStore
}

// New creates an in-memory log. store may be nil.
func New(store *SQLiteStore) *Log {
	return &Log{store: store}
}

// Append adds a record to the trail. The in-memory log is authoritative; a
// failed persistence write is ignored.
func (l *Log) Append(record domain.OperationRecord) {
	l.mu.Lock()
	l.records = append(l.records, record)
	l.mu.Unlock()

	if l.store != nil {
		_ = l.store.Save(record)
	}
}

// Records returns a copy of the full audit trail in append order.
func (l *Log) Records() []domain.OperationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.OperationRecord(nil), l.records...)
}

// ByPhase returns records tagged with the given phase, in append order.
func (l *Log) ByPhase(phase domain.Phase) []domain.OperationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.OperationRecord
	for _, rec := range l.records {
		if rec.Phase == phase {
			out = append(out, rec)
		}
	}
	return out
}

// Summary scans the log and registry and derives aggregate statistics. It is
// computed fresh on every call so it is always consistent with current state.
func (l *Log) Summary(reg ports.TargetRegistry) domain.OperationSummary {
	l.mu.RLock()
	records := append([]domain.OperationRecord(nil), l.records...)
	l.mu.RUnlock()

	summary := domain.OperationSummary{TotalOperations: len(records)}

	seen := make(map[domain.Phase]struct{})
	for _, rec := range records {
		if rec.Succeeded() {
			summary.SuccessfulOperations++
		}
		summary.TotalOutputBytes += int64(rec.OutputBytes)
		if _, ok := seen[rec.Phase]; !ok {
			seen[rec.Phase] = struct{}{}
			summary.PhasesSeen = append(summary.PhasesSeen, rec.Phase)
		}
	}

	if reg != nil {
		summary.TargetsIdentified = reg.Len()
		for _, addr := range reg.Addrs() {
			target, ok := reg.Get(addr)
			if !ok {
				continue
			}
			summary.TotalVulnerabilities += len(target.Vulnerabilities())
			if target.Exploited() {
				summary.TargetsCompromised++
				summary.CompromisedAddrs = append(summary.CompromisedAddrs, addr)
			}
		}
	}
	return summary
}

var _ ports.OperationsLog = (*Log)(nil)
