package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call made against a MemoryAPI.
type Report struct {
	// Kind is one of "broken", "warning", "debug" or "count".
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// MemoryAPI records every report in memory, it is meant to be handed to
// components under test so that their fault reporting can be asserted on.
type MemoryAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{}
}

func (m *MemoryAPI) record(r Report) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reports = append(m.reports, r)
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.record(Report{Kind: "broken", ID: id, Params: params})
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.record(Report{Kind: "warning", ID: id, Params: params})
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.record(Report{Kind: "debug", ID: msg, Params: params})
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.record(Report{Kind: "count", ID: id, Count: count})
}

// Reports returns a copy of all the reports of the given kind, an empty kind
// returns every report.
func (m *MemoryAPI) Reports(kind string) []Report {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var out []Report
	for _, r := range m.reports {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Has reports whether a report of the given kind exists whose id ends with
// the given suffix, scoped ids are prefixed with their namespace.
func (m *MemoryAPI) Has(kind, idSuffix string) bool {
	for _, r := range m.Reports(kind) {
		if strings.HasSuffix(r.ID, idSuffix) {
			return true
		}
	}
	return false
}
