package analysis

import (
	"sort"
	"strings"
	"sync"
)

// FunctionUsage counts the calls of one parser function.
type FunctionUsage struct {
	TimesUsed  int      `json:"timesUsed"`
	FromTables []string `json:"fromTables"`
}

// Statistics aggregates parser-function usage by receiver type and name.
type Statistics struct {
	mu    sync.Mutex
	usage map[string]map[string]*FunctionUsage
}

// NewStatistics creates an empty collector.
func NewStatistics() *Statistics {
	return &Statistics{usage: make(map[string]map[string]*FunctionUsage)}
}

// Collect records one call. firstArg is the text of the first argument,
// which for table functions names the table.
func (s *Statistics) Collect(receiver, function, firstArg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fns := s.usage[receiver]
	if fns == nil {
		fns = make(map[string]*FunctionUsage)
		s.usage[receiver] = fns
	}

	u := fns[function]
	if u == nil {
		u = &FunctionUsage{}
		fns[function] = u
	}
	u.TimesUsed++

	firstArg = strings.TrimSpace(firstArg)
	if firstArg == "" {
		return
	}
	for _, t := range u.FromTables {
		if t == firstArg {
			return
		}
	}
	u.FromTables = append(u.FromTables, firstArg)
}

// Usage returns a copy of the collected counts.
func (s *Statistics) Usage() map[string]map[string]FunctionUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]map[string]FunctionUsage, len(s.usage))
	for receiver, fns := range s.usage {
		m := make(map[string]FunctionUsage, len(fns))
		for name, u := range fns {
			m[name] = FunctionUsage{
				TimesUsed:  u.TimesUsed,
				FromTables: append([]string(nil), u.FromTables...),
			}
		}
		out[receiver] = m
	}

	return out
}

// Receivers lists the receivers with recorded calls, sorted.
func (s *Statistics) Receivers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.usage))
	for r := range s.usage {
		names = append(names, r)
	}
	sort.Strings(names)

	return names
}
