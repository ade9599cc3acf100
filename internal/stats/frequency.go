// Package stats computes distributions over table columns and token streams:
// value counts, equal-width histogram buckets, moment summaries and kernel
// density estimates.
package stats

import "sort"

// Entry is one key of a FrequencyMap with its count.
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// FrequencyMap is an immutable key to count map ordered by descending count,
// ties broken by first-seen order.
type FrequencyMap struct {
	entries []Entry
	index   map[string]int
	total   int
}

// Len returns the number of distinct keys.
func (m *FrequencyMap) Len() int { return len(m.entries) }

// Total returns the sum of all counts.
func (m *FrequencyMap) Total() int { return m.total }

// Count returns the count for key, zero when absent.
func (m *FrequencyMap) Count(key string) int {
	if i, ok := m.index[key]; ok {
		return m.entries[i].Count
	}
	return 0
}

// Max returns the largest count, zero for an empty map.
func (m *FrequencyMap) Max() int {
	if len(m.entries) == 0 {
		return 0
	}
	return m.entries[0].Count
}

// Entries returns the ordered entries.
func (m *FrequencyMap) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Top returns at most n leading entries.
func (m *FrequencyMap) Top(n int) []Entry {
	if n <= 0 || n > len(m.entries) {
		n = len(m.entries)
	}
	out := make([]Entry, n)
	copy(out, m.entries[:n])
	return out
}

// Counter accumulates counts and remembers first-seen order.
type Counter struct {
	order  []string
	counts map[string]int
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add increments key by one.
func (c *Counter) Add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Freeze builds the ordered FrequencyMap. The counter may keep being used.
func (c *Counter) Freeze() *FrequencyMap {
	m := &FrequencyMap{
		entries: make([]Entry, len(c.order)),
		index:   make(map[string]int, len(c.order)),
	}
	for i, key := range c.order {
		m.entries[i] = Entry{Key: key, Count: c.counts[key]}
		m.total += c.counts[key]
	}
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].Count > m.entries[j].Count
	})
	for i, e := range m.entries {
		m.index[e.Key] = i
	}
	return m
}
