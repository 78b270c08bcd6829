// Package stats computes aggregate views over a store generation. Nothing is
// cached: every call recomputes from the records it is handed. Records with a
// missing optional field are left out of the breakdown that needs it.
package stats

import (
	"sort"

	"residency/pkg/domain"
)

// Reader is the read surface the aggregator needs from the store.
type Reader interface {
	ListHouseholds() []domain.Household
	ListResidents() []domain.Resident
	ListNotifications() []domain.Notification
}

// TopOccupationsLimit bounds the occupation ranking.
const TopOccupationsLimit = 10

// tally counts keys and remembers first-seen order.
type tally struct {
	keys   []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key]++
}

func (t *tally) addPresent(key *string) {
	if key != nil && *key != "" {
		t.add(*key)
	}
}

type entry struct {
	key   string
	count int
}

func (t *tally) entries() []entry {
	out := make([]entry, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, entry{key: k, count: t.counts[k]})
	}
	return out
}

// ranked returns entries by count descending, first-seen order on ties.
func (t *tally) ranked(limit int) []entry {
	out := t.entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func mapEntries[T any](in []entry, fn func(key string, count int) T) []T {
	out := make([]T, 0, len(in))
	for _, e := range in {
		out = append(out, fn(e.key, e.count))
	}
	return out
}
