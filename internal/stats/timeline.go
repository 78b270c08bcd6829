package stats

import (
	"sort"
	"time"
)

// PeriodCount is the number of records created in a calendar month.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// Timeline holds monthly creation counts for the trailing year. Months
// without creations are absent from a series.
type Timeline struct {
	Residents  []PeriodCount `json:"residents"`
	Households []PeriodCount `json:"households"`
}

// DensePoint is one month of the zero-filled union of both series.
type DensePoint struct {
	Period     string `json:"period"`
	Residents  int    `json:"residents"`
	Households int    `json:"households"`
}

const periodLayout = "2006-01"

// TimelineStart is the first instant counted: the first day of the same
// month one year before now, in UTC.
func TimelineStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year()-1, now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ComputeTimeline buckets creation timestamps by year-month.
func ComputeTimeline(r Reader, now time.Time) Timeline {
	start := TimelineStart(now)

	residents := make([]time.Time, 0)
	for _, res := range r.ListResidents() {
		residents = append(residents, res.CreatedAt)
	}
	households := make([]time.Time, 0)
	for _, h := range r.ListHouseholds() {
		households = append(households, h.CreatedAt)
	}
	return Timeline{
		Residents:  series(residents, start),
		Households: series(households, start),
	}
}

func series(stamps []time.Time, start time.Time) []PeriodCount {
	counts := newTally()
	for _, ts := range stamps {
		if ts.Before(start) {
			continue
		}
		counts.add(ts.UTC().Format(periodLayout))
	}
	out := mapEntries(counts.entries(), func(k string, c int) PeriodCount {
		return PeriodCount{Period: k, Count: c}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// Dense unions the month keys of both series and fills gaps with zero.
func (t Timeline) Dense() []DensePoint {
	points := make(map[string]*DensePoint)
	get := func(period string) *DensePoint {
		p, ok := points[period]
		if !ok {
			p = &DensePoint{Period: period}
			points[period] = p
		}
		return p
	}
	for _, pc := range t.Residents {
		get(pc.Period).Residents = pc.Count
	}
	for _, pc := range t.Households {
		get(pc.Period).Households = pc.Count
	}
	out := make([]DensePoint, 0, len(points))
	for _, p := range points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}
