package stats

import (
	"sort"

	"residency/pkg/domain"
)

// UnclassifiedArea labels households without an area.
const UnclassifiedArea = "Chưa phân loại"

// HouseholdTypeCount is one bar of the type breakdown.
type HouseholdTypeCount struct {
	HouseholdType string `json:"household_type"`
	Count         int    `json:"count"`
}

// AreaCount is one bar of the area breakdown.
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// SizeGroupCount is one bar of the household-size histogram.
type SizeGroupCount struct {
	SizeGroup string `json:"size_group"`
	Count     int    `json:"count"`
}

// StatusCount is one bar of the status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// HouseholdStats is the household composition report.
type HouseholdStats struct {
	ByType           []HouseholdTypeCount `json:"byType"`
	ByArea           []AreaCount          `json:"byArea"`
	SizeDistribution []SizeGroupCount     `json:"sizeDistribution"`
	ByStatus         []StatusCount        `json:"byStatus"`
}

var sizeGroups = []bucket{
	{"1 người", 2},
	{"2 người", 3},
	{"3-4 người", 5},
	{"5-6 người", 7},
	{"7+ người", -1},
}

// ComputeHouseholdStats builds the composition report. Households without
// members are left out of the size histogram.
func ComputeHouseholdStats(r Reader) HouseholdStats {
	households := r.ListHouseholds()

	sizes := make(map[string]int, len(households))
	for _, res := range r.ListResidents() {
		if res.HouseholdID != nil {
			sizes[*res.HouseholdID]++
		}
	}

	types, areas, statuses := newTally(), newTally(), newTally()
	sizeCounts := make([]int, len(sizeGroups))
	for _, h := range households {
		t := string(h.HouseholdType)
		if t == "" {
			t = string(domain.HouseholdPermanent)
		}
		types.add(t)

		area := domain.Deref(h.Area)
		if area == "" {
			area = UnclassifiedArea
		}
		areas.add(area)

		s := string(h.HouseholdStatus)
		if s == "" {
			s = string(domain.StatusNormal)
		}
		statuses.add(s)

		size := sizes[h.ID]
		if size == 0 {
			continue
		}
		for i, g := range sizeGroups {
			if g.below < 0 || size < g.below {
				sizeCounts[i]++
				break
			}
		}
	}

	out := HouseholdStats{
		ByType: mapEntries(types.entries(), func(k string, c int) HouseholdTypeCount {
			return HouseholdTypeCount{HouseholdType: k, Count: c}
		}),
		ByArea: mapEntries(areas.entries(), func(k string, c int) AreaCount {
			return AreaCount{Area: k, Count: c}
		}),
		ByStatus: mapEntries(statuses.entries(), func(k string, c int) StatusCount {
			return StatusCount{Status: k, Count: c}
		}),
		SizeDistribution: make([]SizeGroupCount, 0, len(sizeGroups)),
	}
	sort.SliceStable(out.ByArea, func(i, j int) bool { return out.ByArea[i].Count > out.ByArea[j].Count })
	for i, g := range sizeGroups {
		out.SizeDistribution = append(out.SizeDistribution, SizeGroupCount{SizeGroup: g.label, Count: sizeCounts[i]})
	}
	return out
}
