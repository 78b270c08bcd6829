package stats

import (
	"time"

	"residency/pkg/domain"
)

// GenderCount is one bar of the gender breakdown.
type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// AgeGroupCount is one bar of the dashboard age histogram.
type AgeGroupCount struct {
	AgeGroup string `json:"age_group"`
	Count    int    `json:"count"`
}

// GroupCount is one bar of the demographic-stats age histogram.
type GroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// OccupationCount is one entry of the occupation ranking.
type OccupationCount struct {
	Occupation string `json:"occupation"`
	Count      int    `json:"count"`
}

// EducationCount is one bar of the education breakdown.
type EducationCount struct {
	Education string `json:"education"`
	Count     int    `json:"count"`
}

// Demographics is the dashboard breakdown. Empty age buckets are omitted.
type Demographics struct {
	ByGender       []GenderCount     `json:"byGender"`
	AgeGroups      []AgeGroupCount   `json:"ageGroups"`
	TopOccupations []OccupationCount `json:"topOccupations"`
	ByEducation    []EducationCount  `json:"byEducation"`
}

// GenderDistribution counts the two recorded genders.
type GenderDistribution struct {
	Male   int `json:"Nam"`
	Female int `json:"Nữ"`
}

// DemographicStats is the report breakdown. All six age buckets are listed.
type DemographicStats struct {
	AgeGroups          []GroupCount       `json:"ageGroups"`
	GenderDistribution GenderDistribution `json:"genderDistribution"`
	TopOccupations     []OccupationCount  `json:"topOccupations"`
	ByEducation        []EducationCount   `json:"byEducation"`
}

type bucket struct {
	label string
	below int
}

// dashboardBuckets: <6, 6-14, 15-17, 18-34, 35-59, 60+.
var dashboardBuckets = []bucket{
	{"Dưới 6 tuổi", 6},
	{"6-14 tuổi", 15},
	{"15-17 tuổi", 18},
	{"18-34 tuổi", 35},
	{"35-59 tuổi", 60},
	{"60 tuổi trở lên", -1},
}

// reportBuckets: 0-14, 15-24, 25-39, 40-54, 55-64, 65+.
var reportBuckets = []bucket{
	{"0-14", 15},
	{"15-24", 25},
	{"25-39", 40},
	{"40-54", 55},
	{"55-64", 65},
	{"65+", -1},
}

// histogram places each known age in the first bucket whose bound exceeds it.
func histogram(residents []domain.Resident, buckets []bucket, now time.Time) []int {
	counts := make([]int, len(buckets))
	for _, r := range residents {
		age, ok := domain.AgeAt(r.BirthDate, now)
		if !ok {
			continue
		}
		for i, b := range buckets {
			if b.below < 0 || age < b.below {
				counts[i]++
				break
			}
		}
	}
	return counts
}

func occupationsAndEducation(residents []domain.Resident) ([]OccupationCount, []EducationCount) {
	occupations := newTally()
	education := newTally()
	for _, r := range residents {
		occupations.addPresent(r.Occupation)
		education.addPresent(r.Education)
	}
	top := mapEntries(occupations.ranked(TopOccupationsLimit), func(k string, c int) OccupationCount {
		return OccupationCount{Occupation: k, Count: c}
	})
	edu := mapEntries(education.entries(), func(k string, c int) EducationCount {
		return EducationCount{Education: k, Count: c}
	})
	return top, edu
}

// ComputeDemographics builds the dashboard breakdown.
func ComputeDemographics(r Reader, now time.Time) Demographics {
	residents := r.ListResidents()

	genders := newTally()
	for _, res := range residents {
		genders.addPresent(res.Gender)
	}

	out := Demographics{
		ByGender: mapEntries(genders.entries(), func(k string, c int) GenderCount {
			return GenderCount{Gender: k, Count: c}
		}),
		AgeGroups: make([]AgeGroupCount, 0, len(dashboardBuckets)),
	}
	for i, c := range histogram(residents, dashboardBuckets, now) {
		if c > 0 {
			out.AgeGroups = append(out.AgeGroups, AgeGroupCount{AgeGroup: dashboardBuckets[i].label, Count: c})
		}
	}
	out.TopOccupations, out.ByEducation = occupationsAndEducation(residents)
	return out
}

// ComputeDemographicStats builds the report breakdown.
func ComputeDemographicStats(r Reader, now time.Time) DemographicStats {
	residents := r.ListResidents()

	out := DemographicStats{AgeGroups: make([]GroupCount, 0, len(reportBuckets))}
	for i, c := range histogram(residents, reportBuckets, now) {
		out.AgeGroups = append(out.AgeGroups, GroupCount{Group: reportBuckets[i].label, Count: c})
	}
	for _, res := range residents {
		switch domain.Deref(res.Gender) {
		case "Nam":
			out.GenderDistribution.Male++
		case "Nữ":
			out.GenderDistribution.Female++
		}
	}
	out.TopOccupations, out.ByEducation = occupationsAndEducation(residents)
	return out
}
