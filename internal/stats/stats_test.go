package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency/pkg/domain"
)

var now = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type fakeReader struct {
	households    []domain.Household
	residents     []domain.Resident
	notifications []domain.Notification
}

func (f fakeReader) ListHouseholds() []domain.Household       { return f.households }
func (f fakeReader) ListResidents() []domain.Resident         { return f.residents }
func (f fakeReader) ListNotifications() []domain.Notification { return f.notifications }

func person(birth, gender string, householdID *string) domain.Resident {
	r := domain.Resident{ResidenceType: domain.ResidencePermanent, HouseholdID: householdID}
	if birth != "" {
		r.BirthDate = domain.Ptr(birth)
	}
	if gender != "" {
		r.Gender = domain.Ptr(gender)
	}
	return r
}

func TestComputeOverview(t *testing.T) {
	r := fakeReader{
		households: []domain.Household{
			{ID: "h1", HouseholdType: domain.HouseholdPermanent},
			{ID: "h2", HouseholdType: domain.HouseholdTemporary},
			{ID: "h3", HouseholdType: domain.HouseholdPermanent},
		},
		residents: []domain.Resident{
			{ResidenceType: domain.ResidencePermanent},
			{ResidenceType: domain.ResidenceTemporary},
			{},
		},
		notifications: []domain.Notification{
			{ID: "n1"},
			{ID: "n2", ExpiresAt: domain.Ptr(now.Add(time.Hour))},
			{ID: "n3", ExpiresAt: domain.Ptr(now.Add(-time.Hour))},
		},
	}
	o := ComputeOverview(r, now)
	assert.Equal(t, 3, o.TotalHouseholds)
	assert.Equal(t, 3, o.TotalResidents)
	assert.Equal(t, 2, o.TotalNotifications)
	assert.Equal(t, 2, o.PermanentHouseholds)
	assert.Equal(t, 1, o.TemporaryHouseholds)
	assert.Equal(t, []ResidenceTypeCount{{"permanent", 2}, {"temporary", 1}}, o.ByResidenceType)
}

func TestDemographicsBuckets(t *testing.T) {
	r := fakeReader{residents: []domain.Resident{
		person("2021-01-01", "Nam", nil), // 5
		person("2019-06-01", "Nữ", nil),  // 7
		person("2006-10-19", "Nam", nil), // 20
		person("2006-10-18", "Nữ", nil),  // 20
		person("1990-01-01", "Nam", nil), // 36
		person("1960-05-05", "", nil),    // 66
		person("", "Nam", nil),
		person("garbage", "Khác", nil),
	}}

	d := ComputeDemographics(r, now)
	assert.Equal(t, []AgeGroupCount{
		{"Dưới 6 tuổi", 1},
		{"6-14 tuổi", 1},
		{"18-34 tuổi", 2},
		{"35-59 tuổi", 1},
		{"60 tuổi trở lên", 1},
	}, d.AgeGroups)
	assert.Equal(t, []GenderCount{{"Nam", 4}, {"Nữ", 2}, {"Khác", 1}}, d.ByGender)

	s := ComputeDemographicStats(r, now)
	assert.Equal(t, []GroupCount{
		{"0-14", 2},
		{"15-24", 2},
		{"25-39", 1},
		{"40-54", 0},
		{"55-64", 0},
		{"65+", 1},
	}, s.AgeGroups)
	assert.Equal(t, GenderDistribution{Male: 4, Female: 2}, s.GenderDistribution)
}

func TestOccupationRanking(t *testing.T) {
	var residents []domain.Resident
	add := func(occupation string, n int) {
		for range n {
			residents = append(residents, domain.Resident{Occupation: domain.Ptr(occupation), Education: domain.Ptr("12/12")})
		}
	}
	add("Buôn bán", 2)
	add("Công nhân", 3)
	add("Giáo viên", 2)
	for i := range 10 {
		add(string(rune('A'+i)), 1)
	}
	residents = append(residents, domain.Resident{Occupation: domain.Ptr("")})

	d := ComputeDemographics(fakeReader{residents: residents}, now)
	require.Len(t, d.TopOccupations, TopOccupationsLimit)
	assert.Equal(t, OccupationCount{"Công nhân", 3}, d.TopOccupations[0])
	assert.Equal(t, OccupationCount{"Buôn bán", 2}, d.TopOccupations[1])
	assert.Equal(t, OccupationCount{"Giáo viên", 2}, d.TopOccupations[2])
	assert.Equal(t, OccupationCount{"A", 1}, d.TopOccupations[3])
	assert.Equal(t, []EducationCount{{"12/12", 17}}, d.ByEducation)
}

func TestHouseholdStats(t *testing.T) {
	h := func(id string, status domain.HouseholdStatus, area string) domain.Household {
		out := domain.Household{ID: id, HouseholdType: domain.HouseholdPermanent, HouseholdStatus: status}
		if area != "" {
			out.Area = domain.Ptr(area)
		}
		return out
	}
	r := fakeReader{
		households: []domain.Household{
			h("h1", domain.StatusNormal, "Tổ 1"),
			h("h2", domain.StatusPoor, "Tổ 2"),
			h("h3", domain.StatusPoor, "Tổ 2"),
			h("h4", "", ""),
		},
	}
	for range 1 {
		r.residents = append(r.residents, person("", "", domain.Ptr("h1")))
	}
	for range 4 {
		r.residents = append(r.residents, person("", "", domain.Ptr("h2")))
	}
	for range 8 {
		r.residents = append(r.residents, person("", "", domain.Ptr("h3")))
	}
	r.residents = append(r.residents, person("", "", nil))

	s := ComputeHouseholdStats(r)
	assert.Equal(t, []HouseholdTypeCount{{"permanent", 4}}, s.ByType)
	assert.Equal(t, []AreaCount{{"Tổ 2", 2}, {"Tổ 1", 1}, {UnclassifiedArea, 1}}, s.ByArea)
	assert.Equal(t, []StatusCount{{"normal", 2}, {"poor", 2}}, s.ByStatus)
	assert.Equal(t, []SizeGroupCount{
		{"1 người", 1},
		{"2 người", 0},
		{"3-4 người", 1},
		{"5-6 người", 0},
		{"7+ người", 1},
	}, s.SizeDistribution, "h4 has no members and is left out")
}

func TestTimeline(t *testing.T) {
	at := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}
	assert.Equal(t, at("2025-10-01T00:00:00Z"), TimelineStart(now))

	r := fakeReader{
		residents: []domain.Resident{
			{CreatedAt: at("2025-09-30T23:59:59Z")},
			{CreatedAt: at("2025-10-01T00:00:00Z")},
			{CreatedAt: at("2026-03-15T08:00:00Z")},
			{CreatedAt: at("2026-03-16T08:00:00Z")},
		},
		households: []domain.Household{
			{CreatedAt: at("2026-01-02T00:00:00Z")},
			{CreatedAt: at("2026-03-01T00:00:00Z")},
		},
	}
	tl := ComputeTimeline(r, now)
	assert.Equal(t, []PeriodCount{{"2025-10", 1}, {"2026-03", 2}}, tl.Residents)
	assert.Equal(t, []PeriodCount{{"2026-01", 1}, {"2026-03", 1}}, tl.Households)
	assert.Equal(t, []DensePoint{
		{Period: "2025-10", Residents: 1},
		{Period: "2026-01", Households: 1},
		{Period: "2026-03", Residents: 2, Households: 1},
	}, tl.Dense())

	empty := ComputeTimeline(fakeReader{}, now)
	assert.NotNil(t, empty.Residents)
	assert.Empty(t, empty.Dense())
}
