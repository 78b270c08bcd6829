package query

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"residency/pkg/domain"
)

// ResidentFilter narrows a resident listing. Empty fields do not filter.
type ResidentFilter struct {
	Search        string               `json:"search"`
	Gender        string               `json:"gender"`
	ResidenceType domain.ResidenceType `json:"residenceType"`
	HouseholdID   string               `json:"householdId"`
}

// ResidentRow is a resident with its household resolved and age computed.
// CurrentAddress falls back to the household address.
type ResidentRow struct {
	domain.Resident
	HouseholdCode    *string `json:"household_code"`
	HouseholdAddress *string `json:"household_address"`
	Age              *int    `json:"age"`
}

func residentRow(r domain.Resident, h *domain.Household, now time.Time) ResidentRow {
	row := ResidentRow{Resident: r, Age: domain.AgePtr(r.BirthDate, now)}
	if h != nil {
		row.HouseholdCode = domain.Ptr(h.HouseholdCode)
		row.HouseholdAddress = domain.Ptr(h.Address)
	}
	if domain.Deref(row.CurrentAddress) == "" {
		row.CurrentAddress = row.HouseholdAddress
	}
	return row
}

func (f ResidentFilter) matches(r domain.Resident, m *matcher) bool {
	if f.Gender != "" && domain.Deref(r.Gender) != f.Gender {
		return false
	}
	if f.ResidenceType != "" && r.ResidenceType != f.ResidenceType {
		return false
	}
	if f.HouseholdID != "" && !r.InHousehold(f.HouseholdID) {
		return false
	}
	return m.any(&r.FullName, r.IDNumber, r.Phone)
}

// Residents returns matching residents, heads first and then by name in
// Vietnamese collation. Equal names keep insertion order.
func Residents(r Reader, f ResidentFilter, now time.Time) []ResidentRow {
	households := make(map[string]domain.Household)
	for _, h := range r.ListHouseholds() {
		households[h.ID] = h
	}
	m := newMatcher(f.Search)

	rows := make([]ResidentRow, 0)
	for _, res := range r.ListResidents() {
		if !f.matches(res, m) {
			continue
		}
		var hp *domain.Household
		if res.HouseholdID != nil {
			if h, ok := households[*res.HouseholdID]; ok {
				hp = &h
			}
		}
		rows = append(rows, residentRow(res, hp, now))
	}
	sortResidents(rows)
	return rows
}

func sortResidents(rows []ResidentRow) {
	col := collate.New(language.Vietnamese)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IsHouseholdHead != b.IsHouseholdHead {
			return a.IsHouseholdHead
		}
		return col.CompareString(a.FullName, b.FullName) < 0
	})
}

// Resident returns one resident with derived fields.
func Resident(r Reader, id string, now time.Time) (ResidentRow, bool) {
	res, ok := r.FindResident(id)
	if !ok {
		return ResidentRow{}, false
	}
	var hp *domain.Household
	if res.HouseholdID != nil {
		if h, found := r.FindHousehold(*res.HouseholdID); found {
			hp = &h
		}
	}
	return residentRow(res, hp, now), true
}
