package query

import (
	"sort"
	"time"

	"residency/pkg/domain"
)

// HouseholdFilter narrows a household listing. Empty fields do not filter.
type HouseholdFilter struct {
	Search string                 `json:"search"`
	Area   string                 `json:"area"`
	Type   domain.HouseholdType   `json:"type"`
	Status domain.HouseholdStatus `json:"status"`
}

// HouseholdRow is a household with its live member count and head name.
type HouseholdRow struct {
	domain.Household
	MemberCount int     `json:"member_count"`
	HeadName    *string `json:"head_name"`
}

// HouseholdDetail adds the member list, heads first.
type HouseholdDetail struct {
	HouseholdRow
	Members []ResidentRow `json:"members"`
}

type membership struct {
	count int
	head  *string
}

func memberships(residents []domain.Resident) map[string]membership {
	out := make(map[string]membership)
	for _, r := range residents {
		if r.HouseholdID == nil {
			continue
		}
		m := out[*r.HouseholdID]
		m.count++
		if r.IsHouseholdHead && m.head == nil {
			m.head = domain.Ptr(r.FullName)
		}
		out[*r.HouseholdID] = m
	}
	return out
}

func householdRow(h domain.Household, members map[string]membership) HouseholdRow {
	m := members[h.ID]
	return HouseholdRow{Household: h, MemberCount: m.count, HeadName: m.head}
}

// Matches reports whether h satisfies every set criterion.
func (f HouseholdFilter) Matches(h domain.Household) bool {
	return f.matches(h, newMatcher(f.Search))
}

func (f HouseholdFilter) matches(h domain.Household, m *matcher) bool {
	if f.Area != "" && domain.Deref(h.Area) != f.Area {
		return false
	}
	if f.Type != "" && h.HouseholdType != f.Type {
		return false
	}
	if f.Status != "" && h.HouseholdStatus != f.Status {
		return false
	}
	return m.any(&h.HouseholdCode, &h.Address, h.HouseNumber)
}

// Households returns matching households, newest first.
func Households(r Reader, f HouseholdFilter) []HouseholdRow {
	members := memberships(r.ListResidents())
	m := newMatcher(f.Search)

	rows := make([]HouseholdRow, 0)
	for _, h := range r.ListHouseholds() {
		if !f.matches(h, m) {
			continue
		}
		rows = append(rows, householdRow(h, members))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows
}

// Household returns one household with its derived fields and members.
func Household(r Reader, id string, now time.Time) (HouseholdDetail, bool) {
	h, ok := r.FindHousehold(id)
	if !ok {
		return HouseholdDetail{}, false
	}
	residents := r.ListResidents()
	detail := HouseholdDetail{
		HouseholdRow: householdRow(h, memberships(residents)),
		Members:      make([]ResidentRow, 0),
	}
	for _, res := range residents {
		if res.InHousehold(id) {
			detail.Members = append(detail.Members, residentRow(res, &h, now))
		}
	}
	sort.SliceStable(detail.Members, func(i, j int) bool {
		return detail.Members[i].IsHouseholdHead && !detail.Members[j].IsHouseholdHead
	})
	return detail, true
}

// Areas returns the distinct non-empty household areas in first-seen order.
func Areas(r Reader) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, h := range r.ListHouseholds() {
		area := domain.Deref(h.Area)
		if area == "" {
			continue
		}
		if _, dup := seen[area]; dup {
			continue
		}
		seen[area] = struct{}{}
		out = append(out, area)
	}
	return out
}
