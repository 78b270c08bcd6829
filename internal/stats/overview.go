package stats

import (
	"time"

	"residency/pkg/domain"
)

// ResidenceTypeCount is one bar of the residence-type breakdown.
type ResidenceTypeCount struct {
	ResidenceType string `json:"residence_type"`
	Count         int    `json:"count"`
}

// Overview is the dashboard headline.
type Overview struct {
	TotalHouseholds     int                  `json:"totalHouseholds"`
	TotalResidents      int                  `json:"totalResidents"`
	TotalNotifications  int                  `json:"totalNotifications"`
	ByResidenceType     []ResidenceTypeCount `json:"byResidenceType"`
	PermanentHouseholds int                  `json:"permanent_households"`
	TemporaryHouseholds int                  `json:"temporary_households"`
}

// ComputeOverview counts households, residents and unexpired notifications.
func ComputeOverview(r Reader, now time.Time) Overview {
	households := r.ListHouseholds()
	residents := r.ListResidents()

	out := Overview{
		TotalHouseholds: len(households),
		TotalResidents:  len(residents),
	}
	for _, n := range r.ListNotifications() {
		if n.ActiveAt(now) {
			out.TotalNotifications++
		}
	}
	for _, h := range households {
		switch h.HouseholdType {
		case domain.HouseholdPermanent:
			out.PermanentHouseholds++
		case domain.HouseholdTemporary:
			out.TemporaryHouseholds++
		}
	}

	types := newTally()
	for _, res := range residents {
		t := string(res.ResidenceType)
		if t == "" {
			t = string(domain.ResidencePermanent)
		}
		types.add(t)
	}
	out.ByResidenceType = mapEntries(types.entries(), func(k string, c int) ResidenceTypeCount {
		return ResidenceTypeCount{ResidenceType: k, Count: c}
	})
	return out
}
