package core

import (
	"context"

	"residency/internal/query"
	"residency/internal/stats"
	"residency/pkg/domain"
)

// CreateHousehold persists a new household.
func (s *Service) CreateHousehold(ctx context.Context, h domain.Household) (domain.Household, domain.Result, error) {
	var created domain.Household
	res, err := s.write(ctx, "create_household", func(tx *Transaction) (auditRecord, error) {
		var err error
		created, err = tx.CreateHousehold(h)
		return auditRecord{action: "create", entity: domain.EntityHousehold, id: created.ID, details: map[string]any{
			"householdCode": created.HouseholdCode,
			"address":       created.Address,
		}}, err
	})
	return created, res, err
}

// UpdateHousehold merges changes onto a household.
func (s *Service) UpdateHousehold(ctx context.Context, id string, upd HouseholdUpdate) (domain.Household, domain.Result, error) {
	var updated domain.Household
	res, err := s.write(ctx, "update_household", func(tx *Transaction) (auditRecord, error) {
		var err error
		updated, err = tx.UpdateHousehold(id, upd)
		return auditRecord{action: "update", entity: domain.EntityHousehold, id: id, details: map[string]any{
			"householdCode": updated.HouseholdCode,
		}}, err
	})
	return updated, res, err
}

// DeleteHousehold removes a household and unassigns its residents.
func (s *Service) DeleteHousehold(ctx context.Context, id string) (domain.Result, error) {
	return s.write(ctx, "delete_household", func(tx *Transaction) (auditRecord, error) {
		existing, ok := tx.View().FindHousehold(id)
		if !ok {
			return auditRecord{}, domain.NotFound(domain.EntityHousehold, id)
		}
		unassigned, err := tx.DeleteHousehold(id)
		return auditRecord{action: "delete", entity: domain.EntityHousehold, id: id, details: map[string]any{
			"householdCode": existing.HouseholdCode,
			"unassigned":    unassigned,
		}}, err
	})
}

// GetHousehold returns the stored household.
func (s *Service) GetHousehold(ctx context.Context, id string) (domain.Household, error) {
	var out domain.Household
	err := s.read(ctx, "get_household", func(v View) error {
		h, ok := v.FindHousehold(id)
		if !ok {
			return domain.NotFound(domain.EntityHousehold, id)
		}
		out = h
		return nil
	})
	return out, err
}

// HouseholdByCode looks a household up by its administrative code.
func (s *Service) HouseholdByCode(ctx context.Context, code string) (domain.Household, error) {
	var out domain.Household
	err := s.read(ctx, "household_by_code", func(v View) error {
		h, ok := v.FindHouseholdByCode(code)
		if !ok {
			return domain.NotFound(domain.EntityHousehold, code)
		}
		out = h
		return nil
	})
	return out, err
}

// ListHouseholds filters, sorts and paginates households.
func (s *Service) ListHouseholds(ctx context.Context, f query.HouseholdFilter, p query.Pagination) (query.Page[query.HouseholdRow], error) {
	var out query.Page[query.HouseholdRow]
	err := s.read(ctx, "list_households", func(v View) error {
		out = query.Paginate(query.Households(v, f), p, query.DefaultLimit)
		return nil
	})
	return out, err
}

// HouseholdDetail returns a household with derived fields and members.
func (s *Service) HouseholdDetail(ctx context.Context, id string) (query.HouseholdDetail, error) {
	var out query.HouseholdDetail
	err := s.read(ctx, "household_detail", func(v View) error {
		d, ok := query.Household(v, id, v.Now())
		if !ok {
			return domain.NotFound(domain.EntityHousehold, id)
		}
		out = d
		return nil
	})
	return out, err
}

// Areas lists the distinct household areas.
func (s *Service) Areas(ctx context.Context) ([]string, error) {
	var out []string
	err := s.read(ctx, "list_areas", func(v View) error {
		out = query.Areas(v)
		return nil
	})
	return out, err
}

// CreateResident persists a new resident, demoting any previous head of the
// same household.
func (s *Service) CreateResident(ctx context.Context, r domain.Resident) (domain.Resident, domain.Result, error) {
	var created domain.Resident
	res, err := s.write(ctx, "create_resident", func(tx *Transaction) (auditRecord, error) {
		var err error
		created, err = tx.CreateResident(r)
		return auditRecord{action: "create", entity: domain.EntityResident, id: created.ID, details: map[string]any{
			"fullName": created.FullName,
		}}, err
	})
	return created, res, err
}

// UpdateResident merges changes onto a resident.
func (s *Service) UpdateResident(ctx context.Context, id string, upd ResidentUpdate) (domain.Resident, domain.Result, error) {
	var updated domain.Resident
	res, err := s.write(ctx, "update_resident", func(tx *Transaction) (auditRecord, error) {
		var err error
		updated, err = tx.UpdateResident(id, upd)
		return auditRecord{action: "update", entity: domain.EntityResident, id: id, details: map[string]any{
			"fullName": updated.FullName,
		}}, err
	})
	return updated, res, err
}

// DeleteResident removes a resident.
func (s *Service) DeleteResident(ctx context.Context, id string) (domain.Result, error) {
	return s.write(ctx, "delete_resident", func(tx *Transaction) (auditRecord, error) {
		existing, ok := tx.View().FindResident(id)
		if !ok {
			return auditRecord{}, domain.NotFound(domain.EntityResident, id)
		}
		return auditRecord{action: "delete", entity: domain.EntityResident, id: id, details: map[string]any{
			"fullName": existing.FullName,
		}}, tx.DeleteResident(id)
	})
}

// GetResident returns the stored resident.
func (s *Service) GetResident(ctx context.Context, id string) (domain.Resident, error) {
	var out domain.Resident
	err := s.read(ctx, "get_resident", func(v View) error {
		r, ok := v.FindResident(id)
		if !ok {
			return domain.NotFound(domain.EntityResident, id)
		}
		out = r
		return nil
	})
	return out, err
}

// ListResidents filters, sorts and paginates residents.
func (s *Service) ListResidents(ctx context.Context, f query.ResidentFilter, p query.Pagination) (query.Page[query.ResidentRow], error) {
	var out query.Page[query.ResidentRow]
	err := s.read(ctx, "list_residents", func(v View) error {
		out = query.Paginate(query.Residents(v, f, v.Now()), p, query.DefaultLimit)
		return nil
	})
	return out, err
}

// ResidentDetail returns a resident with its household resolved.
func (s *Service) ResidentDetail(ctx context.Context, id string) (query.ResidentRow, error) {
	var out query.ResidentRow
	err := s.read(ctx, "resident_detail", func(v View) error {
		row, ok := query.Resident(v, id, v.Now())
		if !ok {
			return domain.NotFound(domain.EntityResident, id)
		}
		out = row
		return nil
	})
	return out, err
}

// Overview computes the dashboard headline.
func (s *Service) Overview(ctx context.Context) (stats.Overview, error) {
	var out stats.Overview
	err := s.read(ctx, "stats_overview", func(v View) error {
		out = stats.ComputeOverview(v, v.Now())
		return nil
	})
	return out, err
}

// Demographics computes the dashboard demographic breakdown.
func (s *Service) Demographics(ctx context.Context) (stats.Demographics, error) {
	var out stats.Demographics
	err := s.read(ctx, "stats_demographics", func(v View) error {
		out = stats.ComputeDemographics(v, v.Now())
		return nil
	})
	return out, err
}

// DemographicStats computes the report demographic breakdown.
func (s *Service) DemographicStats(ctx context.Context) (stats.DemographicStats, error) {
	var out stats.DemographicStats
	err := s.read(ctx, "stats_demographic_report", func(v View) error {
		out = stats.ComputeDemographicStats(v, v.Now())
		return nil
	})
	return out, err
}

// HouseholdStats computes the household composition report.
func (s *Service) HouseholdStats(ctx context.Context) (stats.HouseholdStats, error) {
	var out stats.HouseholdStats
	err := s.read(ctx, "stats_households", func(v View) error {
		out = stats.ComputeHouseholdStats(v)
		return nil
	})
	return out, err
}

// Timeline computes monthly creation counts for the trailing year.
func (s *Service) Timeline(ctx context.Context) (stats.Timeline, error) {
	var out stats.Timeline
	err := s.read(ctx, "stats_timeline", func(v View) error {
		out = stats.ComputeTimeline(v, v.Now())
		return nil
	})
	return out, err
}
