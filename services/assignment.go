package services

import (
	"context"

	"civicpulse-be/models"
	"civicpulse-be/store"
)

// Department routing buckets.
const (
	// CatchAllDepartment receives issues whose category has no mapping.
	CatchAllDepartment = "Road Maintenance Department"
	// TopLevelDepartment is excluded from the second tier of the assignment
	// fallback chain; its responders only pick up issues when nobody else can.
	TopLevelDepartment = "Municipal Corporation"

	SewerDepartment      = "Sewer Department"
	WaterDepartment      = "Water Department"
	TrafficDepartment    = "Traffic Department"
	WasteDepartment      = "Waste Management Department"
	ElectricalDepartment = "Electrical Department"
)

var departmentByCategory = map[models.IssueCategory]string{
	models.Potholes:          CatchAllDepartment,
	models.RoadCracks:        CatchAllDepartment,
	models.Manholes:          SewerDepartment,
	models.SewerBlockage:     SewerDepartment,
	models.StagnantWater:     WaterDepartment,
	models.WaterLeakage:      WaterDepartment,
	models.DamagedSignboards: TrafficDepartment,
	models.GarbageOverflow:   WasteDepartment,
	models.Trash:             WasteDepartment,
	models.StreetLights:      ElectricalDepartment,
}

// DepartmentForCategory maps a category to its routing department; unmapped
// categories fall to the catch-all.
func DepartmentForCategory(category models.IssueCategory) string {
	if dept, ok := departmentByCategory[category]; ok {
		return dept
	}
	return CatchAllDepartment
}

// AssignmentBalancer selects the responder with the least open workload in a
// target department. Workloads are recomputed fresh on every call; two
// concurrent creations may race into the same responder, which is acceptable
// for soft load-balancing.
type AssignmentBalancer struct {
	store store.Store
}

func NewAssignmentBalancer(s store.Store) *AssignmentBalancer {
	return &AssignmentBalancer{store: s}
}

// Assign picks the least-loaded active responder for the category's
// department. Fallback chain: department pool, then all active responders
// outside the top-level department, then any active responder. A nil result
// with nil error means no responder exists; the issue stays unassigned.
func (b *AssignmentBalancer) Assign(ctx context.Context, category models.IssueCategory) (*models.User, error) {
	department := DepartmentForCategory(category)

	pool, err := b.store.ListActiveResponders(ctx, department)
	if err != nil {
		return nil, err
	}

	if len(pool) == 0 {
		all, err := b.store.ListActiveResponders(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, r := range all {
			if r.Department != TopLevelDepartment {
				pool = append(pool, r)
			}
		}
		if len(pool) == 0 {
			pool = all
		}
	}

	if len(pool) == 0 {
		return nil, nil
	}

	// Least open workload wins; ties keep the first candidate encountered.
	var best *models.User
	var bestLoad int64
	for i := range pool {
		load, err := b.store.CountOpenIssuesForResponder(ctx, pool[i].ID)
		if err != nil {
			return nil, err
		}
		if best == nil || load < bestLoad {
			best = &pool[i]
			bestLoad = load
		}
	}
	return best, nil
}
