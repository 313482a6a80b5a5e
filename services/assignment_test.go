package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
)

func TestDepartmentForCategory(t *testing.T) {
	tests := []struct {
		category models.IssueCategory
		want     string
	}{
		{models.Potholes, CatchAllDepartment},
		{models.RoadCracks, CatchAllDepartment},
		{models.Manholes, SewerDepartment},
		{models.SewerBlockage, SewerDepartment},
		{models.StagnantWater, WaterDepartment},
		{models.WaterLeakage, WaterDepartment},
		{models.DamagedSignboards, TrafficDepartment},
		{models.GarbageOverflow, WasteDepartment},
		{models.Trash, WasteDepartment},
		{models.StreetLights, ElectricalDepartment},
		{models.IssueCategory("Something Else"), CatchAllDepartment},
	}
	for _, tt := range tests {
		if got := DepartmentForCategory(tt.category); got != tt.want {
			t.Errorf("DepartmentForCategory(%s) = %s, want %s", tt.category, got, tt.want)
		}
	}
}

func seedOpenIssue(fs *fakeStore, responderID primitive.ObjectID) {
	id := primitive.NewObjectID()
	fs.issues[id] = &models.Issue{
		ID:                  id,
		ReporterID:          primitive.NewObjectID(),
		Category:            models.Potholes,
		Status:              models.StatusNew,
		AssignedResponderID: &responderID,
		CreatedAt:           time.Now(),
	}
}

func TestAssignLeastLoaded(t *testing.T) {
	fs := newFakeStore()
	busy := fs.addResponder(SewerDepartment)
	idle := fs.addResponder(SewerDepartment)
	seedOpenIssue(fs, busy)
	seedOpenIssue(fs, busy)

	balancer := NewAssignmentBalancer(fs)
	got, err := balancer.Assign(context.Background(), models.SewerBlockage)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got == nil || got.ID != idle {
		t.Errorf("expected idle responder, got %v", got)
	}
}

func TestAssignIgnoresResolvedWorkload(t *testing.T) {
	fs := newFakeStore()
	first := fs.addResponder(WaterDepartment)
	second := fs.addResponder(WaterDepartment)

	// Resolved issues must not count toward first's load.
	id := primitive.NewObjectID()
	fs.issues[id] = &models.Issue{
		ID:                  id,
		Status:              models.StatusResolved,
		AssignedResponderID: &first,
		CreatedAt:           time.Now(),
	}
	seedOpenIssue(fs, second)

	balancer := NewAssignmentBalancer(fs)
	got, err := balancer.Assign(context.Background(), models.WaterLeakage)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got == nil || got.ID != first {
		t.Errorf("expected responder with only resolved history, got %v", got)
	}
}

func TestAssignFallbackOutsideDepartment(t *testing.T) {
	fs := newFakeStore()
	sewerResponder := fs.addResponder(SewerDepartment)
	fs.addResponder(TopLevelDepartment)

	balancer := NewAssignmentBalancer(fs)
	got, err := balancer.Assign(context.Background(), models.StreetLights)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	// No electrical responder exists; the top-level department is skipped in
	// the second tier, leaving the sewer responder.
	if got == nil || got.ID != sewerResponder {
		t.Errorf("expected fallback to sewer responder, got %v", got)
	}
}

func TestAssignTopLevelLastResort(t *testing.T) {
	fs := newFakeStore()
	topLevel := fs.addResponder(TopLevelDepartment)

	balancer := NewAssignmentBalancer(fs)
	got, err := balancer.Assign(context.Background(), models.Potholes)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got == nil || got.ID != topLevel {
		t.Errorf("expected top-level responder as last resort, got %v", got)
	}
}

func TestAssignNoResponders(t *testing.T) {
	balancer := NewAssignmentBalancer(newFakeStore())

	got, err := balancer.Assign(context.Background(), models.Potholes)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil responder, got %v", got)
	}
}

func TestAssignIgnoresInactive(t *testing.T) {
	fs := newFakeStore()
	inactive := fs.addResponder(WasteDepartment)
	fs.users[inactive].IsActive = false
	active := fs.addResponder(WasteDepartment)

	balancer := NewAssignmentBalancer(fs)
	got, err := balancer.Assign(context.Background(), models.Trash)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got == nil || got.ID != active {
		t.Errorf("expected active responder, got %v", got)
	}
}
