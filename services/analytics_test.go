package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
)

func seedDeptIssue(fs *fakeStore, status models.IssueStatus, severity float64, upvotes int64, age time.Duration) primitive.ObjectID {
	id := primitive.NewObjectID()
	created := time.Now().Add(-age)
	updated := created
	if status == models.StatusResolved {
		updated = created.Add(6 * time.Hour)
	}
	fs.issues[id] = &models.Issue{
		ID:                 id,
		ReporterID:         primitive.NewObjectID(),
		Category:           models.Potholes,
		Status:             status,
		SeverityScore:      severity,
		AssignedDepartment: CatchAllDepartment,
		UpvoteCount:        upvotes,
		CreatedAt:          created,
		UpdatedAt:          updated,
	}
	return id
}

func TestStats(t *testing.T) {
	fs := newFakeStore()
	seedDeptIssue(fs, models.StatusNew, 0.8, 5, time.Hour)
	seedDeptIssue(fs, models.StatusInProgress, 0.4, 2, 2*time.Hour)
	seedDeptIssue(fs, models.StatusResolved, 0.6, 9, 12*time.Hour)

	svc := NewAnalyticsService(fs)
	stats, err := svc.Stats(context.Background(), CatchAllDepartment)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalIssues != 3 {
		t.Errorf("total = %d, want 3", stats.TotalIssues)
	}
	if stats.Pending != 2 {
		t.Errorf("pending = %d, want 2", stats.Pending)
	}
	if stats.InProgress != 1 {
		t.Errorf("inProgress = %d, want 1", stats.InProgress)
	}
	if stats.ResolvedThisWeek != 1 {
		t.Errorf("resolvedThisWeek = %d, want 1", stats.ResolvedThisWeek)
	}
	if stats.TopCategory != string(models.Potholes) {
		t.Errorf("topCategory = %s, want %s", stats.TopCategory, models.Potholes)
	}
	if stats.AvgResolutionTimeHours != 6 {
		t.Errorf("avgResolution = %f, want 6", stats.AvgResolutionTimeHours)
	}
	if stats.SeverityMedian != 0.6 {
		t.Errorf("severityMedian = %f, want 0.6", stats.SeverityMedian)
	}
	if len(stats.Last7Days) != 7 {
		t.Errorf("last7Days has %d entries, want 7", len(stats.Last7Days))
	}
	if len(stats.TopUpvoted) != 3 || stats.TopUpvoted[0].Upvotes != 9 {
		t.Errorf("topUpvoted not sorted by upvotes: %v", stats.TopUpvoted)
	}
}

func TestStatsEmptyDepartment(t *testing.T) {
	svc := NewAnalyticsService(newFakeStore())

	stats, err := svc.Stats(context.Background(), WaterDepartment)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalIssues != 0 || stats.AvgResolutionTimeHours != 0 {
		t.Errorf("empty department stats not zeroed: %+v", stats)
	}
}

func TestHeatmap(t *testing.T) {
	fs := newFakeStore()
	// Two issues at effectively the same spot, one elsewhere.
	a := seedDeptIssue(fs, models.StatusNew, 0.5, 0, time.Hour)
	b := seedDeptIssue(fs, models.StatusNew, 0.5, 0, time.Hour)
	c := seedDeptIssue(fs, models.StatusNew, 0.5, 0, time.Hour)
	fs.issues[a].Latitude, fs.issues[a].Longitude = 19.07601, 72.87702
	fs.issues[b].Latitude, fs.issues[b].Longitude = 19.07603, 72.87698
	fs.issues[c].Latitude, fs.issues[c].Longitude = 19.20000, 72.95000

	svc := NewAnalyticsService(fs)
	points, err := svc.Heatmap(context.Background(), CatchAllDepartment, "", "")
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 grouped points, got %d", len(points))
	}

	total := 0
	for _, p := range points {
		total += p.Count
	}
	if total != 3 {
		t.Errorf("counts sum to %d, want 3", total)
	}
}
