package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"civicpulse-be/models"
	"civicpulse-be/store"
)

// DepartmentStats is the KPI block for a responder dashboard header.
type DepartmentStats struct {
	TotalIssues            int                        `json:"totalIssues"`
	Pending                int                        `json:"pending"`
	InProgress             int                        `json:"inProgress"`
	ResolvedToday          int                        `json:"resolvedToday"`
	ResolvedThisWeek       int                        `json:"resolvedThisWeek"`
	AvgResolutionTimeHours float64                    `json:"avgResolutionTimeHours"`
	TopCategory            string                     `json:"topCategory"`
	ByStatus               map[models.IssueStatus]int `json:"byStatus"`
	SeverityMean           float64                    `json:"severityMean"`
	SeverityMedian         float64                    `json:"severityMedian"`
	SeverityP90            float64                    `json:"severityP90"`
	Last7Days              []DailyCount               `json:"last7Days"`
	TopUpvoted             []IssueSummary             `json:"topUpvoted"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type IssueSummary struct {
	ID       string               `json:"id"`
	Category models.IssueCategory `json:"category"`
	Upvotes  int64                `json:"upvotes"`
}

type HeatPoint struct {
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
	Count     int                  `json:"count"`
	Category  models.IssueCategory `json:"category"`
	Status    models.IssueStatus   `json:"status"`
}

// AnalyticsService aggregates issue data per department.
type AnalyticsService struct {
	store store.Store
}

func NewAnalyticsService(s store.Store) *AnalyticsService {
	return &AnalyticsService{store: s}
}

// Stats computes the department KPI block from its issues.
func (s *AnalyticsService) Stats(ctx context.Context, department string) (*DepartmentStats, error) {
	issues, err := s.store.QueryIssues(ctx, store.IssueFilter{Department: department})
	if err != nil {
		return nil, err
	}

	result := &DepartmentStats{
		TotalIssues: len(issues),
		ByStatus:    make(map[models.IssueStatus]int),
	}

	now := time.Now()
	today := now.Truncate(24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)

	categoryCounts := make(map[models.IssueCategory]int)
	var severities []float64
	var resolutionHours []float64

	for _, issue := range issues {
		result.ByStatus[issue.Status]++
		categoryCounts[issue.Category]++
		severities = append(severities, issue.SeverityScore)

		if issue.Status.IsOpen() {
			result.Pending++
		}
		if issue.Status == models.StatusInProgress {
			result.InProgress++
		}
		if issue.Status == models.StatusResolved {
			if !issue.UpdatedAt.Before(today) {
				result.ResolvedToday++
			}
			if !issue.UpdatedAt.Before(weekAgo) {
				result.ResolvedThisWeek++
			}
			resolutionHours = append(resolutionHours, issue.UpdatedAt.Sub(issue.CreatedAt).Hours())
		}
	}

	topCategory := ""
	topCount := 0
	for category, count := range categoryCounts {
		if count > topCount {
			topCategory = string(category)
			topCount = count
		}
	}
	result.TopCategory = topCategory

	if len(resolutionHours) > 0 {
		if mean, err := stats.Mean(resolutionHours); err == nil {
			result.AvgResolutionTimeHours = math.Round(mean*100) / 100
		}
	}
	if len(severities) > 0 {
		if mean, err := stats.Mean(severities); err == nil {
			result.SeverityMean = mean
		}
		if median, err := stats.Median(severities); err == nil {
			result.SeverityMedian = median
		}
		if p90, err := stats.Percentile(severities, 90); err == nil {
			result.SeverityP90 = p90
		}
	}

	result.Last7Days = dailyCounts(issues, now, 7)
	result.TopUpvoted = topUpvoted(issues, 5)
	return result, nil
}

func dailyCounts(issues []models.Issue, now time.Time, days int) []DailyCount {
	counts := make([]DailyCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		count := 0
		for _, issue := range issues {
			if !issue.CreatedAt.Before(dayStart) && issue.CreatedAt.Before(dayEnd) {
				count++
			}
		}
		counts = append(counts, DailyCount{Date: dayStart.Format("2006-01-02"), Count: count})
	}
	return counts
}

func topUpvoted(issues []models.Issue, limit int) []IssueSummary {
	summaries := make([]IssueSummary, 0, len(issues))
	for _, issue := range issues {
		summaries = append(summaries, IssueSummary{
			ID:       issue.ID.Hex(),
			Category: issue.Category,
			Upvotes:  issue.UpvoteCount,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Upvotes > summaries[j].Upvotes
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

// Heatmap groups issue coordinates (rounded to 4 decimals) with counts.
func (s *AnalyticsService) Heatmap(ctx context.Context, department, status, category string) ([]HeatPoint, error) {
	issues, err := s.store.QueryIssues(ctx, store.IssueFilter{
		Department: department,
		Status:     status,
		Category:   category,
	})
	if err != nil {
		return nil, err
	}

	type cell struct{ lat, lng float64 }
	grouped := make(map[cell]*HeatPoint)
	var order []cell

	for _, issue := range issues {
		key := cell{roundCoord(issue.Latitude), roundCoord(issue.Longitude)}
		point, ok := grouped[key]
		if !ok {
			point = &HeatPoint{
				Latitude:  key.lat,
				Longitude: key.lng,
				Category:  issue.Category,
				Status:    issue.Status,
			}
			grouped[key] = point
			order = append(order, key)
		}
		point.Count++
	}

	points := make([]HeatPoint, 0, len(order))
	for _, key := range order {
		points = append(points, *grouped[key])
	}
	return points, nil
}

func roundCoord(v float64) float64 {
	return math.Round(v*10000) / 10000
}
