package services

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
)

const (
	// MediaDuplicateRadiusKm is the dedup radius used at creation time.
	MediaDuplicateRadiusKm = 0.2
	// ProximityRadiusKm is the default radius for general nearby-issue search.
	ProximityRadiusKm = 5.0

	// MediaDuplicateWindow bounds how far back media dedup looks.
	MediaDuplicateWindow = 30 * 24 * time.Hour

	earthRadiusKm    = 6371.0
	jaccardThreshold = 0.3
)

// DuplicateMatch names one existing issue a candidate resembles and why.
type DuplicateMatch struct {
	IssueID primitive.ObjectID `json:"issueId"`
	Reason  string             `json:"reason"`
}

// SimilarityEngine computes geospatial and textual overlap between issues.
// Matches it reports are advisory duplicate candidates: false positives are
// tolerated, a no-false-negative guarantee is not given.
type SimilarityEngine struct{}

func NewSimilarityEngine() *SimilarityEngine {
	return &SimilarityEngine{}
}

// Haversine returns the great-circle distance in kilometers between two
// (lat, lng) points.
func (e *SimilarityEngine) Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlng := radians(lng2 - lng1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Jaccard returns |A∩B| / |A∪B| over case-folded whitespace tokens, and 0
// if either side is empty.
func (e *SimilarityEngine) Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(s)) {
		set[token] = struct{}{}
	}
	return set
}

// FindDuplicates flags existing issues within radiusKm of the candidate that
// share its category or whose descriptions overlap by Jaccard >= 0.3.
func (e *SimilarityEngine) FindDuplicates(candidate models.Issue, existing []models.Issue, radiusKm float64) []DuplicateMatch {
	var matches []DuplicateMatch
	for _, issue := range existing {
		if issue.ID == candidate.ID {
			continue
		}
		dist := e.Haversine(candidate.Latitude, candidate.Longitude, issue.Latitude, issue.Longitude)
		if dist > radiusKm {
			continue
		}

		sameCategory := strings.EqualFold(string(candidate.Category), string(issue.Category))
		descSim := e.Jaccard(candidate.Description, issue.Description)
		if sameCategory {
			matches = append(matches, DuplicateMatch{
				IssueID: issue.ID,
				Reason:  fmt.Sprintf("same category %.2fkm away", dist),
			})
		} else if descSim >= jaccardThreshold {
			matches = append(matches, DuplicateMatch{
				IssueID: issue.ID,
				Reason:  fmt.Sprintf("description overlap %.2f at %.2fkm", descSim, dist),
			})
		}
	}
	return matches
}

// FindMediaDuplicates compares submitted media filenames against media on
// existing issues. Two references match when their filename stems are equal
// (case-folded) or when long stems differ in length by at most one character
// under the same extension.
//
// This is a coarse filename heuristic, a placeholder for content-hash based
// matching; callers treat its matches as a hard signal at creation time.
func (e *SimilarityEngine) FindMediaDuplicates(mediaURLs []string, existing []models.Issue) []DuplicateMatch {
	var matches []DuplicateMatch
	seen := make(map[primitive.ObjectID]bool)

	for _, issue := range existing {
		if seen[issue.ID] {
			continue
		}
		for _, candidate := range mediaURLs {
			for _, ref := range issue.MediaURLs {
				if mediaRefsMatch(candidate, ref) {
					matches = append(matches, DuplicateMatch{
						IssueID: issue.ID,
						Reason:  fmt.Sprintf("media %q matches existing upload", path.Base(stripQuery(candidate))),
					})
					seen[issue.ID] = true
				}
				if seen[issue.ID] {
					break
				}
			}
			if seen[issue.ID] {
				break
			}
		}
	}
	return matches
}

func mediaRefsMatch(a, b string) bool {
	stemA, extA := stemAndExt(a)
	stemB, extB := stemAndExt(b)
	if stemA == "" || stemB == "" {
		return false
	}
	if stemA == stemB {
		return true
	}
	// Near-length match for long generated names, e.g. upload hashes that
	// differ only by a truncated suffix.
	if extA == extB && len(stemA) >= 16 && len(stemB) >= 16 {
		diff := len(stemA) - len(stemB)
		if diff < 0 {
			diff = -diff
		}
		if diff <= 1 && (strings.HasPrefix(stemA, stemB) || strings.HasPrefix(stemB, stemA)) {
			return true
		}
	}
	return false
}

func stemAndExt(ref string) (string, string) {
	base := path.Base(stripQuery(ref))
	ext := path.Ext(base)
	stem := strings.ToLower(strings.TrimSuffix(base, ext))
	return stem, strings.ToLower(ext)
}

func stripQuery(ref string) string {
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		return ref[:i]
	}
	return ref
}
