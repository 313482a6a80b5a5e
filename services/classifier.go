package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"civicpulse-be/models"
)

// Detection is one labeled region returned by the image classifier. It is an
// immutable value shared by severity estimation and the verification path.
type Detection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox,omitempty"`
}

// ImageClassifier consumes an external labeling service. The core never
// parses image bytes itself.
type ImageClassifier interface {
	Detect(ctx context.Context, imageRef string) ([]Detection, error)
}

// HTTPClassifier calls a detection endpoint over HTTP.
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClassifier(baseURL string) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClassifier) Detect(ctx context.Context, imageRef string) ([]Detection, error) {
	body, err := json.Marshal(map[string]string{"image_url": imageRef})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Detections, nil
}

// detection labels grouped by the categories they corroborate
var categoryLabels = map[models.IssueCategory][]string{
	models.Potholes:          {"pothole", "road damage"},
	models.RoadCracks:        {"crack", "road damage"},
	models.Manholes:          {"manhole"},
	models.SewerBlockage:     {"manhole", "sewage"},
	models.StagnantWater:     {"waterlogging", "stagnant water"},
	models.WaterLeakage:      {"waterlogging", "leak"},
	models.DamagedSignboards: {"signboard"},
	models.GarbageOverflow:   {"garbage", "trash"},
	models.Trash:             {"garbage", "trash"},
	models.StreetLights:      {"streetlight"},
}

// labelMatchesCategory reports whether a classifier label corroborates the
// reported category.
func labelMatchesCategory(label string, category models.IssueCategory) bool {
	lower := strings.ToLower(label)
	for _, known := range categoryLabels[category] {
		if strings.Contains(lower, known) {
			return true
		}
	}
	return false
}
