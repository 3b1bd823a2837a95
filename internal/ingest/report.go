package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
)

// Report is a collection run's output: resources to catalogue and topics
// carrying engagement metrics.
type Report struct {
	LearningResources []Resource `json:"learning_resources"`
	TrendingTopics    []Topic    `json:"trending_topics"`
}

type Resource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	// RelevanceScore is computed when absent.
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

type Topic struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Source       string          `json:"source"`
	Type         string          `json:"type"`
	OverallScore float64         `json:"overall_score"`
	Metrics      json.RawMessage `json:"metrics,omitempty"`
}

// Stars reads metrics.stars; missing or malformed metrics count as zero.
func (t Topic) Stars() int {
	return int(gjson.GetBytes(t.Metrics, "stars").Int())
}

// Posts reads metrics.estimated_posts.
func (t Topic) Posts() int {
	return int(gjson.GetBytes(t.Metrics, "estimated_posts").Int())
}

func (t Topic) metricsMap() map[string]any {
	out := map[string]any{}
	if len(t.Metrics) == 0 || !gjson.ValidBytes(t.Metrics) {
		return out
	}
	if v, ok := gjson.ParseBytes(t.Metrics).Value().(map[string]any); ok {
		return v
	}
	return out
}

// DecodeReport reads a report document.
func DecodeReport(r io.Reader) (Report, error) {
	var rep Report
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rep); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return rep, nil
}

// ReadReportFile opens and decodes a report file.
func ReadReportFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return DecodeReport(f)
}
