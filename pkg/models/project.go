// Package models contains domain types for exeloka-engine.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project status constants. The engine only ever moves a project from
// planning to analyzing; later transitions belong to other collaborators.
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusAnalyzing = "analyzing"
)

// Risk level buckets shared by projects and quick analysis results.
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// Project represents a community-engagement project submitted by a user.
// Projects are mutated only by their owner; recommendations reference them.
type Project struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Title           string     `json:"title"`
	CompanyName     string     `json:"company_name,omitempty"`
	Description     string     `json:"description"`
	ProjectType     string     `json:"project_type,omitempty"`
	LocationDetails JSONBMap   `json:"location_details"`
	Stakeholders    []string   `json:"stakeholders"`
	Objectives      []string   `json:"objectives"`
	PriorityAreas   []string   `json:"priority_areas"`
	SuccessMetrics  []string   `json:"success_metrics"`
	RiskFactors     []string   `json:"risk_factors"`
	RiskLevel       string     `json:"risk_level"`
	BudgetRange     string     `json:"budget_range,omitempty"`
	TimelineStart   *time.Time `json:"timeline_start,omitempty"`
	TimelineEnd     *time.Time `json:"timeline_end,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// JSONBMap is a map type that handles PostgreSQL JSONB serialization.
type JSONBMap map[string]interface{}

// Value implements driver.Valuer for database serialization.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization.
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBMap", value)
	}

	return json.Unmarshal(bytes, j)
}
