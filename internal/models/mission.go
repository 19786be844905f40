package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Cadence labels for scheduled mission runs.
const (
	CadenceHourly = "hourly"
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
	CadenceManual = "manual"
)

// Mission is the immutable configuration for one discovery run.
// Created externally (mission definitions directory or API); the funnel
// treats it as read-only for the duration of a run.
type Mission struct {
	ID               string    `toml:"id" json:"id" validate:"required"`
	Name             string    `toml:"name" json:"name" validate:"required"`
	Instructions     string    `toml:"instructions" json:"instructions" validate:"required"` // Free-text brief for the scoring service
	Keywords         []string  `toml:"keywords" json:"keywords"`
	Platform         string    `toml:"platform" json:"platform" validate:"required"` // e.g. "itch"
	MaxResults       int       `toml:"max_results" json:"max_results" validate:"min=1,max=200"`
	QualityThreshold float64   `toml:"quality_threshold" json:"quality_threshold" validate:"min=0,max=1"`
	Cadence          string    `toml:"cadence" json:"cadence"` // hourly, daily, weekly, manual, or a raw cron expression
	Enabled          bool      `toml:"enabled" json:"enabled"`
	CreatedAt        time.Time `toml:"-" json:"created_at"`
	UpdatedAt        time.Time `toml:"-" json:"updated_at"`
}

var missionValidator = validator.New()

// Validate checks mission fields before a run is accepted
func (m *Mission) Validate() error {
	if err := missionValidator.Struct(m); err != nil {
		return fmt.Errorf("invalid mission %s: %w", m.ID, err)
	}
	return nil
}
