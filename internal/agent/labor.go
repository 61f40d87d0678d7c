package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/venueworks/av-concierge/internal/model"
)

// technicianRatio controls how many technicians an event needs.
type technicianRatio struct {
	AttendeesPerTechnician int `json:"attendees_per_technician"`
	MinimumTechnicians     int `json:"minimum_technicians"`
}

// setupTimes holds per-category setup constants plus the flat breakdown time,
// all in hours.
type setupTimes struct {
	Audio     float64 `json:"audio"`
	Video     float64 `json:"video"`
	Lighting  float64 `json:"lighting"`
	Breakdown float64 `json:"breakdown"`
}

func defaultTechnicianRatio() technicianRatio {
	return technicianRatio{AttendeesPerTechnician: 50, MinimumTechnicians: 1}
}

func defaultSetupTimes() setupTimes {
	return setupTimes{Audio: 2, Video: 1.5, Lighting: 3, Breakdown: 1}
}

// LaborSchedule is the structured summary returned by
// calculate_labor_requirements.
type LaborSchedule struct {
	RequiredTechnicians int     `json:"required_technicians"`
	SetupTimeHours      float64 `json:"setup_time_hours"`
	EventDurationHours  float64 `json:"event_duration_hours"`
	BreakdownTimeHours  float64 `json:"breakdown_time_hours"`
	TotalLaborHours     float64 `json:"total_labor_hours"`
}

// CalculateLabor computes the staffing schedule for an event. Property rules
// override the defaults field by field; absent rule types fall back entirely
// to defaults.
func CalculateLabor(rules []model.LaborRule, equipment []EquipmentItem, attendees int, eventDuration float64) (*LaborSchedule, error) {
	ratio := defaultTechnicianRatio()
	setup := defaultSetupTimes()

	for _, rule := range rules {
		switch rule.RuleType {
		case model.RuleTechnicianRatio:
			if err := json.Unmarshal(rule.Parameters, &ratio); err != nil {
				return nil, fmt.Errorf("invalid %s rule parameters: %w", rule.RuleType, err)
			}
		case model.RuleSetupTime:
			if err := json.Unmarshal(rule.Parameters, &setup); err != nil {
				return nil, fmt.Errorf("invalid %s rule parameters: %w", rule.RuleType, err)
			}
		}
	}

	if ratio.AttendeesPerTechnician <= 0 {
		ratio.AttendeesPerTechnician = defaultTechnicianRatio().AttendeesPerTechnician
	}
	if ratio.MinimumTechnicians <= 0 {
		ratio.MinimumTechnicians = defaultTechnicianRatio().MinimumTechnicians
	}

	required := int(math.Ceil(float64(attendees) / float64(ratio.AttendeesPerTechnician)))
	if required < ratio.MinimumTechnicians {
		required = ratio.MinimumTechnicians
	}

	setupHours := 0.0
	for _, item := range equipment {
		setupHours += categorySetupHours(item.Category, setup)
	}

	total := (setupHours + eventDuration + setup.Breakdown) * float64(required)

	return &LaborSchedule{
		RequiredTechnicians: required,
		SetupTimeHours:      setupHours,
		EventDurationHours:  eventDuration,
		BreakdownTimeHours:  setup.Breakdown,
		TotalLaborHours:     total,
	}, nil
}

// categorySetupHours maps an equipment category to its setup constant.
// Matching is substring-based and first-match-wins in the order
// audio, video, lighting; anything else contributes nothing.
func categorySetupHours(category string, setup setupTimes) float64 {
	lowered := strings.ToLower(category)
	switch {
	case strings.Contains(lowered, "audio"):
		return setup.Audio
	case strings.Contains(lowered, "video"):
		return setup.Video
	case strings.Contains(lowered, "lighting"):
		return setup.Lighting
	default:
		return 0
	}
}
