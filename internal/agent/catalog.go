package agent

import (
	"github.com/venueworks/av-concierge/internal/llm"
)

// Names of the callable operations exposed to the model.
const (
	FuncFetchInventory = "fetch_inventory"
	FuncCheckRoom      = "check_room_capabilities"
	FuncValidateOrder  = "validate_order"
	FuncCalculateLabor = "calculate_labor_requirements"
)

// equipmentListSchema is shared by validate_order and
// calculate_labor_requirements.
var equipmentListSchema = map[string]any{
	"type":        "array",
	"description": "Equipment items for the order",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "description": "Exact item name from the inventory list"},
			"category": map[string]any{"type": "string", "description": "Equipment category, e.g. Audio, Video, Lighting"},
			"quantity": map[string]any{"type": "integer", "description": "Number of units requested"},
		},
	},
}

// Catalog returns the static function catalog sent with every model request.
func Catalog() []llm.Tool {
	return []llm.Tool{
		{
			Name:        FuncFetchInventory,
			Description: "Search the venue's available equipment inventory. All filters are optional and combine with AND.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category":     map[string]any{"type": "string", "description": "Equipment category, e.g. Audio, Video, Lighting"},
					"sub_category": map[string]any{"type": "string", "description": "Equipment sub-category, e.g. Microphones, Projectors"},
					"search_term":  map[string]any{"type": "string", "description": "Free-text term matched against item name and description"},
				},
			},
		},
		{
			Name:        FuncCheckRoom,
			Description: "Look up a room by exact name and check whether it can host the requested equipment.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"room_name": map[string]any{"type": "string", "description": "Exact room name"},
					"equipment_list": map[string]any{
						"type":        "array",
						"description": "Equipment descriptions to check against the room's built-in capabilities",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"room_name"},
			},
		},
		{
			Name:        FuncValidateOrder,
			Description: "Validate a proposed equipment order against available inventory.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"equipment_list": equipmentListSchema,
					"attendees":      map[string]any{"type": "integer", "description": "Expected attendee count"},
					"event_duration": map[string]any{"type": "number", "description": "Event duration in hours"},
				},
				"required": []string{"equipment_list", "attendees", "event_duration"},
			},
		},
		{
			Name:        FuncCalculateLabor,
			Description: "Calculate required technicians, setup time, and total labor hours for an event.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"equipment_list": equipmentListSchema,
					"attendees":      map[string]any{"type": "integer", "description": "Expected attendee count"},
					"event_duration": map[string]any{"type": "number", "description": "Event duration in hours"},
				},
				"required": []string{"equipment_list", "attendees", "event_duration"},
			},
		},
	}
}
