// Package prompt assembles the system instruction sent to the model for
// each chat request. The knowledge base is injected at construction so the
// assembler stays testable in isolation.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/venueworks/av-concierge/internal/model"
)

//go:embed knowledge_base.md
var defaultKnowledgeBase string

// DefaultKnowledgeBase returns the embedded knowledge base text.
func DefaultKnowledgeBase() string {
	return defaultKnowledgeBase
}

// Inventory is a tagged view of a property's available equipment. The two
// shapes (none vs items) produce different prompt variants with different
// tool-use guidance.
type Inventory struct {
	items []model.InventoryItem
}

// NoInventory returns the empty variant.
func NoInventory() Inventory {
	return Inventory{}
}

// InventoryOf wraps a list of available items. A nil or empty list collapses
// to the empty variant.
func InventoryOf(items []model.InventoryItem) Inventory {
	return Inventory{items: items}
}

// IsEmpty reports whether the property has no available inventory.
func (v Inventory) IsEmpty() bool {
	return len(v.items) == 0
}

// Items returns the wrapped items.
func (v Inventory) Items() []model.InventoryItem {
	return v.items
}

// Assembler builds system prompts from a static knowledge base plus
// per-property room and inventory data.
type Assembler struct {
	knowledgeBase string
}

// NewAssembler creates an assembler around the given knowledge base text.
// Empty text falls back to the embedded default.
func NewAssembler(knowledgeBase string) *Assembler {
	if knowledgeBase == "" {
		knowledgeBase = defaultKnowledgeBase
	}
	return &Assembler{knowledgeBase: knowledgeBase}
}

// Build produces the system-role instruction for one request. The knowledge
// base text appears verbatim ahead of the dynamic sections, and the prompt is
// rebuilt fresh per request rather than cached.
func (a *Assembler) Build(property *model.Property, rooms []model.Room, inventory Inventory) string {
	var sb strings.Builder

	sb.WriteString(a.knowledgeBase)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("## Venue: %s\n", property.Name))
	if property.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", property.Location))
	}
	sb.WriteString("\n")

	sb.WriteString("## Rooms\n")
	if len(rooms) == 0 {
		sb.WriteString("No rooms are configured for this venue.\n")
	} else {
		for _, r := range rooms {
			sb.WriteString(formatRoom(r))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	if inventory.IsEmpty() {
		sb.WriteString("## Equipment\n")
		sb.WriteString("This venue has no equipment inventory on file. ")
		sb.WriteString("Do not recommend or quote specific equipment items, models, or quantities. ")
		sb.WriteString("You may still provide generic AV consultation: setup advice, staffing guidance, ")
		sb.WriteString("and room suitability based on the room details above. ")
		sb.WriteString("Do not call fetch_inventory or validate_order; they will return no results.\n")
	} else {
		sb.WriteString("## Available Equipment\n")
		for _, it := range inventory.Items() {
			sb.WriteString(formatItem(it))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString("When recommending equipment, use only the exact names and models from the list above. ")
		sb.WriteString("Use fetch_inventory to narrow by category or keyword, check_room_capabilities before ")
		sb.WriteString("placing equipment in a room, validate_order before confirming a quote, and ")
		sb.WriteString("calculate_labor_requirements to estimate staffing.\n")
	}

	return sb.String()
}

func formatRoom(r model.Room) string {
	line := fmt.Sprintf("%s: Capacity %d people", r.Name, r.Capacity)
	if r.BuiltInAV != "" {
		line += ", Built-in AV: " + r.BuiltInAV
	}
	if r.Features != "" {
		line += ", Features: " + r.Features
	}
	return line
}

func formatItem(it model.InventoryItem) string {
	name := it.Name
	if it.Model != "" {
		name += " " + it.Model
	}
	line := fmt.Sprintf("%s: %d units available", name, it.QuantityAvailable)
	if it.Description != "" {
		line += fmt.Sprintf(" (%s)", it.Description)
	}
	return line
}
