// Package model defines data structures for the AV concierge service.
package model

// InventoryStatus is the availability status of an inventory item.
type InventoryStatus string

const (
	// StatusAvailable marks stock that may be offered to customers. Only
	// items with this status are ever surfaced to the model or the caller.
	StatusAvailable InventoryStatus = "available"
)

// Property is a venue owning rooms, inventory, and labor rules. Immutable
// for the lifetime of a conversation.
type Property struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// Room is an event space belonging to one property.
type Room struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	Dimensions string `json:"dimensions,omitempty"`
	BuiltInAV  string `json:"built_in_av,omitempty"`
	Features   string `json:"features,omitempty"`
}

// InventoryItem is a rentable piece of AV equipment belonging to one property.
type InventoryItem struct {
	ID                string          `json:"id"`
	PropertyID        string          `json:"property_id"`
	Name              string          `json:"name"`
	Model             string          `json:"model,omitempty"`
	Description       string          `json:"description,omitempty"`
	Category          string          `json:"category,omitempty"`
	SubCategory       string          `json:"sub_category,omitempty"`
	QuantityAvailable int             `json:"quantity_available"`
	Status            InventoryStatus `json:"status"`
}

// LaborRule is a property-scoped staffing rule. Parameters is a serialized
// JSON blob whose shape depends on RuleType.
type LaborRule struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	RuleType   string `json:"rule_type"`
	Parameters []byte `json:"parameters"`
}

// Rule types understood by the labor calculator.
const (
	RuleTechnicianRatio = "technician_ratio"
	RuleSetupTime       = "setup_time"
)

// PropertyContext bundles the read-only data the chat flow needs for one
// property: the property itself, its rooms, and its available inventory.
type PropertyContext struct {
	Property  *Property       `json:"property"`
	Rooms     []Room          `json:"rooms"`
	Inventory []InventoryItem `json:"inventory"`
}
