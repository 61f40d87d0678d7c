package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/venueworks/av-concierge/internal/store"
)

// InventoryValidator validates orders directly against a property's
// available inventory: every requested item must exist by name and have
// sufficient quantity.
type InventoryValidator struct {
	store PropertyReader
}

// NewInventoryValidator creates the default order validator.
func NewInventoryValidator(reader PropertyReader) *InventoryValidator {
	return &InventoryValidator{store: reader}
}

// ValidateOrder checks each requested item against available stock.
func (v *InventoryValidator) ValidateOrder(ctx context.Context, propertyID string, equipment []EquipmentItem, attendees int, eventDuration float64) (*OrderValidation, error) {
	var issues []string

	if len(equipment) == 0 {
		issues = append(issues, "Order contains no equipment.")
	}
	if attendees <= 0 {
		issues = append(issues, "Attendee count must be positive.")
	}
	if eventDuration <= 0 {
		issues = append(issues, "Event duration must be positive.")
	}

	for _, item := range equipment {
		if item.Name == "" {
			issues = append(issues, "Equipment entry is missing a name.")
			continue
		}

		matches, err := v.store.ListAvailableInventory(ctx, propertyID, store.InventoryFilter{SearchTerm: item.Name})
		if err != nil {
			return nil, err
		}

		found := false
		for _, m := range matches {
			if !strings.EqualFold(m.Name, item.Name) {
				continue
			}
			found = true
			quantity := item.Quantity
			if quantity == 0 {
				quantity = 1
			}
			if m.QuantityAvailable < quantity {
				issues = append(issues, fmt.Sprintf("Only %d units of %q are available (requested %d).", m.QuantityAvailable, item.Name, quantity))
			}
			break
		}
		if !found {
			issues = append(issues, fmt.Sprintf("%q is not in this venue's available inventory.", item.Name))
		}
	}

	return &OrderValidation{
		Valid:  len(issues) == 0,
		Issues: issues,
	}, nil
}
