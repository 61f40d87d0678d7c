package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/internal/store"
	"github.com/venueworks/av-concierge/pkg/logger"
)

// PropertyReader is the read surface the executors need. The property id is
// always supplied by the orchestrator, never taken from model arguments.
type PropertyReader interface {
	PropertyContext(ctx context.Context, propertyID string) (*model.PropertyContext, error)
	ListAvailableInventory(ctx context.Context, propertyID string, filter store.InventoryFilter) ([]model.InventoryItem, error)
	GetRoomByName(ctx context.Context, propertyID, name string) (*model.Room, error)
	ListLaborRules(ctx context.Context, propertyID string) ([]model.LaborRule, error)
}

// EquipmentItem is one entry of an order's equipment list.
type EquipmentItem struct {
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// OrderValidator validates a proposed order for a property.
type OrderValidator interface {
	ValidateOrder(ctx context.Context, propertyID string, equipment []EquipmentItem, attendees int, eventDuration float64) (*OrderValidation, error)
}

// OrderValidation is the result of an order validation.
type OrderValidation struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// ErrUnknownFunction is returned when the model names an operation outside
// the catalog.
var ErrUnknownFunction = errors.New("unknown function")

// executorFunc is one entry of the dispatch table.
type executorFunc func(ctx context.Context, propertyID string, args json.RawMessage) (any, error)

// Executors holds the concrete handlers behind the function catalog.
type Executors struct {
	store     PropertyReader
	validator OrderValidator
	logger    *logger.Logger

	table map[string]executorFunc
}

// NewExecutors creates the executor set with its dispatch table.
func NewExecutors(reader PropertyReader, validator OrderValidator, log *logger.Logger) *Executors {
	e := &Executors{
		store:     reader,
		validator: validator,
		logger:    log,
	}
	e.table = map[string]executorFunc{
		FuncFetchInventory: e.fetchInventory,
		FuncCheckRoom:      e.checkRoomCapabilities,
		FuncValidateOrder:  e.validateOrder,
		FuncCalculateLabor: e.calculateLabor,
	}
	return e
}

// Execute dispatches one function call. The property id binds every lookup;
// errors are returned to the caller, which feeds them back to the model as
// data rather than failing the request.
func (e *Executors) Execute(ctx context.Context, propertyID, name string, args json.RawMessage) (any, error) {
	fn, ok := e.table[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return fn(ctx, propertyID, args)
}

type fetchInventoryArgs struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	SearchTerm  string `json:"search_term"`
}

func (e *Executors) fetchInventory(ctx context.Context, propertyID string, args json.RawMessage) (any, error) {
	var in fetchInventoryArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("invalid fetch_inventory arguments: %w", err)
		}
	}

	items, err := e.store.ListAvailableInventory(ctx, propertyID, store.InventoryFilter{
		Category:    in.Category,
		SubCategory: in.SubCategory,
		SearchTerm:  in.SearchTerm,
	})
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []model.InventoryItem{}
	}
	return map[string]any{
		"items": items,
		"count": len(items),
	}, nil
}

type checkRoomArgs struct {
	RoomName      string   `json:"room_name"`
	EquipmentList []string `json:"equipment_list"`
}

func (e *Executors) checkRoomCapabilities(ctx context.Context, propertyID string, args json.RawMessage) (any, error) {
	var in checkRoomArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid check_room_capabilities arguments: %w", err)
	}
	if in.RoomName == "" {
		return nil, errors.New("room_name is required")
	}

	room, err := e.store.GetRoomByName(ctx, propertyID, in.RoomName)
	if errors.Is(err, store.ErrNotFound) {
		// Not an error: a normal negative result the model can relay.
		return map[string]any{
			"compatible": false,
			"reason":     "Room not found",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"compatible": true,
		"room":       room,
		"notes":      roomAdvisoryNotes(room, in.EquipmentList),
	}, nil
}

// roomAdvisoryNotes flags requested equipment the room cannot cover with its
// built-in AV. The checks are substring-based against the combined built-in
// AV and features text.
func roomAdvisoryNotes(room *model.Room, equipment []string) []string {
	if len(equipment) == 0 {
		return []string{"No equipment list provided; returning room details only."}
	}

	roomText := strings.ToLower(room.BuiltInAV + " " + room.Features)

	var notes []string
	for _, eq := range equipment {
		lowered := strings.ToLower(eq)
		if strings.Contains(lowered, "projector") && !strings.Contains(roomText, "projection") {
			notes = append(notes, fmt.Sprintf("%s has no built-in projection; portable projection equipment will be needed for %q.", room.Name, eq))
		}
		if (strings.Contains(lowered, "audio") || strings.Contains(lowered, "sound")) &&
			!strings.Contains(roomText, "audio") && !strings.Contains(roomText, "sound") {
			notes = append(notes, fmt.Sprintf("%s has no built-in sound system; portable audio equipment will be needed for %q.", room.Name, eq))
		}
	}
	if notes == nil {
		notes = []string{}
	}
	return notes
}

type orderArgs struct {
	EquipmentList []EquipmentItem `json:"equipment_list"`
	Attendees     int             `json:"attendees"`
	EventDuration float64         `json:"event_duration"`
}

func (e *Executors) validateOrder(ctx context.Context, propertyID string, args json.RawMessage) (any, error) {
	var in orderArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid validate_order arguments: %w", err)
	}

	result, err := e.validator.ValidateOrder(ctx, propertyID, in.EquipmentList, in.Attendees, in.EventDuration)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Executors) calculateLabor(ctx context.Context, propertyID string, args json.RawMessage) (any, error) {
	var in orderArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid calculate_labor_requirements arguments: %w", err)
	}

	rules, err := e.store.ListLaborRules(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	return CalculateLabor(rules, in.EquipmentList, in.Attendees, in.EventDuration)
}
