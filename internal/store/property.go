package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/internal/model"
	"github.com/venueworks/av-concierge/pkg/logger"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// InventoryFilter narrows an inventory listing. Filters combine with AND;
// the search term substring-matches item name or description.
type InventoryFilter struct {
	Category    string
	SubCategory string
	SearchTerm  string
}

// PropertyStore reads properties, rooms, inventory, and labor rules.
// All queries are scoped by property id; only available inventory is returned.
type PropertyStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewPropertyStore creates a new property store.
func NewPropertyStore(db *sql.DB, log *logger.Logger) *PropertyStore {
	return &PropertyStore{
		db:     db,
		logger: log,
	}
}

// GetProperty retrieves one property by id.
func (s *PropertyStore) GetProperty(ctx context.Context, propertyID string) (*model.Property, error) {
	query := `
		SELECT id, name, location, COALESCE(contact_email, ''), COALESCE(contact_phone, '')
		FROM properties
		WHERE id = $1
	`

	var p model.Property
	err := s.db.QueryRowContext(ctx, query, propertyID).Scan(
		&p.ID, &p.Name, &p.Location, &p.ContactEmail, &p.ContactPhone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}

	return &p, nil
}

// ListRooms retrieves all rooms for a property.
func (s *PropertyStore) ListRooms(ctx context.Context, propertyID string) ([]model.Room, error) {
	query := `
		SELECT id, property_id, name, capacity,
		       COALESCE(dimensions, ''), COALESCE(built_in_av, ''), COALESCE(features, '')
		FROM rooms
		WHERE property_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.Name, &r.Capacity, &r.Dimensions, &r.BuiltInAV, &r.Features); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}

	return rooms, nil
}

// GetRoomByName retrieves a room by exact name within a property.
func (s *PropertyStore) GetRoomByName(ctx context.Context, propertyID, name string) (*model.Room, error) {
	query := `
		SELECT id, property_id, name, capacity,
		       COALESCE(dimensions, ''), COALESCE(built_in_av, ''), COALESCE(features, '')
		FROM rooms
		WHERE property_id = $1 AND name = $2
	`

	var r model.Room
	err := s.db.QueryRowContext(ctx, query, propertyID, name).Scan(
		&r.ID, &r.PropertyID, &r.Name, &r.Capacity, &r.Dimensions, &r.BuiltInAV, &r.Features,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query room: %w", err)
	}

	return &r, nil
}

// ListAvailableInventory retrieves available inventory for a property,
// optionally narrowed by filter. Property and availability scoping cannot
// be overridden by the filter.
func (s *PropertyStore) ListAvailableInventory(ctx context.Context, propertyID string, filter InventoryFilter) ([]model.InventoryItem, error) {
	query := `
		SELECT id, property_id, name, COALESCE(model, ''), COALESCE(description, ''),
		       COALESCE(category, ''), COALESCE(sub_category, ''), quantity_available, status
		FROM inventory_items
		WHERE property_id = $1 AND status = $2
	`
	args := []any{propertyID, string(model.StatusAvailable)}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category ILIKE $%d", len(args))
	}
	if filter.SubCategory != "" {
		args = append(args, filter.SubCategory)
		query += fmt.Sprintf(" AND sub_category ILIKE $%d", len(args))
	}
	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY category, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		var it model.InventoryItem
		if err := rows.Scan(&it.ID, &it.PropertyID, &it.Name, &it.Model, &it.Description,
			&it.Category, &it.SubCategory, &it.QuantityAvailable, &it.Status); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}

	return items, nil
}

// ListLaborRules retrieves all labor rules for a property.
func (s *PropertyStore) ListLaborRules(ctx context.Context, propertyID string) ([]model.LaborRule, error) {
	query := `
		SELECT id, property_id, rule_type, parameters
		FROM labor_rules
		WHERE property_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query labor rules: %w", err)
	}
	defer rows.Close()

	var rules []model.LaborRule
	for rows.Next() {
		var r model.LaborRule
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.RuleType, &r.Parameters); err != nil {
			return nil, fmt.Errorf("failed to scan labor rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labor rules: %w", err)
	}

	return rules, nil
}

// PropertyContext loads the property, its rooms, and its available inventory
// with sequential queries. Used to seed the system prompt for each request.
func (s *PropertyStore) PropertyContext(ctx context.Context, propertyID string) (*model.PropertyContext, error) {
	property, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.ListRooms(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	inventory, err := s.ListAvailableInventory(ctx, propertyID, InventoryFilter{})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded property context",
		zap.String("property_id", propertyID),
		zap.Int("rooms", len(rooms)),
		zap.Int("inventory_items", len(inventory)),
	)

	return &model.PropertyContext{
		Property:  property,
		Rooms:     rooms,
		Inventory: inventory,
	}, nil
}
