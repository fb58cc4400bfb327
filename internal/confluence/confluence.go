// Package confluence evaluates weighted pre-trade checklists.
//
// A checklist session is an explicit value passed to the scorer, never
// package state: callers create one per in-progress trade.
package confluence

import (
	"sort"

	"tradejournal/internal/errors"
	"tradejournal/internal/models"
)

// GateThreshold is the fixed checked-weight required to proceed to trade
// entry. It is a constant, not derived from the catalog's total weight.
const GateThreshold = 5.0

// DefaultCategory is the display category for items without one.
const DefaultCategory = "General"

// Weight bounds for catalog items: weight ∈ (0.0, 10.0].
const (
	MinWeight = 0.0
	MaxWeight = 10.0
)

// ValidateWeight checks that a confluence item weight lies in (0.0, 10.0].
func ValidateWeight(weight float64) error {
	if weight <= MinWeight || weight > MaxWeight {
		return errors.NewValidationError("weight", weight, "must be greater than 0 and at most 10")
	}
	return nil
}

// Session tracks which checklist items are checked for one in-progress trade.
type Session struct {
	checked map[string]bool
}

// NewSession creates an empty checklist session.
func NewSession() *Session {
	return &Session{checked: make(map[string]bool)}
}

// Toggle flips an item's checked state and returns the new state.
func (s *Session) Toggle(itemID string) bool {
	s.checked[itemID] = !s.checked[itemID]
	return s.checked[itemID]
}

// Check marks an item as checked.
func (s *Session) Check(itemID string) {
	s.checked[itemID] = true
}

// IsChecked reports whether an item is checked.
func (s *Session) IsChecked(itemID string) bool {
	return s.checked[itemID]
}

// CheckedIDs returns the ids of all checked items.
func (s *Session) CheckedIDs() []string {
	ids := make([]string, 0, len(s.checked))
	for id, on := range s.checked {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// CheckedWeight sums the weights of catalog items checked in the session.
func CheckedWeight(catalog []models.ConfluenceItem, session *Session) float64 {
	var sum float64
	for _, item := range catalog {
		if session.IsChecked(item.ID) {
			sum += item.Weight
		}
	}
	return sum
}

// TotalWeight sums the weights of all active catalog items.
func TotalWeight(catalog []models.ConfluenceItem) float64 {
	var sum float64
	for _, item := range catalog {
		if item.IsActive {
			sum += item.Weight
		}
	}
	return sum
}

// Progress returns checked weight as a percentage of total weight,
// 0 when the catalog is empty.
func Progress(catalog []models.ConfluenceItem, session *Session) float64 {
	total := TotalWeight(catalog)
	if total == 0 {
		return 0
	}
	return CheckedWeight(catalog, session) / total * 100
}

// CanProceed reports whether the session's checked weight meets the
// fixed entry gate.
func CanProceed(catalog []models.ConfluenceItem, session *Session) bool {
	return CheckedWeight(catalog, session) >= GateThreshold
}

// ByCategory partitions items by category for display, with items lacking a
// category grouped under DefaultCategory. Grouping has no effect on scores.
// Categories are returned in sorted order, items in catalog order.
func ByCategory(catalog []models.ConfluenceItem) ([]string, map[string][]models.ConfluenceItem) {
	groups := make(map[string][]models.ConfluenceItem)
	for _, item := range catalog {
		category := item.Category
		if category == "" {
			category = DefaultCategory
		}
		groups[category] = append(groups[category], item)
	}

	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, groups
}
