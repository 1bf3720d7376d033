package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// PlaceholderSource labels property records synthesized on a lookup miss.
const PlaceholderSource = "placeholder"

// placeholderProperty is served, and stored, when a property id is unknown.
func placeholderProperty(id string) models.PropertyRecord {
	return models.PropertyRecord{
		PropertyID:   id,
		Address:      "123 Main St, Downtown",
		Price:        450000,
		Bedrooms:     3,
		Bathrooms:    2,
		SquareFeet:   1800,
		PropertyType: "Single Family Home",
		Description:  "Beautiful home in prime location",
		Images:       []string{"https://example.com/image1.jpg"},
		ROIEstimate:  8.5,
		MarketData: &models.MarketData{
			PricePerSqft:     250,
			NeighborhoodAvg:  425000,
			AppreciationRate: 3.2,
		},
		Source: PlaceholderSource,
	}
}

func newPropertyDetailsHandler(deps *Dependencies, fabricate bool) func(context.Context, PropertyDetailsArgs) (any, error) {
	return func(ctx context.Context, args PropertyDetailsArgs) (any, error) {
		if args.PropertyID == "" {
			return nil, errors.New("Failed to get property details: property_id is required")
		}

		rec, err := deps.Store.GetPropertyRecord(ctx, args.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("Failed to get property details: %w", err)
		}
		if rec != nil {
			return rec, nil
		}
		if !fabricate {
			return nil, fmt.Errorf("Property '%s' not found", args.PropertyID)
		}

		placeholder := placeholderProperty(args.PropertyID)
		placeholder.UpdatedAt = deps.now()
		if err := deps.Store.PutPropertyRecord(ctx, placeholder); err != nil {
			return nil, fmt.Errorf("Failed to get property details: %w", err)
		}
		return &placeholder, nil
	}
}

func newSavedPropertiesHandler(deps *Dependencies) func(context.Context, SavedPropertiesArgs) (any, error) {
	return func(ctx context.Context, args SavedPropertiesArgs) (any, error) {
		index, err := deps.Store.SavedPropertyIndex(ctx, args.UserID)
		if err != nil {
			return nil, fmt.Errorf("Failed to get saved properties: %w", err)
		}

		entries := make([]SavedEntry, 0, len(index))
		for _, sp := range index {
			rec, err := deps.Store.GetPropertyRecord(ctx, sp.PropertyID)
			if err != nil || rec == nil {
				if err != nil {
					deps.Logger.Warn("saved property lookup failed", "property_id", sp.PropertyID, "error", err)
				}
				continue
			}
			entries = append(entries, SavedEntry{
				PropertyID: sp.PropertyID,
				SavedAt:    sp.SavedAt,
				Notes:      sp.Notes,
				Details:    rec,
			})
		}

		return SavedPropertiesResult{
			UserID:          args.UserID,
			SavedProperties: entries,
			TotalCount:      len(entries),
		}, nil
	}
}

// ServicedListings is the fixture listing of properties the platform services.
func ServicedListings() []ServicedProperty {
	return []ServicedProperty{
		{
			PropertyID:   "prop_001",
			Address:      "123 Oak Street, Downtown",
			Price:        450000,
			Bedrooms:     3,
			Bathrooms:    2,
			PropertyType: "Single Family Home",
			ROIEstimate:  8.5,
		},
		{
			PropertyID:   "prop_002",
			Address:      "456 Pine Avenue, Midtown",
			Price:        320000,
			Bedrooms:     2,
			Bathrooms:    1,
			PropertyType: "Condo",
			ROIEstimate:  7.2,
		},
	}
}

func servicedProperties(_ context.Context, args ServicedPropertiesArgs) (any, error) {
	location := strings.ToLower(args.Location)
	kind := strings.ToLower(args.PropertyType)

	matches := make([]ServicedProperty, 0, 2)
	for _, p := range ServicedListings() {
		if location != "" && !strings.Contains(strings.ToLower(p.Address), location) {
			continue
		}
		if kind != "" && !strings.Contains(strings.ToLower(p.PropertyType), kind) {
			continue
		}
		matches = append(matches, p)
	}

	return ServicedPropertiesResult{
		Properties: matches,
		TotalCount: len(matches),
		Filters: ServicedFilters{
			Location:     optional(args.Location),
			PropertyType: optional(args.PropertyType),
		},
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
