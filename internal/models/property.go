package models

import "time"

// MarketData summarizes the local market around a property.
type MarketData struct {
	PricePerSqft     float64 `json:"price_per_sqft"`
	NeighborhoodAvg  float64 `json:"neighborhood_avg"`
	AppreciationRate float64 `json:"appreciation_rate"`
}

// PropertyRecord is the detail record kept for a single property.
type PropertyRecord struct {
	PropertyID   string      `json:"property_id"`
	Address      string      `json:"address"`
	Price        float64     `json:"price"`
	Bedrooms     int         `json:"bedrooms"`
	Bathrooms    float64     `json:"bathrooms"`
	SquareFeet   int         `json:"square_feet"`
	PropertyType string      `json:"property_type"`
	Description  string      `json:"description"`
	Images       []string    `json:"images"`
	ROIEstimate  float64     `json:"roi_estimate"`
	MarketData   *MarketData `json:"market_data,omitempty"`
	// Source is "placeholder" for records synthesized on a lookup miss.
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SavedProperty is one entry in a user's saved-property index.
type SavedProperty struct {
	UserID     string    `json:"user_id"`
	PropertyID string    `json:"property_id"`
	Notes      string    `json:"notes,omitempty"`
	SavedAt    time.Time `json:"saved_at"`
}
