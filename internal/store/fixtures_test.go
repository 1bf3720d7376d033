package store

import (
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

func savedFixture() models.SavedProperty {
	return models.SavedProperty{
		UserID:     "u1",
		PropertyID: "prop_001",
		Notes:      "near the park",
		SavedAt:    time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

func interactionFixture(id string) models.Interaction {
	return models.Interaction{
		ID:        id,
		UserID:    "u1",
		Kind:      "property_saved",
		Payload:   map[string]any{"property_id": "prop_001"},
		Timestamp: time.Now(),
	}
}
