// Package lexicon holds the keyword vocabularies behind the relevance gate
// and the intent classifier, plus the lexical extractors they share.
package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the full set of keyword lists. Matching is case-insensitive
// substring containment, so every entry is expected in lower case.
type Vocabulary struct {
	PropertyKeywords []string       `yaml:"property_keywords"`
	OffTopicKeywords []string       `yaml:"off_topic_keywords"`
	Locations        []string       `yaml:"locations"`
	Intents          IntentKeywords `yaml:"intents"`
}

// IntentKeywords are the trigger lists for each classifier intent.
type IntentKeywords struct {
	Search          []string `yaml:"search"`
	Mortgage        []string `yaml:"mortgage"`
	InterestRates   []string `yaml:"interest_rates"`
	PropertyDetails []string `yaml:"property_details"`
	SavedProperties []string `yaml:"saved_properties"`
	ROI             []string `yaml:"roi"`
}

// DefaultVocabulary returns the built-in keyword lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		PropertyKeywords: []string{
			"property", "house", "home", "apartment", "condo", "real estate",
			"buy", "sell", "rent", "mortgage", "loan", "investment", "roi",
			"bedroom", "bathroom", "square feet", "price", "location",
			"neighborhood", "market", "listing", "agent", "broker",
		},
		OffTopicKeywords: []string{
			"weather", "sports", "politics", "entertainment", "cooking",
			"travel", "health", "technology", "science", "history",
		},
		Locations: []string{
			"downtown", "midtown", "uptown", "suburbs",
			"california", "texas", "florida", "new york",
			"chicago", "los angeles", "san francisco", "miami",
			"dallas", "houston", "atlanta", "seattle", "denver",
		},
		Intents: IntentKeywords{
			Search:          []string{"find", "search", "show", "properties", "houses", "apartments"},
			Mortgage:        []string{"mortgage", "payment", "loan", "calculate"},
			InterestRates:   []string{"interest", "rate", "rates", "current"},
			PropertyDetails: []string{"details", "information", "about property"},
			SavedProperties: []string{"saved", "my properties", "bookmarked"},
			ROI:             []string{"roi", "return", "investment", "profit"},
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file. Lists missing from the file
// keep their defaults. An empty path returns the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read vocabulary: %w", err)
	}

	var file Vocabulary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return v, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	override(&v.PropertyKeywords, file.PropertyKeywords)
	override(&v.OffTopicKeywords, file.OffTopicKeywords)
	override(&v.Locations, file.Locations)
	override(&v.Intents.Search, file.Intents.Search)
	override(&v.Intents.Mortgage, file.Intents.Mortgage)
	override(&v.Intents.InterestRates, file.Intents.InterestRates)
	override(&v.Intents.PropertyDetails, file.Intents.PropertyDetails)
	override(&v.Intents.SavedProperties, file.Intents.SavedProperties)
	override(&v.Intents.ROI, file.Intents.ROI)
	return v, nil
}

func override(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = lower(src)
	}
}
