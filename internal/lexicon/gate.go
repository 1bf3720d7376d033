package lexicon

import (
	"math"
	"strings"
)

// RedirectMessage is returned to users whose message is off-topic.
const RedirectMessage = "I'm here to help with property investment and real estate questions. " +
	"How can I assist you with property details, market analysis, or investment calculations?"

const (
	reasonRejected = "Query not related to real estate or property investment"
	reasonAccepted = "Query is property-related and valid"

	// relevanceThreshold is the score a message must exceed to pass.
	relevanceThreshold = 0.2
)

// Verdict is the gate's decision for one prompt.
type Verdict struct {
	IsValid         bool    `json:"is_valid"`
	RelevanceScore  float64 `json:"relevance_score"`
	FilteredContent *string `json:"filtered_content"`
	Reason          string  `json:"reason"`
	// OffTopicScore counts off-topic keywords. It is informational only.
	OffTopicScore int `json:"off_topic_score"`
}

// Gate scores topical relevance with keyword counts.
type Gate struct {
	vocab Vocabulary
}

// NewGate creates a gate over the given vocabulary.
func NewGate(v Vocabulary) *Gate {
	return &Gate{vocab: v}
}

// Check scores prompt. The score is matches / max(words*0.1, 1) capped at 1,
// and the prompt passes when at least one keyword matched and the score
// exceeds 0.2.
func (g *Gate) Check(prompt string) Verdict {
	lowered := strings.ToLower(prompt)
	propertyScore := CountMatches(lowered, g.vocab.PropertyKeywords)
	offTopic := CountMatches(lowered, g.vocab.OffTopicKeywords)

	words := float64(len(strings.Fields(prompt)))
	score := math.Min(1.0, float64(propertyScore)/math.Max(words*0.1, 1))

	v := Verdict{
		IsValid:        propertyScore > 0 && score > relevanceThreshold,
		RelevanceScore: score,
		OffTopicScore:  offTopic,
	}
	if v.IsValid {
		v.Reason = reasonAccepted
	} else {
		msg := RedirectMessage
		v.FilteredContent = &msg
		v.Reason = reasonRejected
	}
	return v
}
