// Package intent maps a user message to the ordered set of tool calls that
// should answer it.
package intent

import (
	"strings"

	"github.com/rahul2317-NRK/chatbot9/internal/lexicon"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

// DefaultLocation is used for rate lookups when a message names no place.
const DefaultLocation = "United States"

const (
	defaultLoanType = "conventional"
	defaultLoanTerm = 30
)

// Plan is an ordered list of tool calls with unique names.
type Plan []tools.Call

// Names lists the planned tools in order.
func (p Plan) Names() []tools.Name {
	out := make([]tools.Name, len(p))
	for i, c := range p {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the planned call for name.
func (p Plan) Lookup(name tools.Name) (tools.Call, bool) {
	for _, c := range p {
		if c.Name == name {
			return c, true
		}
	}
	return tools.Call{}, false
}

// BindUser fills the requesting user into calls that act on a user's data.
func (p Plan) BindUser(userID string) {
	for i, c := range p {
		if c.Name == tools.GetUserSavedProperties {
			p[i].Args = tools.SavedPropertiesArgs{UserID: userID}
		}
	}
}

// TextClassifier turns a message into a plan. Implementations must be pure.
type TextClassifier interface {
	Classify(text string) Plan
}

// KeywordClassifier fires each intent when any of its keywords appears in the
// lower-cased message. Intents are independent and evaluated in a fixed
// order: search, mortgage, interest rates, property details, saved
// properties, ROI.
type KeywordClassifier struct {
	vocab lexicon.Vocabulary
}

// NewKeywordClassifier creates a classifier over v.
func NewKeywordClassifier(v lexicon.Vocabulary) *KeywordClassifier {
	return &KeywordClassifier{vocab: v}
}

func (k *KeywordClassifier) Classify(text string) Plan {
	lowered := strings.ToLower(text)
	kw := k.vocab.Intents
	numbers := lexicon.Numbers(text)
	location, hasLocation := lexicon.Location(text, k.vocab.Locations)

	plan := Plan{}

	if lexicon.ContainsAny(lowered, kw.Search) {
		args := tools.SearchArgs{Query: text}
		if hasLocation {
			args.Location = location
		}
		plan = append(plan, tools.Call{Name: tools.SearchPropertyInfo, Args: args})
	}

	// Fewer than two numbers leaves nothing to compute.
	if lexicon.ContainsAny(lowered, kw.Mortgage) && len(numbers) >= 2 {
		rate := tools.DefaultInterestRate
		if len(numbers) >= 3 {
			rate = numbers[2]
		}
		plan = append(plan, tools.Call{Name: tools.CalculateMortgage, Args: tools.MortgageArgs{
			PropertyPrice: numbers[0],
			DownPayment:   numbers[1],
			InterestRate:  rate,
			LoanTermYears: defaultLoanTerm,
		}})
	}

	if lexicon.ContainsAny(lowered, kw.InterestRates) {
		loc := DefaultLocation
		if hasLocation {
			loc = location
		}
		plan = append(plan, tools.Call{Name: tools.GetInterestRates, Args: tools.InterestRateArgs{
			Location: loc,
			LoanType: defaultLoanType,
		}})
	}

	if lexicon.ContainsAny(lowered, kw.PropertyDetails) {
		if id, ok := lexicon.PropertyID(text); ok {
			plan = append(plan, tools.Call{Name: tools.GetPropertyDetails, Args: tools.PropertyDetailsArgs{PropertyID: id}})
		}
	}

	if lexicon.ContainsAny(lowered, kw.SavedProperties) {
		plan = append(plan, tools.Call{Name: tools.GetUserSavedProperties, Args: tools.SavedPropertiesArgs{}})
	}

	if lexicon.ContainsAny(lowered, kw.ROI) && len(numbers) >= 2 {
		plan = append(plan, tools.Call{Name: tools.GetFinancialCalculator, Args: tools.FinancialArgs{
			CalculationType:   tools.CalcROI,
			InitialInvestment: tools.Float(numbers[0]),
			AnnualReturn:      tools.Float(numbers[1]),
		}})
	}

	return plan
}
