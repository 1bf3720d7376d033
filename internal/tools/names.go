// Package tools implements the assistant's closed set of named tools and the
// executor that runs them.
package tools

// Name identifies a tool on the wire and in tools_used.
type Name string

const (
	ValidatePromptRelevance   Name = "validatePromptRelevance"
	SearchPropertyInfo        Name = "searchPropertyInfo"
	GetUserChatHistory        Name = "getUserChatHistory"
	GetPropertyDetails        Name = "getPropertyDetails"
	GetInterestRates          Name = "getInterestRates"
	CalculateMortgage         Name = "calculateMortgage"
	GetUserSavedProperties    Name = "getUserSavedProperties"
	GetServicedProperties     Name = "getServicedProperties"
	CalculateMortgageAdvanced Name = "calculateMortgageAdvanced"
	GetFinancialCalculator    Name = "getFinancialCalculator"
)

// All lists every tool in registration order.
func All() []Name {
	return []Name{
		ValidatePromptRelevance,
		SearchPropertyInfo,
		GetUserChatHistory,
		GetPropertyDetails,
		GetInterestRates,
		CalculateMortgage,
		GetUserSavedProperties,
		GetServicedProperties,
		CalculateMortgageAdvanced,
		GetFinancialCalculator,
	}
}

var descriptions = map[Name]string{
	ValidatePromptRelevance:   "Validate whether a prompt is about real estate or property investment",
	SearchPropertyInfo:        "Search the web for property listings and market information",
	GetUserChatHistory:        "Get the recent chat history of a session, oldest first",
	GetPropertyDetails:        "Get the detail record of a property by id",
	GetInterestRates:          "Get current mortgage interest rates for a location",
	CalculateMortgage:         "Calculate the monthly payment, total interest and total cost of a mortgage",
	GetUserSavedProperties:    "Get a user's saved properties with their details",
	GetServicedProperties:     "List properties serviced by the platform, filtered by location and type",
	CalculateMortgageAdvanced: "Calculate a mortgage including PMI, property tax and insurance",
	GetFinancialCalculator:    "Run an investment calculation: roi, cash_flow, cap_rate or break_even",
}

// Valid reports whether n names a known tool.
func (n Name) Valid() bool {
	_, ok := descriptions[n]
	return ok
}

// Description is the one-line summary shown to clients.
func (n Name) Description() string {
	return descriptions[n]
}
