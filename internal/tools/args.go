package tools

// Argument types, one per tool. Field names follow the snake_case keyword
// arguments clients send.

type RelevanceArgs struct {
	Prompt string `json:"prompt" jsonschema:"The user message to score"`
}

type SearchArgs struct {
	Query      string `json:"query" jsonschema:"Free-text search query"`
	Location   string `json:"location,omitempty" jsonschema:"City or region appended to the query"`
	SearchType string `json:"search_type,omitempty" jsonschema:"Search kind, default web"`
}

type HistoryArgs struct {
	UserID    string `json:"user_id" jsonschema:"Owner of the session"`
	SessionID string `json:"session_id" jsonschema:"Session to read"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max turns, default 20"`
}

type PropertyDetailsArgs struct {
	PropertyID string `json:"property_id" jsonschema:"Property identifier such as prop_001"`
}

type InterestRateArgs struct {
	Location string `json:"location" jsonschema:"City, state or country"`
	LoanType string `json:"loan_type,omitempty" jsonschema:"Loan product, default conventional"`
}

type MortgageArgs struct {
	PropertyPrice float64 `json:"property_price" jsonschema:"Purchase price"`
	DownPayment   float64 `json:"down_payment" jsonschema:"Cash paid up front"`
	InterestRate  float64 `json:"interest_rate" jsonschema:"Annual rate in percent"`
	LoanTermYears int     `json:"loan_term_years,omitempty" jsonschema:"Term in years, default 30"`
}

type AdvancedMortgageArgs struct {
	MortgageArgs
	PMIRate         *float64 `json:"pmi_rate,omitempty" jsonschema:"Annual PMI percent of the loan, default 0.5"`
	PropertyTaxRate *float64 `json:"property_tax_rate,omitempty" jsonschema:"Annual tax percent of the price, default 1.2"`
	InsuranceRate   *float64 `json:"insurance_rate,omitempty" jsonschema:"Annual insurance percent of the price, default 0.4"`
}

type SavedPropertiesArgs struct {
	UserID string `json:"user_id" jsonschema:"Owner of the saved list"`
}

type ServicedPropertiesArgs struct {
	Location     string `json:"location,omitempty" jsonschema:"Substring of the address"`
	PropertyType string `json:"property_type,omitempty" jsonschema:"Substring of the property type"`
}

// FinancialArgs carries the parameters of every calculation type; each type
// reads only its own.
type FinancialArgs struct {
	CalculationType string `json:"calculation_type" jsonschema:"One of roi, cash_flow, cap_rate, break_even"`

	InitialInvestment *float64 `json:"initial_investment,omitempty"`
	AnnualReturn      *float64 `json:"annual_return,omitempty"`
	Years             *int     `json:"years,omitempty"`

	MonthlyRent     *float64 `json:"monthly_rent,omitempty"`
	MonthlyExpenses *float64 `json:"monthly_expenses,omitempty"`

	AnnualIncome  *float64 `json:"annual_income,omitempty"`
	PropertyValue *float64 `json:"property_value,omitempty"`

	FixedCosts          *float64 `json:"fixed_costs,omitempty"`
	VariableCostPerUnit *float64 `json:"variable_cost_per_unit,omitempty"`
	PricePerUnit        *float64 `json:"price_per_unit,omitempty"`
}

// Float returns a pointer to v, for building optional arguments.
func Float(v float64) *float64 { return &v }
