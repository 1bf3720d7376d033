package tools

import (
	"encoding/json"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// Error is the shared failure variant of every tool result.
type Error struct {
	Message string `json:"error"`
}

func (e *Error) Error() string { return e.Message }

// Result is one tool execution. Exactly one of Data and Err is set.
type Result struct {
	Tool    Name
	Data    any
	Err     *Error
	Elapsed time.Duration
}

// OK reports whether the tool succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Payload is the value clients see: the success data or the error object.
func (r Result) Payload() any {
	if r.Err != nil {
		return r.Err
	}
	return r.Data
}

// MarshalJSON renders {tool_name, result, execution_time}, with the elapsed
// time in seconds.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ToolName      Name    `json:"tool_name"`
		Result        any     `json:"result"`
		ExecutionTime float64 `json:"execution_time"`
	}{r.Tool, r.Payload(), r.Elapsed.Seconds()})
}

type HistoryResult struct {
	History      []models.HistoryEntry `json:"history"`
	SessionID    string                `json:"session_id"`
	MessageCount int                   `json:"message_count"`
}

type SearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

// SearchResult lists web hits. Degraded marks placeholder results served
// when no search backend answered.
type SearchResult struct {
	Results      []SearchHit `json:"results"`
	Query        string      `json:"query"`
	TotalResults int         `json:"total_results"`
	Degraded     bool        `json:"degraded,omitempty"`
}

type RatePoint struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

type InterestRates struct {
	Location    string      `json:"location"`
	LoanType    string      `json:"loan_type"`
	CurrentRate float64     `json:"current_rate"`
	RateTrend   string      `json:"rate_trend"`
	LastUpdated time.Time   `json:"last_updated"`
	RateHistory []RatePoint `json:"rate_history"`
}

type PaymentBreakdown struct {
	PrincipalAndInterest float64 `json:"principal_and_interest"`
	EstimatedTaxes       float64 `json:"estimated_taxes"`
	EstimatedInsurance   float64 `json:"estimated_insurance"`
}

type MortgageResult struct {
	PropertyPrice    float64          `json:"property_price"`
	DownPayment      float64          `json:"down_payment"`
	LoanAmount       float64          `json:"loan_amount"`
	InterestRate     float64          `json:"interest_rate"`
	LoanTermYears    int              `json:"loan_term_years"`
	MonthlyPayment   float64          `json:"monthly_payment"`
	TotalInterest    float64          `json:"total_interest"`
	TotalCost        float64          `json:"total_cost"`
	PaymentBreakdown PaymentBreakdown `json:"payment_breakdown"`
}

type AdvancedDetails struct {
	DownPaymentPercent  float64 `json:"down_payment_percent"`
	MonthlyPMI          float64 `json:"monthly_pmi"`
	MonthlyPropertyTax  float64 `json:"monthly_property_tax"`
	MonthlyInsurance    float64 `json:"monthly_insurance"`
	TotalMonthlyPayment float64 `json:"total_monthly_payment"`
	PMIRequired         bool    `json:"pmi_required"`
}

type AdvancedMortgageResult struct {
	MortgageResult
	AdvancedDetails AdvancedDetails `json:"advanced_details"`
}

type SavedEntry struct {
	PropertyID string                 `json:"property_id"`
	SavedAt    time.Time              `json:"saved_at"`
	Notes      string                 `json:"notes"`
	Details    *models.PropertyRecord `json:"details"`
}

type SavedPropertiesResult struct {
	UserID          string       `json:"user_id"`
	SavedProperties []SavedEntry `json:"saved_properties"`
	TotalCount      int          `json:"total_count"`
}

type ServicedProperty struct {
	PropertyID   string  `json:"property_id"`
	Address      string  `json:"address"`
	Price        float64 `json:"price"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	PropertyType string  `json:"property_type"`
	ROIEstimate  float64 `json:"roi_estimate"`
}

type ServicedFilters struct {
	Location     *string `json:"location"`
	PropertyType *string `json:"property_type"`
}

type ServicedPropertiesResult struct {
	Properties []ServicedProperty `json:"properties"`
	TotalCount int                `json:"total_count"`
	Filters    ServicedFilters    `json:"filters"`
}

type ROIResult struct {
	CalculationType   string  `json:"calculation_type"`
	InitialInvestment float64 `json:"initial_investment"`
	AnnualReturn      float64 `json:"annual_return"`
	Years             int     `json:"years"`
	ROIPercentage     float64 `json:"roi_percentage"`
	TotalReturn       float64 `json:"total_return"`
}

type CashFlowResult struct {
	CalculationType string  `json:"calculation_type"`
	MonthlyRent     float64 `json:"monthly_rent"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	MonthlyCashFlow float64 `json:"monthly_cash_flow"`
	AnnualCashFlow  float64 `json:"annual_cash_flow"`
}

type CapRateResult struct {
	CalculationType   string  `json:"calculation_type"`
	AnnualIncome      float64 `json:"annual_income"`
	PropertyValue     float64 `json:"property_value"`
	CapRatePercentage float64 `json:"cap_rate_percentage"`
}

type BreakEvenResult struct {
	CalculationType     string  `json:"calculation_type"`
	FixedCosts          float64 `json:"fixed_costs"`
	VariableCostPerUnit float64 `json:"variable_cost_per_unit"`
	PricePerUnit        float64 `json:"price_per_unit"`
	BreakEvenUnits      float64 `json:"break_even_units"`
}
