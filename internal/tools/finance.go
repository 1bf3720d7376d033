package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	baseInterestRate = 7.2
	defaultLoanType  = "conventional"
	defaultLoanTerm  = 30

	taxRate       = 1.2
	insuranceRate = 0.4
	pmiRate       = 0.5
	pmiThreshold  = 20.0
)

// DefaultInterestRate is used when a message names no rate.
const DefaultInterestRate = baseInterestRate

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// rateAdjustment nudges the base rate by region. Matching is substring based,
// so any location containing "ca" gets the California adjustment.
func rateAdjustment(location string) float64 {
	l := strings.ToLower(location)
	switch {
	case strings.Contains(l, "california") || strings.Contains(l, "ca"):
		return 0.1
	case strings.Contains(l, "texas") || strings.Contains(l, "tx"):
		return -0.1
	}
	return 0
}

func newInterestRatesHandler(deps *Dependencies) func(context.Context, InterestRateArgs) (any, error) {
	return func(_ context.Context, args InterestRateArgs) (any, error) {
		loanType := args.LoanType
		if loanType == "" {
			loanType = defaultLoanType
		}
		return InterestRates{
			Location:    args.Location,
			LoanType:    loanType,
			CurrentRate: round2(baseInterestRate + rateAdjustment(args.Location)),
			RateTrend:   "stable",
			LastUpdated: deps.now(),
			RateHistory: []RatePoint{
				{Date: "2024-01-01", Rate: 6.8},
				{Date: "2024-02-01", Rate: 7.0},
				{Date: "2024-03-01", Rate: 7.2},
			},
		}, nil
	}
}

// Mortgage computes a fixed-rate amortized loan.
func Mortgage(args MortgageArgs) (MortgageResult, error) {
	years := args.LoanTermYears
	if years == 0 {
		years = defaultLoanTerm
	}
	switch {
	case args.PropertyPrice <= 0:
		return MortgageResult{}, errors.New("property price must be positive")
	case years < 0:
		return MortgageResult{}, errors.New("loan term must be positive")
	case args.DownPayment < 0 || args.DownPayment > args.PropertyPrice:
		return MortgageResult{}, errors.New("down payment must be between 0 and the property price")
	case args.InterestRate < 0:
		return MortgageResult{}, errors.New("interest rate must not be negative")
	}

	loan := args.PropertyPrice - args.DownPayment
	monthlyRate := args.InterestRate / 100 / 12
	n := float64(years * 12)

	var monthly float64
	if monthlyRate > 0 {
		growth := math.Pow(1+monthlyRate, n)
		monthly = loan * monthlyRate * growth / (growth - 1)
	} else {
		monthly = loan / n
	}
	totalCost := monthly * n

	return MortgageResult{
		PropertyPrice:  args.PropertyPrice,
		DownPayment:    args.DownPayment,
		LoanAmount:     loan,
		InterestRate:   args.InterestRate,
		LoanTermYears:  years,
		MonthlyPayment: round2(monthly),
		TotalInterest:  round2(totalCost - loan),
		TotalCost:      round2(totalCost),
		PaymentBreakdown: PaymentBreakdown{
			PrincipalAndInterest: round2(monthly),
			EstimatedTaxes:       round2(args.PropertyPrice * taxRate / 100 / 12),
			EstimatedInsurance:   round2(args.PropertyPrice * insuranceRate / 100 / 12),
		},
	}, nil
}

// MortgageAdvanced adds PMI, property tax and insurance to Mortgage. PMI
// applies only below 20% down.
func MortgageAdvanced(args AdvancedMortgageArgs) (AdvancedMortgageResult, error) {
	basic, err := Mortgage(args.MortgageArgs)
	if err != nil {
		return AdvancedMortgageResult{}, err
	}

	pmi := valueOr(args.PMIRate, pmiRate)
	tax := valueOr(args.PropertyTaxRate, taxRate)
	insurance := valueOr(args.InsuranceRate, insuranceRate)

	downPercent := args.DownPayment / args.PropertyPrice * 100
	required := downPercent < pmiThreshold

	var monthlyPMI float64
	if required {
		monthlyPMI = basic.LoanAmount * pmi / 100 / 12
	}
	monthlyTax := args.PropertyPrice * tax / 100 / 12
	monthlyInsurance := args.PropertyPrice * insurance / 100 / 12

	return AdvancedMortgageResult{
		MortgageResult: basic,
		AdvancedDetails: AdvancedDetails{
			DownPaymentPercent:  round2(downPercent),
			MonthlyPMI:          round2(monthlyPMI),
			MonthlyPropertyTax:  round2(monthlyTax),
			MonthlyInsurance:    round2(monthlyInsurance),
			TotalMonthlyPayment: round2(basic.MonthlyPayment + monthlyPMI + monthlyTax + monthlyInsurance),
			PMIRequired:         required,
		},
	}, nil
}

func calculateMortgage(_ context.Context, args MortgageArgs) (any, error) {
	res, err := Mortgage(args)
	if err != nil {
		return nil, fmt.Errorf("Failed to calculate mortgage: %w", err)
	}
	return res, nil
}

func calculateMortgageAdvanced(_ context.Context, args AdvancedMortgageArgs) (any, error) {
	res, err := MortgageAdvanced(args)
	if err != nil {
		return nil, fmt.Errorf("Failed to calculate advanced mortgage: %w", err)
	}
	return res, nil
}

// Calculation types understood by the financial calculator.
const (
	CalcROI       = "roi"
	CalcCashFlow  = "cash_flow"
	CalcCapRate   = "cap_rate"
	CalcBreakEven = "break_even"
)

// ErrBreakEvenPrice rejects a unit price that never covers variable cost.
var ErrBreakEvenPrice = errors.New("Price per unit must be greater than variable cost per unit")

// Financial runs one calculator type.
func Financial(args FinancialArgs) (any, error) {
	switch args.CalculationType {
	case CalcROI:
		return roi(args)
	case CalcCashFlow:
		return cashFlow(args)
	case CalcCapRate:
		return capRate(args)
	case CalcBreakEven:
		return breakEven(args)
	}
	return nil, fmt.Errorf("Unknown calculation type: %s", args.CalculationType)
}

func financialCalculator(_ context.Context, args FinancialArgs) (any, error) {
	res, err := Financial(args)
	if err != nil {
		var missing *missingParamError
		if errors.As(err, &missing) || errors.Is(err, errZeroDenominator) {
			return nil, fmt.Errorf("Financial calculation failed: %w", err)
		}
		return nil, err
	}
	return res, nil
}

var errZeroDenominator = errors.New("division by zero")

type missingParamError struct{ name string }

func (e *missingParamError) Error() string {
	return fmt.Sprintf("missing required parameter '%s'", e.name)
}

func need(name string, v *float64) (float64, error) {
	if v == nil {
		return 0, &missingParamError{name: name}
	}
	return *v, nil
}

func roi(args FinancialArgs) (any, error) {
	initial, err := need("initial_investment", args.InitialInvestment)
	if err != nil {
		return nil, err
	}
	annual, err := need("annual_return", args.AnnualReturn)
	if err != nil {
		return nil, err
	}
	if initial == 0 {
		return nil, fmt.Errorf("initial_investment is zero: %w", errZeroDenominator)
	}
	years := 1
	if args.Years != nil {
		years = *args.Years
	}
	return ROIResult{
		CalculationType:   CalcROI,
		InitialInvestment: initial,
		AnnualReturn:      annual,
		Years:             years,
		ROIPercentage:     round2(annual / initial * 100),
		TotalReturn:       round2(annual * float64(years)),
	}, nil
}

func cashFlow(args FinancialArgs) (any, error) {
	rent, err := need("monthly_rent", args.MonthlyRent)
	if err != nil {
		return nil, err
	}
	expenses, err := need("monthly_expenses", args.MonthlyExpenses)
	if err != nil {
		return nil, err
	}
	monthly := rent - expenses
	return CashFlowResult{
		CalculationType: CalcCashFlow,
		MonthlyRent:     rent,
		MonthlyExpenses: expenses,
		MonthlyCashFlow: round2(monthly),
		AnnualCashFlow:  round2(monthly * 12),
	}, nil
}

func capRate(args FinancialArgs) (any, error) {
	income, err := need("annual_income", args.AnnualIncome)
	if err != nil {
		return nil, err
	}
	value, err := need("property_value", args.PropertyValue)
	if err != nil {
		return nil, err
	}
	if value == 0 {
		return nil, fmt.Errorf("property_value is zero: %w", errZeroDenominator)
	}
	return CapRateResult{
		CalculationType:   CalcCapRate,
		AnnualIncome:      income,
		PropertyValue:     value,
		CapRatePercentage: round2(income / value * 100),
	}, nil
}

func breakEven(args FinancialArgs) (any, error) {
	fixed, err := need("fixed_costs", args.FixedCosts)
	if err != nil {
		return nil, err
	}
	variable, err := need("variable_cost_per_unit", args.VariableCostPerUnit)
	if err != nil {
		return nil, err
	}
	price, err := need("price_per_unit", args.PricePerUnit)
	if err != nil {
		return nil, err
	}
	if price <= variable {
		return nil, ErrBreakEvenPrice
	}
	return BreakEvenResult{
		CalculationType:     CalcBreakEven,
		FixedCosts:          fixed,
		VariableCostPerUnit: variable,
		PricePerUnit:        price,
		BreakEvenUnits:      round2(fixed / (price - variable)),
	}, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
