package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMortgageIdentities(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		down  float64
		rate  float64
		years int
	}{
		{"typical 30y", 450000, 90000, 6.5, 30},
		{"default term", 300000, 60000, 7.2, 0},
		{"short term", 200000, 10000, 5.0, 15},
		{"tiny rate", 120000, 0, 0.01, 10},
		{"full down payment", 250000, 250000, 7.0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Mortgage(MortgageArgs{
				PropertyPrice: tt.price,
				DownPayment:   tt.down,
				InterestRate:  tt.rate,
				LoanTermYears: tt.years,
			})
			require.NoError(t, err)

			n := float64(res.LoanTermYears * 12)
			assert.Equal(t, tt.price-tt.down, res.LoanAmount)
			assert.InDelta(t, res.TotalCost, res.MonthlyPayment*n, 0.01*n)
			assert.InDelta(t, res.TotalInterest, res.TotalCost-res.LoanAmount, 0.01)
			assert.Equal(t, res.MonthlyPayment, res.PaymentBreakdown.PrincipalAndInterest)
			assert.Equal(t, round2(tt.price*0.012/12), res.PaymentBreakdown.EstimatedTaxes)
			assert.Equal(t, round2(tt.price*0.004/12), res.PaymentBreakdown.EstimatedInsurance)
		})
	}
}

func TestMortgageKnownValue(t *testing.T) {
	res, err := Mortgage(MortgageArgs{PropertyPrice: 450000, DownPayment: 90000, InterestRate: 6.5, LoanTermYears: 30})
	require.NoError(t, err)
	assert.Equal(t, 2275.44, res.MonthlyPayment)
	assert.Equal(t, 360000.0, res.LoanAmount)
	assert.Equal(t, 30, res.LoanTermYears)
}

func TestMortgageZeroRate(t *testing.T) {
	res, err := Mortgage(MortgageArgs{PropertyPrice: 360000, DownPayment: 0, InterestRate: 0, LoanTermYears: 30})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.MonthlyPayment)
	assert.Equal(t, 0.0, res.TotalInterest)
	assert.Equal(t, 360000.0, res.TotalCost)
}

func TestMortgageRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args MortgageArgs
	}{
		{"zero price", MortgageArgs{PropertyPrice: 0, DownPayment: 0, InterestRate: 6}},
		{"negative term", MortgageArgs{PropertyPrice: 100, DownPayment: 10, InterestRate: 6, LoanTermYears: -1}},
		{"down above price", MortgageArgs{PropertyPrice: 100, DownPayment: 200, InterestRate: 6}},
		{"negative rate", MortgageArgs{PropertyPrice: 100, DownPayment: 10, InterestRate: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Mortgage(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestMortgageAdvancedPMI(t *testing.T) {
	tests := []struct {
		name    string
		down    float64
		wantPMI bool
	}{
		{"5 percent down", 20000, true},
		{"19.99 percent down", 79960, true},
		{"exactly 20 percent", 80000, false},
		{"30 percent down", 120000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := MortgageAdvanced(AdvancedMortgageArgs{
				MortgageArgs: MortgageArgs{PropertyPrice: 400000, DownPayment: tt.down, InterestRate: 7},
			})
			require.NoError(t, err)

			d := res.AdvancedDetails
			assert.Equal(t, tt.wantPMI, d.PMIRequired)
			assert.Equal(t, tt.wantPMI, d.MonthlyPMI > 0)
			assert.Equal(t, 400.0, d.MonthlyPropertyTax)
			assert.Equal(t, 133.33, d.MonthlyInsurance)
			assert.InDelta(t, res.MonthlyPayment+d.MonthlyPMI+d.MonthlyPropertyTax+d.MonthlyInsurance,
				d.TotalMonthlyPayment, 0.02)
		})
	}
}

func TestMortgageAdvancedCustomRates(t *testing.T) {
	res, err := MortgageAdvanced(AdvancedMortgageArgs{
		MortgageArgs:    MortgageArgs{PropertyPrice: 120000, DownPayment: 0, InterestRate: 0, LoanTermYears: 10},
		PMIRate:         Float(1.2),
		PropertyTaxRate: Float(0),
		InsuranceRate:   Float(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, res.AdvancedDetails.MonthlyPMI)
	assert.Equal(t, 1000.0+120.0, res.AdvancedDetails.TotalMonthlyPayment)
}

func TestInterestRates(t *testing.T) {
	f := newFixture(t, Options{})

	tests := []struct {
		location string
		want     float64
	}{
		{"California", 7.3},
		{"Texas", 7.1},
		{"Ohio", 7.2},
		{"United States", 7.2},
		{"Austin, TX", 7.1},
		// "chicago" contains "ca"
		{"Chicago", 7.3},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			res := f.exec.Execute(context.Background(), Call{
				Name: GetInterestRates,
				Args: InterestRateArgs{Location: tt.location},
			})
			require.True(t, res.OK())
			rates := res.Data.(InterestRates)
			assert.Equal(t, tt.want, rates.CurrentRate)
			assert.Equal(t, "conventional", rates.LoanType)
			assert.Equal(t, "stable", rates.RateTrend)
			assert.Equal(t, fixedNow, rates.LastUpdated)
			assert.Len(t, rates.RateHistory, 3)
		})
	}
}

func TestFinancialCalculator(t *testing.T) {
	tests := []struct {
		name string
		args FinancialArgs
		want any
	}{
		{
			name: "roi default years",
			args: FinancialArgs{CalculationType: CalcROI, InitialInvestment: Float(100000), AnnualReturn: Float(8000)},
			want: ROIResult{CalculationType: "roi", InitialInvestment: 100000, AnnualReturn: 8000, Years: 1, ROIPercentage: 8, TotalReturn: 8000},
		},
		{
			name: "cash flow",
			args: FinancialArgs{CalculationType: CalcCashFlow, MonthlyRent: Float(2500), MonthlyExpenses: Float(1800.5)},
			want: CashFlowResult{CalculationType: "cash_flow", MonthlyRent: 2500, MonthlyExpenses: 1800.5, MonthlyCashFlow: 699.5, AnnualCashFlow: 8394},
		},
		{
			name: "cap rate",
			args: FinancialArgs{CalculationType: CalcCapRate, AnnualIncome: Float(30000), PropertyValue: Float(400000)},
			want: CapRateResult{CalculationType: "cap_rate", AnnualIncome: 30000, PropertyValue: 400000, CapRatePercentage: 7.5},
		},
		{
			name: "break even",
			args: FinancialArgs{CalculationType: CalcBreakEven, FixedCosts: Float(10000), VariableCostPerUnit: Float(20), PricePerUnit: Float(50)},
			want: BreakEvenResult{CalculationType: "break_even", FixedCosts: 10000, VariableCostPerUnit: 20, PricePerUnit: 50, BreakEvenUnits: 333.33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Financial(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFinancialCalculatorErrors(t *testing.T) {
	f := newFixture(t, Options{})

	tests := []struct {
		name    string
		args    FinancialArgs
		wantMsg string
	}{
		{
			name:    "unknown type",
			args:    FinancialArgs{CalculationType: "npv"},
			wantMsg: "Unknown calculation type: npv",
		},
		{
			name:    "break even price below cost",
			args:    FinancialArgs{CalculationType: CalcBreakEven, FixedCosts: Float(100), VariableCostPerUnit: Float(50), PricePerUnit: Float(50)},
			wantMsg: "Price per unit must be greater than variable cost per unit",
		},
		{
			name:    "missing parameter",
			args:    FinancialArgs{CalculationType: CalcROI, AnnualReturn: Float(1)},
			wantMsg: "Financial calculation failed: missing required parameter 'initial_investment'",
		},
		{
			name:    "zero investment",
			args:    FinancialArgs{CalculationType: CalcROI, InitialInvestment: Float(0), AnnualReturn: Float(1)},
			wantMsg: "Financial calculation failed: initial_investment is zero: division by zero",
		},
		{
			name:    "zero property value",
			args:    FinancialArgs{CalculationType: CalcCapRate, AnnualIncome: Float(1), PropertyValue: Float(0)},
			wantMsg: "Financial calculation failed: property_value is zero: division by zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.exec.Execute(context.Background(), Call{Name: GetFinancialCalculator, Args: tt.args})
			require.False(t, res.OK())
			assert.Nil(t, res.Data)
			assert.Equal(t, tt.wantMsg, res.Err.Message)
		})
	}
}
