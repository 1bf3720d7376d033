package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahul2317-NRK/chatbot9/internal/intent"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

var (
	// ErrAuthRequired rejects anonymous callers on per-user operations.
	ErrAuthRequired = errors.New("authentication required")
	// ErrPropertyNotFound is returned when no property record is available.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrInvalidArgument marks a request the caller must fix.
	ErrInvalidArgument = errors.New("invalid argument")
)

const (
	assumedDownPayment = 0.2
	assumedAnnualYield = 0.08
)

// Properties serves the property analysis and calculator operations.
// Each one runs tools through the executor and logs a user interaction.
type Properties struct {
	exec    *tools.Executor
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewProperties creates the property service.
func NewProperties(exec *tools.Executor, st store.Store, logger *slog.Logger, mc *metrics.Collector) *Properties {
	if logger == nil {
		logger = slog.Default()
	}
	return &Properties{exec: exec, store: st, logger: logger, metrics: mc, now: time.Now}
}

// Analysis is the combined search and rate lookup for a query.
type Analysis struct {
	Query         string  `json:"query"`
	Location      *string `json:"location"`
	SearchResults any     `json:"search_results"`
	InterestRates any     `json:"interest_rates"`
	ExecutionTime float64 `json:"analysis_timestamp"`
}

// Analyze searches for query and looks up rates for location.
func (p *Properties) Analyze(ctx context.Context, query, location, userID string) Analysis {
	ctx = tools.WithCaller(ctx, userID)
	rateLocation := location
	if rateLocation == "" {
		rateLocation = intent.DefaultLocation
	}

	results := p.exec.ExecuteAll(ctx, []tools.Call{
		{Name: tools.SearchPropertyInfo, Args: tools.SearchArgs{Query: query, Location: location}},
		{Name: tools.GetInterestRates, Args: tools.InterestRateArgs{Location: rateLocation}},
	})
	search, rates := results[0], results[1]

	p.logInteraction(ctx, userID, InteractionPropertyAnalysis, map[string]any{
		"query":          query,
		"location":       location,
		"search_results": search.Payload(),
	})

	return Analysis{
		Query:         query,
		Location:      optional(location),
		SearchResults: search.Payload(),
		InterestRates: rates.Payload(),
		ExecutionTime: search.Elapsed.Seconds(),
	}
}

// PropertyInsight is a property record with a financing estimate.
type PropertyInsight struct {
	*models.PropertyRecord
	MortgageEstimate   any `json:"mortgage_estimate,omitempty"`
	LocalInterestRates any `json:"local_interest_rates,omitempty"`
}

// PropertyView is the detail page of one property.
type PropertyView struct {
	PropertyID    string          `json:"property_id"`
	PropertyData  PropertyInsight `json:"property_data"`
	ExecutionTime float64         `json:"analysis_timestamp"`
}

// Details returns the record with local rates and a mortgage estimate at 20%
// down and the local rate. The location is the last comma-separated part of
// the address.
func (p *Properties) Details(ctx context.Context, propertyID, userID string) (PropertyView, error) {
	ctx = tools.WithCaller(ctx, userID)

	res := p.exec.Execute(ctx, tools.Call{Name: tools.GetPropertyDetails, Args: tools.PropertyDetailsArgs{PropertyID: propertyID}})
	rec, ok := res.Data.(*models.PropertyRecord)
	if !res.OK() || !ok {
		return PropertyView{}, fmt.Errorf("%w: %s", ErrPropertyNotFound, propertyID)
	}

	insight := PropertyInsight{PropertyRecord: rec}
	rate := tools.DefaultInterestRate

	if rec.Address != "" {
		parts := strings.Split(rec.Address, ",")
		location := strings.TrimSpace(parts[len(parts)-1])
		rates := p.exec.Execute(ctx, tools.Call{Name: tools.GetInterestRates, Args: tools.InterestRateArgs{Location: location}})
		insight.LocalInterestRates = rates.Payload()
		if r, ok := rates.Data.(tools.InterestRates); ok {
			rate = r.CurrentRate
		}
	}

	if rec.Price > 0 {
		mortgage := p.exec.Execute(ctx, tools.Call{Name: tools.CalculateMortgage, Args: tools.MortgageArgs{
			PropertyPrice: rec.Price,
			DownPayment:   rec.Price * assumedDownPayment,
			InterestRate:  rate,
		}})
		insight.MortgageEstimate = mortgage.Payload()
	}

	p.logInteraction(ctx, userID, InteractionPropertyDetails, map[string]any{
		"property_id":   propertyID,
		"property_data": insight,
	})

	return PropertyView{
		PropertyID:    propertyID,
		PropertyData:  insight,
		ExecutionTime: res.Elapsed.Seconds(),
	}, nil
}

// Save adds a property to the user's saved list.
func (p *Properties) Save(ctx context.Context, propertyID, userID, notes string) (models.SavedProperty, error) {
	if models.IsAnonymous(userID) {
		return models.SavedProperty{}, fmt.Errorf("%w to save properties", ErrAuthRequired)
	}
	sp := models.SavedProperty{UserID: userID, PropertyID: propertyID, Notes: notes, SavedAt: p.now()}
	if err := p.store.SaveProperty(ctx, sp); err != nil {
		return models.SavedProperty{}, fmt.Errorf("save property: %w", err)
	}

	p.logInteraction(ctx, userID, InteractionPropertySaved, map[string]any{
		"property_id": propertyID,
		"notes":       notes,
	})
	return sp, nil
}

// Saved lists the user's saved properties with details.
func (p *Properties) Saved(ctx context.Context, userID string) (tools.Result, error) {
	if models.IsAnonymous(userID) {
		return tools.Result{}, fmt.Errorf("%w to view saved properties", ErrAuthRequired)
	}
	return p.exec.Execute(tools.WithCaller(ctx, userID), tools.Call{
		Name: tools.GetUserSavedProperties,
		Args: tools.SavedPropertiesArgs{UserID: userID},
	}), nil
}

// Serviced lists platform properties matching the filters.
func (p *Properties) Serviced(ctx context.Context, location, propertyType, userID string) tools.Result {
	res := p.exec.Execute(tools.WithCaller(ctx, userID), tools.Call{
		Name: tools.GetServicedProperties,
		Args: tools.ServicedPropertiesArgs{Location: location, PropertyType: propertyType},
	})

	count := 0
	if out, ok := res.Data.(tools.ServicedPropertiesResult); ok {
		count = out.TotalCount
	}
	p.logInteraction(ctx, userID, InteractionServicedProperties, map[string]any{
		"location":      location,
		"property_type": propertyType,
		"results_count": count,
	})
	return res
}

// CalculatorRequest is a full-cost mortgage estimate request. A nil rate is
// replaced with the current national rate.
type CalculatorRequest struct {
	PropertyPrice float64  `json:"property_price"`
	DownPayment   float64  `json:"down_payment"`
	InterestRate  *float64 `json:"interest_rate,omitempty"`
	LoanTermYears int      `json:"loan_term_years,omitempty"`
}

// CalculatorResult pairs the mortgage with an ROI estimate on the down
// payment at an assumed 8% yearly return on the price.
type CalculatorResult struct {
	MortgageCalculation any     `json:"mortgage_calculation"`
	ROIEstimate         any     `json:"roi_estimate"`
	ExecutionTime       float64 `json:"calculation_timestamp"`
}

// Calculate runs the advanced mortgage calculation.
func (p *Properties) Calculate(ctx context.Context, req CalculatorRequest, userID string) CalculatorResult {
	ctx = tools.WithCaller(ctx, userID)

	rate := tools.DefaultInterestRate
	if req.InterestRate != nil {
		rate = *req.InterestRate
	} else {
		rates := p.exec.Execute(ctx, tools.Call{Name: tools.GetInterestRates, Args: tools.InterestRateArgs{Location: intent.DefaultLocation}})
		if r, ok := rates.Data.(tools.InterestRates); ok {
			rate = r.CurrentRate
		}
	}

	mortgage := p.exec.Execute(ctx, tools.Call{Name: tools.CalculateMortgageAdvanced, Args: tools.AdvancedMortgageArgs{
		MortgageArgs: tools.MortgageArgs{
			PropertyPrice: req.PropertyPrice,
			DownPayment:   req.DownPayment,
			InterestRate:  rate,
			LoanTermYears: req.LoanTermYears,
		},
	}})
	roi := p.exec.Execute(ctx, tools.Call{Name: tools.GetFinancialCalculator, Args: tools.FinancialArgs{
		CalculationType:   tools.CalcROI,
		InitialInvestment: tools.Float(req.DownPayment),
		AnnualReturn:      tools.Float(req.PropertyPrice * assumedAnnualYield),
	}})

	p.logInteraction(ctx, userID, InteractionMortgage, map[string]any{
		"property_price":     req.PropertyPrice,
		"down_payment":       req.DownPayment,
		"interest_rate":      rate,
		"loan_term_years":    req.LoanTermYears,
		"calculation_result": mortgage.Payload(),
	})

	return CalculatorResult{
		MortgageCalculation: mortgage.Payload(),
		ROIEstimate:         roi.Payload(),
		ExecutionTime:       mortgage.Elapsed.Seconds(),
	}
}

// FinancialResult is one calculator run.
type FinancialResult struct {
	CalculationType string              `json:"calculation_type"`
	Parameters      tools.FinancialArgs `json:"parameters"`
	Result          any                 `json:"result"`
	ExecutionTime   float64             `json:"calculation_timestamp"`
}

// requiredParams lists, per calculation, the parameters a caller must send.
var requiredParams = map[string]func(tools.FinancialArgs) bool{
	tools.CalcROI: func(a tools.FinancialArgs) bool {
		return a.InitialInvestment != nil && a.AnnualReturn != nil
	},
	tools.CalcCashFlow: func(a tools.FinancialArgs) bool {
		return a.MonthlyRent != nil && a.MonthlyExpenses != nil
	},
	tools.CalcCapRate: func(a tools.FinancialArgs) bool {
		return a.AnnualIncome != nil && a.PropertyValue != nil
	},
	tools.CalcBreakEven: func(a tools.FinancialArgs) bool {
		return a.FixedCosts != nil && a.VariableCostPerUnit != nil && a.PricePerUnit != nil
	},
}

var requiredParamsHelp = map[string]string{
	tools.CalcROI:       "initial_investment and annual_return are required for ROI calculation",
	tools.CalcCashFlow:  "monthly_rent and monthly_expenses are required for cash flow calculation",
	tools.CalcCapRate:   "annual_income and property_value are required for cap rate calculation",
	tools.CalcBreakEven: "fixed_costs, variable_cost_per_unit and price_per_unit are required for break-even calculation",
}

// Financial validates the parameters for args.CalculationType and runs it.
func (p *Properties) Financial(ctx context.Context, args tools.FinancialArgs, userID string) (FinancialResult, error) {
	check, ok := requiredParams[args.CalculationType]
	if !ok {
		return FinancialResult{}, fmt.Errorf("%w: Invalid calculation type", ErrInvalidArgument)
	}
	if !check(args) {
		return FinancialResult{}, fmt.Errorf("%w: %s", ErrInvalidArgument, requiredParamsHelp[args.CalculationType])
	}

	res := p.exec.Execute(tools.WithCaller(ctx, userID), tools.Call{Name: tools.GetFinancialCalculator, Args: args})

	p.logInteraction(ctx, userID, InteractionFinancial, map[string]any{
		"calculation_type": args.CalculationType,
		"parameters":       args,
		"result":           res.Payload(),
	})

	return FinancialResult{
		CalculationType: args.CalculationType,
		Parameters:      args,
		Result:          res.Payload(),
		ExecutionTime:   res.Elapsed.Seconds(),
	}, nil
}

func (p *Properties) logInteraction(ctx context.Context, userID, kind string, payload map[string]any) {
	err := p.store.LogInteraction(ctx, models.Interaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Payload:   payload,
		Timestamp: p.now(),
	})
	if err != nil {
		p.metrics.Increment(metrics.CounterPersistFails)
		p.logger.Warn("log interaction failed", "kind", kind, "error", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
