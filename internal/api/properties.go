package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rahul2317-NRK/chatbot9/internal/service"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

// PropertyAnalysis searches for ?query= and looks up rates for ?location=.
func (h *Handler) PropertyAnalysis(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	return c.JSON(http.StatusOK, h.props.Analyze(c.Request().Context(), query, c.QueryParam("location"), userID(c)))
}

// PropertyDetails returns one property with a financing estimate.
func (h *Handler) PropertyDetails(c echo.Context) error {
	view, err := h.props.Details(c.Request().Context(), c.Param("property_id"), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// SaveRequest is the optional body of the save endpoint.
type SaveRequest struct {
	Notes string `json:"notes"`
}

// SaveProperty adds a property to the caller's saved list.
func (h *Handler) SaveProperty(c echo.Context) error {
	var req SaveRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}
	if req.Notes == "" {
		req.Notes = c.QueryParam("notes")
	}

	propertyID := c.Param("property_id")
	if _, err := h.props.Save(c.Request().Context(), propertyID, userID(c), req.Notes); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":     "Property saved successfully",
		"property_id": propertyID,
	})
}

// SavedProperties lists the caller's saved properties.
func (h *Handler) SavedProperties(c echo.Context) error {
	res, err := h.props.Saved(c.Request().Context(), userID(c))
	if err != nil {
		return httpError(err)
	}
	if !res.OK() {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Err.Message)
	}
	return c.JSON(http.StatusOK, res.Data)
}

// ServicedProperties lists platform properties filtered by ?location= and
// ?property_type=.
func (h *Handler) ServicedProperties(c echo.Context) error {
	res := h.props.Serviced(c.Request().Context(), c.QueryParam("location"), c.QueryParam("property_type"), userID(c))
	if !res.OK() {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Err.Message)
	}
	return c.JSON(http.StatusOK, res.Data)
}

// Calculator runs the full-cost mortgage estimate.
func (h *Handler) Calculator(c echo.Context) error {
	var req service.CalculatorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PropertyPrice <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "property_price must be positive")
	}
	return c.JSON(http.StatusOK, h.props.Calculate(c.Request().Context(), req, userID(c)))
}

var financialParams = []struct {
	name string
	dst  func(*tools.FinancialArgs) **float64
}{
	{"initial_investment", func(a *tools.FinancialArgs) **float64 { return &a.InitialInvestment }},
	{"annual_return", func(a *tools.FinancialArgs) **float64 { return &a.AnnualReturn }},
	{"monthly_rent", func(a *tools.FinancialArgs) **float64 { return &a.MonthlyRent }},
	{"monthly_expenses", func(a *tools.FinancialArgs) **float64 { return &a.MonthlyExpenses }},
	{"annual_income", func(a *tools.FinancialArgs) **float64 { return &a.AnnualIncome }},
	{"property_value", func(a *tools.FinancialArgs) **float64 { return &a.PropertyValue }},
	{"fixed_costs", func(a *tools.FinancialArgs) **float64 { return &a.FixedCosts }},
	{"variable_cost_per_unit", func(a *tools.FinancialArgs) **float64 { return &a.VariableCostPerUnit }},
	{"price_per_unit", func(a *tools.FinancialArgs) **float64 { return &a.PricePerUnit }},
}

// FinancialCalculator runs one investment calculation from query parameters.
func (h *Handler) FinancialCalculator(c echo.Context) error {
	args := tools.FinancialArgs{CalculationType: c.Param("calculation_type")}
	for _, p := range financialParams {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, p.name+" must be a number")
		}
		*p.dst(&args) = &v
	}
	if raw := c.QueryParam("years"); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "years must be an integer")
		}
		args.Years = &years
	}

	out, err := h.props.Financial(c.Request().Context(), args, userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, out)
}
