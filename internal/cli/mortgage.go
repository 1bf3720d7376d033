package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahul2317-NRK/chatbot9/internal/client"
	"github.com/spf13/cobra"
)

var (
	mortgagePrice float64
	mortgageDown  float64
	mortgageRate  float64
	mortgageTerm  int
)

var mortgageCmd = &cobra.Command{
	Use:   "mortgage",
	Short: "Estimate the monthly cost of a property",
	Long: `Estimate principal and interest, taxes, insurance and a simple ROI
for a property purchase. Without --rate the current national rate is used.`,
	Example: `  chatbot mortgage --price 450000 --down 90000
  chatbot mortgage --price 300000 --down 60000 --rate 6.25 --term 15`,
	Args: cobra.NoArgs,
	RunE: runMortgage,
}

func init() {
	mortgageCmd.Flags().Float64Var(&mortgagePrice, "price", 0, "property price (required)")
	mortgageCmd.Flags().Float64Var(&mortgageDown, "down", 0, "down payment")
	mortgageCmd.Flags().Float64Var(&mortgageRate, "rate", 0, "annual interest rate in percent")
	mortgageCmd.Flags().IntVar(&mortgageTerm, "term", 30, "loan term in years")
	_ = mortgageCmd.MarkFlagRequired("price")
}

func runMortgage(cmd *cobra.Command, args []string) error {
	req := client.MortgageRequest{
		PropertyPrice: mortgagePrice,
		DownPayment:   mortgageDown,
		LoanTermYears: mortgageTerm,
	}
	if cmd.Flags().Changed("rate") {
		req.InterestRate = &mortgageRate
	}

	var out map[string]any
	err := withSpinner(cmd.Context(), "Calculating...", func(ctx context.Context) error {
		var err error
		out, err = apiClient.Mortgage(ctx, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("mortgage: %w", err)
	}

	theme := defaultTheme
	for _, section := range []string{"mortgage_calculation", "roi_estimate"} {
		v, ok := out[section]
		if !ok {
			continue
		}
		data, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(theme.labelStyle().Render(section))
		fmt.Println(string(data))
	}
	return nil
}
