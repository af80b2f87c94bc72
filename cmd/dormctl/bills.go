package main

import (
	"fmt"

	billingapp "github.com/dormdesk/backend/internal/application/billing"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func billsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Bill operations",
	}
	cmd.AddCommand(billsRunCmd(opts))
	return cmd
}

func billsRunCmd(opts *rootOptions) *cobra.Command {
	var (
		month    string
		building string
		otherFee string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Issue the bills of a month for every occupied room",
		Example: `  dormctl bills run --month 2025-03
  dormctl bills run --month 2025-03 --building 0b6f... --other-fee 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := valueobject.ParseMonth(month); err != nil {
				return fmt.Errorf("--month: %w", err)
			}
			req := billingapp.RunMonthlyRequest{Month: month}
			if building != "" {
				id, err := uuid.Parse(building)
				if err != nil {
					return fmt.Errorf("--building: %w", err)
				}
				req.BuildingID = &id
			}
			if otherFee != "" {
				fee, err := decimal.NewFromString(otherFee)
				if err != nil || fee.IsNegative() {
					return fmt.Errorf("--other-fee must be a non-negative amount")
				}
				req.OtherFee = fee
			}

			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.bills.RunMonthly(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if len(result.Failures) > 0 {
				return fmt.Errorf("%d room(s) could not be billed", len(result.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Bill month, YYYY-MM")
	cmd.Flags().StringVar(&building, "building", "", "Limit the run to one building id")
	cmd.Flags().StringVar(&otherFee, "other-fee", "", "Extra fee added to every bill")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
