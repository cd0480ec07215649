package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/magento-go/pkg/query"
)

func couponsCmd() *cobra.Command {
	couponsRoot := &cobra.Command{
		Use:   "coupons",
		Short: "Query cart price rule coupons",
	}

	couponsRoot.AddCommand(
		couponsSearchCmd(),
		couponsGetCmd(),
	)

	return couponsRoot
}

func couponsSearchCmd() *cobra.Command {
	var (
		flags  searchFlags
		ruleID int
	)

	cmd := &cobra.Command{
		Use:     "search",
		Short:   "Search coupons with optional filters",
		Example: `  magecli coupons search --rule 7`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, cfg, err := newClient()
			if err != nil {
				return err
			}

			coupons := c.Coupons()
			b := coupons.Search()
			if ruleID > 0 {
				b.AddCriteria("rule_id", strconv.Itoa(ruleID), query.ConditionEq)
			}
			if err := flags.apply(b, cfg.Search); err != nil {
				return err
			}

			models, err := coupons.Execute(context.Background(), b)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(modelData(models))
			}

			if len(models) == 0 {
				fmt.Println("No coupons found.")
				return nil
			}
			return printModelsTable(models,
				"coupon_id", "code", "rule_id", "usage_limit", "times_used")
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&ruleID, "rule", 0, "sales rule id filter")

	return cmd
}

func couponsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <code>",
		Short:   "Show coupon details by code",
		Example: `  magecli coupons get SAVE10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			coupon, err := c.Coupons().ByCode(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(coupon.Data())
			}
			return printModelDetail(coupon)
		},
	}
}
