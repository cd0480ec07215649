package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/magento-go/pkg/query"
)

func ordersCmd() *cobra.Command {
	ordersRoot := &cobra.Command{
		Use:   "orders",
		Short: "Query orders",
	}

	ordersRoot.AddCommand(
		ordersSearchCmd(),
		ordersGetCmd(),
		ordersItemsCmd(),
	)

	return ordersRoot
}

func ordersSearchCmd() *cobra.Command {
	var (
		flags    searchFlags
		status   string
		customer string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search orders with optional filters",
		Example: `  # Orders placed this year in processing state
  magecli orders search --status processing --since 2026-01-01

  # Orders for one customer, newest first
  magecli orders search --customer 42 --sort created_at --desc`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, cfg, err := newClient()
			if err != nil {
				return err
			}

			orders := c.Orders()
			b := orders.Search()
			if status != "" {
				b.AddCriteria("status", status, query.ConditionEq)
			}
			if customer != "" {
				b.AddCriteria("customer_id", customer, query.ConditionEq)
			}
			if err := flags.apply(b, cfg.Search); err != nil {
				return err
			}

			models, err := orders.Execute(context.Background(), b)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(modelData(models))
			}

			if len(models) == 0 {
				fmt.Println("No orders found.")
				return nil
			}
			return printModelsTable(models,
				"entity_id", "increment_id", "status", "customer_email", "grand_total", "created_at")
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&status, "status", "", "order status filter")
	cmd.Flags().StringVar(&customer, "customer", "", "customer id filter")

	return cmd
}

func ordersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show order details",
		Example: `  magecli orders get 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			order, err := c.Orders().ByID(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(order.Data())
			}
			return printModelDetail(order)
		},
	}
}

func ordersItemsCmd() *cobra.Command {
	var (
		flags searchFlags
		sku   string
	)

	cmd := &cobra.Command{
		Use:     "items",
		Short:   "Search order line items",
		Example: `  magecli orders items --sku WS-1234`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, cfg, err := newClient()
			if err != nil {
				return err
			}

			items := c.OrderItems()
			b := items.Search()
			if sku != "" {
				b.AddCriteria("sku", sku, query.ConditionEq)
			}
			if err := flags.apply(b, cfg.Search); err != nil {
				return err
			}

			models, err := items.Execute(context.Background(), b)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(modelData(models))
			}

			if len(models) == 0 {
				fmt.Println("No order items found.")
				return nil
			}
			return printModelsTable(models,
				"item_id", "order_id", "sku", "name", "qty_ordered", "price")
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&sku, "sku", "", "product sku filter")

	return cmd
}
