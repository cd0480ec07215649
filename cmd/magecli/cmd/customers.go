package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/magento-go/pkg/query"
)

func customersCmd() *cobra.Command {
	customersRoot := &cobra.Command{
		Use:   "customers",
		Short: "Query customers",
	}

	customersRoot.AddCommand(
		customersSearchCmd(),
		customersGetCmd(),
	)

	return customersRoot
}

func customersSearchCmd() *cobra.Command {
	var (
		flags     searchFlags
		email     string
		firstname string
		lastname  string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search customers with optional filters",
		Example: `  # Look a customer up by email
  magecli customers search --email someone@example.com

  # Customers registered last month
  magecli customers search --since 2026-07-01 --until 2026-07-31`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, cfg, err := newClient()
			if err != nil {
				return err
			}

			customers := c.Customers()
			b := customers.Search()
			if email != "" {
				b.AddCriteria("email", email, query.ConditionEq)
			}
			if firstname != "" {
				b.AddCriteria("firstname", firstname, query.ConditionEq)
			}
			if lastname != "" {
				b.AddCriteria("lastname", lastname, query.ConditionEq)
			}
			if err := flags.apply(b, cfg.Search); err != nil {
				return err
			}

			models, err := customers.Execute(context.Background(), b)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(modelData(models))
			}

			if len(models) == 0 {
				fmt.Println("No customers found.")
				return nil
			}
			return printModelsTable(models,
				"id", "email", "firstname", "lastname", "created_at")
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&email, "email", "", "email filter")
	cmd.Flags().StringVar(&firstname, "firstname", "", "first name filter")
	cmd.Flags().StringVar(&lastname, "lastname", "", "last name filter")

	return cmd
}

func customersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show customer details",
		Example: `  magecli customers get 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			customer, err := c.Customers().ByID(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(customer.Data())
			}
			return printModelDetail(customer)
		},
	}
}
