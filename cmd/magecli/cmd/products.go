package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/magento-go/pkg/query"
)

func productsCmd() *cobra.Command {
	productsRoot := &cobra.Command{
		Use:   "products",
		Short: "Query the product catalog",
	}

	productsRoot.AddCommand(
		productsSearchCmd(),
		productsGetCmd(),
		productsCountCmd(),
	)

	return productsRoot
}

func productsSearchCmd() *cobra.Command {
	var (
		flags    searchFlags
		nameLike string
		category string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search products with optional filters",
		Example: `  # Products whose name contains "widget"
  magecli products search --name-like "%widget%"

  # Products in a category, restricted fields keep responses small
  magecli products search --category 12 --page-size 200`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, cfg, err := newClient()
			if err != nil {
				return err
			}

			products := c.Products()
			b := products.Search()
			if nameLike != "" {
				b.AddCriteria("name", nameLike, query.ConditionLike)
			}
			if category != "" {
				b.AddCriteria("category_id", category, query.ConditionEq)
			}
			if err := flags.apply(b, cfg.Search); err != nil {
				return err
			}

			models, err := products.Execute(context.Background(), b)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(modelData(models))
			}

			if len(models) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			return printModelsTable(models,
				"sku", "name", "price", "status", "type_id")
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&nameLike, "name-like", "", "name filter (SQL LIKE pattern)")
	cmd.Flags().StringVar(&category, "category", "", "category id filter")

	return cmd
}

func productsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <sku>",
		Short:   "Show product details",
		Example: `  magecli products get WS-1234`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			product, err := c.Products().BySKU(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(product.Data())
			}
			return printModelDetail(product)
		},
	}
}

func productsCountCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:     "count",
		Short:   "Count products matching the filters",
		Example: `  magecli products count --since 2026-01-01`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, cfg, err := newClient()
			if err != nil {
				return err
			}

			products := c.Products()
			b := products.Search()
			if err := flags.apply(b, cfg.Search); err != nil {
				return err
			}

			count, err := products.Count(context.Background(), b)
			if err != nil {
				return err
			}

			fmt.Println(count)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}
