package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/magento-go/internal/config"
	"github.com/donaldgifford/magento-go/pkg/query"
)

// searchFlags are the pagination and date-range flags shared by every
// search subcommand.
type searchFlags struct {
	since    string
	until    string
	pageSize int
	maxPages int
	sortBy   string
	sortDesc bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.since, "since", "", "only items created at or after this time (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "only items created at or before this time (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "items per page (max 200)")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "stop after this many pages (0 = all)")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "field to sort by")
	cmd.Flags().BoolVar(&f.sortDesc, "desc", false, "sort descending")
}

// apply folds the flags into the builder. Pagination falls back to the
// configured search defaults when the flags are unset.
func (f *searchFlags) apply(b *query.Builder, defaults config.SearchConfig) error {
	if f.since != "" {
		t, err := parseTimeFlag(f.since)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		b.Since(t)
	}
	if f.until != "" {
		t, err := parseTimeFlag(f.until)
		if err != nil {
			return fmt.Errorf("parsing --until: %w", err)
		}
		b.Until(t)
	}
	switch {
	case f.pageSize > 0:
		b.PageSize(f.pageSize)
	case defaults.PageSize > 0:
		b.PageSize(defaults.PageSize)
	}
	switch {
	case f.maxPages > 0:
		b.MaxPages(f.maxPages)
	case defaults.MaxPages > 0:
		b.MaxPages(defaults.MaxPages)
	}
	if f.sortBy != "" {
		dir := query.SortAsc
		if f.sortDesc {
			dir = query.SortDesc
		}
		b.SortBy(f.sortBy, dir)
	}
	return nil
}

func parseTimeFlag(s string) (time.Time, error) {
	for _, layout := range []string{query.TimestampFormat, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)", s)
}
