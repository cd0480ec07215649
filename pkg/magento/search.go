package magento

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/donaldgifford/magento-go/internal/metrics"
	"github.com/donaldgifford/magento-go/pkg/query"
)

// SearchResult holds the aggregated records of a paginated search.
type SearchResult struct {
	// Items preserves the order the API yielded records across pages.
	Items []map[string]any
	// TotalCount is the size of the full matching set as reported by the
	// API, not just the items returned.
	TotalCount int
	// Pages is the number of page requests issued.
	Pages int
}

// searchEnvelope is the response shape of every searchCriteria endpoint.
type searchEnvelope struct {
	Items      []map[string]any `json:"items"`
	TotalCount *int             `json:"total_count"`
}

// ExecuteSearch runs the query against a searchCriteria endpoint, fetching
// successive pages until the full matching set is retrieved, an empty page
// arrives, or the builder's page bound is hit. The builder is cloned and
// left untouched.
//
// A non-success status on any page aborts the search; pages already fetched
// are discarded rather than returned as a silently truncated set. A
// total_count that disagrees with the items actually returned is logged as
// a warning, not treated as a failure.
func (c *Client) ExecuteSearch(ctx context.Context, endpoint string, b *query.Builder) (*SearchResult, error) {
	b = b.Clone()
	pageSize := b.EffectivePageSize()
	maxPages := b.MaxPagesValue()

	result := &SearchResult{TotalCount: -1}

	for page := 1; ; page++ {
		b.PageSize(pageSize).CurrentPage(page)

		resp, err := c.Get(ctx, endpoint, b.Encode())
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Page:       page,
				Message:    parseAPIMessage(resp.Body),
			}
		}

		envelope, err := decodeEnvelope(resp.Body, endpoint)
		if err != nil {
			return nil, err
		}

		result.Pages++
		metrics.SearchPagesTotal.Inc()

		if envelope.TotalCount != nil {
			result.TotalCount = *envelope.TotalCount
		}

		if len(envelope.Items) == 0 {
			break
		}
		result.Items = append(result.Items, envelope.Items...)

		if result.TotalCount >= 0 && len(result.Items) >= result.TotalCount {
			break
		}
		if len(envelope.Items) < pageSize {
			break
		}
		if maxPages > 0 && page >= maxPages {
			c.logger.Debug("search page bound reached",
				"endpoint", endpoint, "pages", page)
			break
		}
	}

	if result.TotalCount < 0 {
		result.TotalCount = len(result.Items)
	}
	if result.TotalCount != len(result.Items) {
		metrics.SearchCountMismatchTotal.Inc()
		c.logger.Warn("search total_count mismatch",
			"endpoint", endpoint,
			"total_count", result.TotalCount,
			"items", len(result.Items),
		)
	}

	return result, nil
}

// SearchOne runs the query with a page size of one and returns the first
// matching record, or ErrNotFound.
func (c *Client) SearchOne(ctx context.Context, endpoint string, b *query.Builder) (map[string]any, error) {
	b = b.Clone().PageSize(1).MaxPages(1)
	result, err := c.ExecuteSearch(ctx, endpoint, b)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}
	return result.Items[0], nil
}

func decodeEnvelope(body []byte, endpoint string) (*searchEnvelope, error) {
	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing search response from %s: %w", endpoint, err)
	}
	return &envelope, nil
}
