package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/magento-go/internal/config"
	"github.com/donaldgifford/magento-go/pkg/query"
)

func TestSearchFlagsApply_PaginationDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		flags        searchFlags
		defaults     config.SearchConfig
		wantPageSize int
		wantMaxPages int
	}{
		{
			name:         "config defaults used when flags unset",
			defaults:     config.SearchConfig{PageSize: 50, MaxPages: 4},
			wantPageSize: 50,
			wantMaxPages: 4,
		},
		{
			name:         "flags override config",
			flags:        searchFlags{pageSize: 25, maxPages: 2},
			defaults:     config.SearchConfig{PageSize: 50, MaxPages: 4},
			wantPageSize: 25,
			wantMaxPages: 2,
		},
		{
			name:         "builder defaults when neither is set",
			wantPageSize: query.DefaultPageSize,
			wantMaxPages: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := query.New()
			require.NoError(t, tt.flags.apply(b, tt.defaults))

			assert.Equal(t, tt.wantPageSize, b.EffectivePageSize())
			assert.Equal(t, tt.wantMaxPages, b.MaxPagesValue())
		})
	}
}

func TestSearchFlagsApply_TimeRange(t *testing.T) {
	t.Parallel()

	flags := searchFlags{since: "2026-01-01", until: "2026-06-30"}
	b := query.New()
	require.NoError(t, flags.apply(b, config.SearchConfig{}))

	encoded := b.Encode()
	assert.Contains(t, encoded, "created_at")
	assert.Contains(t, encoded, "gteq")
	assert.Contains(t, encoded, "lteq")
}

func TestSearchFlagsApply_BadTime(t *testing.T) {
	t.Parallel()

	flags := searchFlags{since: "last tuesday"}
	err := flags.apply(query.New(), config.SearchConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--since")
}
