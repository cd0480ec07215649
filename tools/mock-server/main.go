// Package main implements a mock Magento 2 REST server for local
// development. It serves canned records from a JSON fixture through the
// searchCriteria interface and the admin token endpoint, so client code can
// be exercised without a real store.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// storeFixture is the on-disk shape of the mock store's catalog.
type storeFixture struct {
	Resources []resourceFixture `json:"resources"`
}

// resourceFixture binds one searchCriteria endpoint to its records.
type resourceFixture struct {
	// Endpoint is the path below /rest/V1, e.g. "orders" or
	// "customers/search".
	Endpoint string `json:"endpoint"`
	// ItemEndpoint, when set, also serves single records as
	// <ItemEndpoint>/<identifier value>.
	ItemEndpoint string           `json:"item_endpoint"`
	Identifier   string           `json:"identifier"`
	Items        []map[string]any `json:"items"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/store.json", "path to store fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}

	e := newServer(logger, fixture)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Magento server", "addr", addr, "resources", len(fixture.Resources))

	if err := e.Start(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*storeFixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fixture storeFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fixture, nil
}

// newServer wires the echo instance: token endpoint, search endpoints, and
// item endpoints per the fixture.
func newServer(logger *slog.Logger, fixture *storeFixture) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(requestLog(logger))

	e.POST("/rest/V1/integration/admin/token", tokenHandler(logger))

	for _, res := range fixture.Resources {
		e.GET("/rest/V1/"+res.Endpoint, searchHandler(logger, res))
		if res.ItemEndpoint != "" {
			e.GET("/rest/V1/"+res.ItemEndpoint+"/:id", itemHandler(res))
		}
	}

	return e
}

// requestLog logs each request with a generated request id, mirroring what
// a store behind a reverse proxy would emit.
func requestLog(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			logger.Debug("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)
			return err
		}
	}
}

func tokenHandler(logger *slog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.Bind(&creds); err != nil || creds.Username == "" || creds.Password == "" {
			logger.Warn("token request missing credentials")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"message": "The account sign-in was incorrect or your account is disabled temporarily.",
			})
		}

		token := "mock-admin-" + uuid.NewString()
		logger.Info("issued mock token", "username", creds.Username)
		// Magento returns the token as a bare JSON string.
		return c.JSON(http.StatusOK, token)
	}
}

func searchHandler(logger *slog.Logger, res resourceFixture) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParams()

		matched := filterItems(res.Items, q)
		total := len(matched)

		pageSize := intParam(q.Get("searchCriteria[pageSize]"), 20)
		page := intParam(q.Get("searchCriteria[currentPage]"), 1)

		start := (page - 1) * pageSize
		end := start + pageSize
		switch {
		case start >= total:
			matched = []map[string]any{}
		case end > total:
			matched = matched[start:total]
		default:
			matched = matched[start:end]
		}

		logger.Info("search",
			"endpoint", res.Endpoint,
			"matched", total,
			"returned", len(matched),
			"page", page,
			"page_size", pageSize,
		)

		return c.JSON(http.StatusOK, map[string]any{
			"items":       matched,
			"total_count": total,
		})
	}
}

func itemHandler(res resourceFixture) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		for _, item := range res.Items {
			if valueText(item[res.Identifier]) == id {
				return c.JSON(http.StatusOK, item)
			}
		}
		return c.JSON(http.StatusNotFound, map[string]any{
			"message": "No such entity with %fieldName = %fieldValue",
			"parameters": map[string]string{
				"fieldName":  res.Identifier,
				"fieldValue": id,
			},
		})
	}
}

// filterItems applies the eq filters of every filter group. OR within a
// group, AND across groups, matching how a real store evaluates
// searchCriteria. Conditions other than eq are ignored.
func filterItems(items []map[string]any, q map[string][]string) []map[string]any {
	matched := make([]map[string]any, 0, len(items))

	for _, item := range items {
		if matchesAllGroups(item, q) {
			matched = append(matched, item)
		}
	}
	return matched
}

func matchesAllGroups(item map[string]any, q map[string][]string) bool {
	for g := 0; ; g++ {
		prefix := fmt.Sprintf("searchCriteria[filter_groups][%d][filters]", g)
		if _, ok := q[prefix+"[0][field]"]; !ok {
			return true
		}
		if !matchesGroup(item, q, prefix) {
			return false
		}
	}
}

func matchesGroup(item map[string]any, q map[string][]string, prefix string) bool {
	for f := 0; ; f++ {
		fields, ok := q[fmt.Sprintf("%s[%d][field]", prefix, f)]
		if !ok {
			return false
		}
		field := fields[0]
		value := first(q[fmt.Sprintf("%s[%d][value]", prefix, f)])
		cond := first(q[fmt.Sprintf("%s[%d][condition_type]", prefix, f)])

		if cond != "" && cond != "eq" {
			// Unsupported conditions match everything.
			return true
		}
		if valueText(item[field]) == value {
			return true
		}
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func intParam(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return fallback
}

func valueText(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}
