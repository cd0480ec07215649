package magento

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/donaldgifford/magento-go/pkg/query"
)

// Manager is the per-resource façade over search and CRUD. It is cheap to
// construct; each call composes its own query builder, so independent calls
// from separate goroutines are fine as long as no Builder is shared.
type Manager struct {
	client *Client
	res    ResourceType
	spec   resourceSpec
}

// Manager returns a manager for one of the known resource types.
func (c *Client) Manager(res ResourceType) *Manager {
	spec := specFor(res, "")
	return &Manager{client: c, res: res, spec: spec}
}

// EndpointManager returns a generic manager bound to an arbitrary
// searchCriteria endpoint. Results wrap as read-only generic models.
func (c *Client) EndpointManager(endpoint string) *Manager {
	return &Manager{client: c, res: ResourceGeneric, spec: specFor(ResourceGeneric, endpoint)}
}

// Resource returns the manager's resource type.
func (m *Manager) Resource() ResourceType {
	return m.res
}

// Search returns a fresh query builder scoped to this resource. The builder
// is owned by the caller for a single search composition.
func (m *Manager) Search() *query.Builder {
	return query.New().IdentifierField(m.spec.Identifier)
}

// Execute runs the builder against the resource's search endpoint and maps
// the aggregated records to models, preserving API order.
func (m *Manager) Execute(ctx context.Context, b *query.Builder) ([]*Model, error) {
	result, err := m.client.ExecuteSearch(ctx, m.spec.SearchEndpoint, b)
	if err != nil {
		return nil, err
	}
	return toModels(result.Items, m)
}

// ExecuteOne runs the builder and returns the first match, or ErrNotFound.
func (m *Manager) ExecuteOne(ctx context.Context, b *query.Builder) (*Model, error) {
	record, err := m.client.SearchOne(ctx, m.spec.SearchEndpoint, b)
	if err != nil {
		return nil, err
	}
	return toModel(record, m)
}

// All fetches every item the endpoint will yield.
func (m *Manager) All(ctx context.Context) ([]*Model, error) {
	return m.Execute(ctx, m.Search())
}

// ByID retrieves a single item through the item endpoint. A zero-match
// response surfaces as ErrNotFound.
func (m *Manager) ByID(ctx context.Context, id string) (*Model, error) {
	endpoint := m.spec.Endpoint + "/" + url.PathEscape(id)

	resp, err := m.client.Get(ctx, endpoint, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %q: %w", m.res, id, ErrNotFound)
	}
	if !resp.OK() {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: parseAPIMessage(resp.Body)}
	}

	var record map[string]any
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		return nil, fmt.Errorf("parsing response from %s: %w", endpoint, err)
	}
	return toModel(record, m)
}

// ByField searches for items whose field equals value.
func (m *Manager) ByField(ctx context.Context, field, value string) ([]*Model, error) {
	return m.Execute(ctx, m.Search().AddCriteria(field, value, query.ConditionEq))
}

// FirstByField returns the first item whose field equals value, or
// ErrNotFound.
func (m *Manager) FirstByField(ctx context.Context, field, value string) (*Model, error) {
	return m.ExecuteOne(ctx, m.Search().AddCriteria(field, value, query.ConditionEq))
}

// ByList searches with a single `in` criterion over the given values.
func (m *Manager) ByList(ctx context.Context, field string, values ...string) ([]*Model, error) {
	return m.Execute(ctx, m.Search().ByList(field, values...))
}

// CreatedBetween searches for items created in the inclusive range
// [since, until]. A zero bound is skipped.
func (m *Manager) CreatedBetween(ctx context.Context, since, until time.Time) ([]*Model, error) {
	b := m.Search()
	if !since.IsZero() {
		b.Since(since)
	}
	if !until.IsZero() {
		b.Until(until)
	}
	return m.Execute(ctx, b)
}

// Create builds a model from the payload and persists it. Required
// identifying fields are validated before any network call. Read-only
// resources reject creation.
func (m *Manager) Create(ctx context.Context, data map[string]any) (*Model, error) {
	model, err := newModel(data, m.client, m.res, m.spec, false)
	if err != nil {
		return nil, err
	}
	if err := model.create(ctx); err != nil {
		return nil, err
	}
	return model, nil
}

// GetOrCreate looks the item up by the identifier field extracted from
// data; when present remotely the existing model is returned with
// created=false, otherwise a create is issued and created=true.
//
// The check and the create are two separate calls with no remote
// synchronization between them: concurrent callers racing on the same
// identifier can both create. That window is inherent to the API and is a
// documented limitation, not something this method papers over.
func (m *Manager) GetOrCreate(ctx context.Context, data map[string]any, identifierField string) (*Model, bool, error) {
	value := stringifyID(data[identifierField])
	if value == "" {
		return nil, false, &ValidationError{Field: identifierField}
	}

	existing, err := m.FirstByField(ctx, identifierField, value)
	if err == nil {
		m.client.logger.Debug("get_or_create found existing",
			"resource", m.res, "identifier", value)
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	m.client.logger.Debug("get_or_create creating",
		"resource", m.res, "identifier", value)
	created, err := m.Create(ctx, data)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
