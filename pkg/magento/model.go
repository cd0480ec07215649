package magento

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Model wraps one resource's raw JSON record. It keeps a non-owning
// back-reference to the client so later calls (Refresh, Save, Delete) run
// with the same authentication context.
//
// A model is either built from a fetched record (fetched=true, persisted
// remotely) or from a locally assembled payload that has not been created
// yet. The resource's lifecycle variant decides which mutations are legal.
type Model struct {
	data    map[string]any
	pending map[string]any
	client  *Client
	res     ResourceType
	spec    resourceSpec
	fetched bool
}

func newModel(data map[string]any, client *Client, res ResourceType, spec resourceSpec, fetched bool) (*Model, error) {
	if !fetched && spec.Variant == VariantReadOnly {
		return nil, &OperationNotAllowedError{Op: "create", Resource: res}
	}
	if data == nil {
		data = map[string]any{}
	}
	return &Model{
		data:    data,
		pending: map[string]any{},
		client:  client,
		res:     res,
		spec:    spec,
		fetched: fetched,
	}, nil
}

// Resource returns the model's resource type.
func (m *Model) Resource() ResourceType {
	return m.res
}

// Fetched reports whether the model originated from a retrieval and is
// known to be persisted remotely.
func (m *Model) Fetched() bool {
	return m.fetched
}

// UID returns the value of the resource's identifier field, or "" when the
// model has not been persisted yet.
func (m *Model) UID() string {
	return stringifyID(m.data[m.spec.Identifier])
}

// Data returns the raw record backing the model. Callers must treat it as
// read-only; use Set to stage changes.
func (m *Model) Data() map[string]any {
	return m.data
}

// Get returns a raw field value.
func (m *Model) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

// GetString returns a field as a string, or "" when absent or not a string.
func (m *Model) GetString(key string) string {
	s, _ := m.data[key].(string)
	return s
}

// GetFloat returns a numeric field. JSON numbers decode as float64.
func (m *Model) GetFloat(key string) float64 {
	f, _ := m.data[key].(float64)
	return f
}

// GetInt returns a numeric field truncated to int.
func (m *Model) GetInt(key string) int {
	return int(m.GetFloat(key))
}

// GetBool returns a boolean field.
func (m *Model) GetBool(key string) bool {
	b, _ := m.data[key].(bool)
	return b
}

// Set stages a local field change. Nothing is sent until Save.
func (m *Model) Set(key string, value any) *Model {
	m.pending[key] = value
	return m
}

// itemEndpoint is the single-item endpoint for this model: <endpoint>/<uid>.
func (m *Model) itemEndpoint() string {
	return m.spec.Endpoint + "/" + url.PathEscape(m.UID())
}

// Save persists the model: a create when it was built locally, an update of
// the staged changes when it was fetched. Immutable and read-only resources
// reject Save regardless of state.
func (m *Model) Save(ctx context.Context) error {
	if m.spec.Variant != VariantMutable {
		return &OperationNotAllowedError{Op: "save", Resource: m.res}
	}
	if !m.fetched {
		return m.create(ctx)
	}
	return m.update(ctx)
}

func (m *Model) create(ctx context.Context) error {
	payload := make(map[string]any, len(m.data)+len(m.pending))
	for k, v := range m.data {
		payload[k] = v
	}
	for k, v := range m.pending {
		payload[k] = v
	}

	for _, key := range m.spec.RequiredKeys {
		if _, ok := payload[key]; !ok {
			return &ValidationError{Field: key}
		}
	}

	resp, err := m.client.Post(ctx, m.spec.CreateEndpoint, wrapPayload(m.spec.PayloadPrefix, payload))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &APIError{StatusCode: resp.StatusCode, Message: parseAPIMessage(resp.Body)}
	}

	if err := m.absorbCreateResponse(ctx, resp.Body); err != nil {
		return err
	}

	m.fetched = true
	m.pending = map[string]any{}
	m.client.logger.Info("created resource", "resource", m.res, "uid", m.UID())
	return nil
}

// absorbCreateResponse replaces the model data from a create response. The
// API returns either the full record or just the new item's id.
func (m *Model) absorbCreateResponse(ctx context.Context, body []byte) error {
	var record map[string]any
	if err := json.Unmarshal(body, &record); err == nil {
		m.data = record
		return nil
	}

	var id any
	if err := json.Unmarshal(body, &id); err != nil {
		return fmt.Errorf("parsing create response: %w", err)
	}
	uid := stringifyID(id)
	if uid == "" {
		return fmt.Errorf("create response carried no usable id: %s", body)
	}
	m.data = map[string]any{m.spec.Identifier: id}
	return m.Refresh(ctx)
}

func (m *Model) update(ctx context.Context) error {
	if len(m.pending) == 0 {
		m.client.logger.Debug("nothing to save", "resource", m.res, "uid", m.UID())
		return nil
	}

	payload := make(map[string]any, len(m.pending)+1)
	for k, v := range m.pending {
		payload[k] = v
	}
	// The identifier rides along so the API can address the record.
	payload[m.spec.Identifier] = m.data[m.spec.Identifier]

	resp, err := m.client.Put(ctx, m.itemEndpoint(), wrapPayload(m.spec.PayloadPrefix, payload))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &APIError{StatusCode: resp.StatusCode, Message: parseAPIMessage(resp.Body)}
	}

	m.pending = map[string]any{}
	return m.Refresh(ctx)
}

// Refresh re-reads the record from the API in place.
func (m *Model) Refresh(ctx context.Context) error {
	if m.UID() == "" {
		return fmt.Errorf("refresh %s: %w", m.res, ErrNotFound)
	}
	var record map[string]any
	if err := m.client.GetJSON(ctx, m.itemEndpoint(), "", &record); err != nil {
		return err
	}
	m.data = record
	m.fetched = true
	return nil
}

// Delete removes the record remotely. Only mutable resources may be deleted
// through their models.
func (m *Model) Delete(ctx context.Context) error {
	if m.spec.Variant != VariantMutable {
		return &OperationNotAllowedError{Op: "delete", Resource: m.res}
	}
	resp, err := m.client.Delete(ctx, m.itemEndpoint())
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &APIError{StatusCode: resp.StatusCode, Message: parseAPIMessage(resp.Body)}
	}
	m.client.logger.Info("deleted resource", "resource", m.res, "uid", m.UID())
	return nil
}

// CustomAttributes unpacks the record's custom_attributes list
// ([{attribute_code, value}, ...]) into a flat map.
func (m *Model) CustomAttributes() map[string]any {
	raw, _ := m.data["custom_attributes"].([]any)
	attrs := make(map[string]any, len(raw))
	for _, entry := range raw {
		attr, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		code, _ := attr["attribute_code"].(string)
		if code != "" {
			attrs[code] = attr["value"]
		}
	}
	return attrs
}

// PackAttributes converts a flat attribute map into the list shape the API
// expects for custom_attributes. Keys are emitted in sorted order so
// payloads are reproducible.
func PackAttributes(attrs map[string]any) []map[string]any {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	packed := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		packed = append(packed, map[string]any{"attribute_code": k, "value": attrs[k]})
	}
	return packed
}

func wrapPayload(prefix string, data map[string]any) map[string]any {
	if prefix == "" {
		return data
	}
	return map[string]any{prefix: data}
}

// stringifyID renders an identifier value of any JSON type as a string.
// Numeric ids decode as float64 and must not pick up an exponent or
// trailing fraction.
func stringifyID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case json.Number:
		return id.String()
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", id))
	}
}
