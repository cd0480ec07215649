// Package query builds Magento searchCriteria query strings from filter
// criteria, sort orders, and pagination settings.
//
// Filters are organized in groups following the Magento convention: criteria
// within a group are ORed, groups are ANDed against each other. Rendering is
// deterministic — groups and filters appear in insertion order.
package query

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Condition is a searchCriteria condition_type.
type Condition string

// Condition types supported by the Magento search API.
const (
	ConditionEq      Condition = "eq"
	ConditionNeq     Condition = "neq"
	ConditionGt      Condition = "gt"
	ConditionLt      Condition = "lt"
	ConditionGteq    Condition = "gteq"
	ConditionLteq    Condition = "lteq"
	ConditionLike    Condition = "like"
	ConditionIn      Condition = "in"
	ConditionNin     Condition = "nin"
	ConditionNull    Condition = "null"
	ConditionNotNull Condition = "notnull"
)

// SortDirection is a searchCriteria sort direction.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

const (
	// DefaultPageSize is used when no page size is set on a Builder.
	DefaultPageSize = 100
	// MaxPageSize is the Magento hard cap on pageSize; larger values are clamped.
	MaxPageSize = 200

	// TimestampFormat is the timestamp layout the Magento API expects.
	TimestampFormat = "2006-01-02 15:04:05"

	defaultTimestampField  = "created_at"
	defaultIdentifierField = "entity_id"
)

// Criterion is a single filter condition. Once appended to a Builder it is
// never modified.
type Criterion struct {
	Field     string
	Value     string
	Condition Condition
}

// SortOrder pairs a field with a sort direction. The first sort order added
// to a Builder is the primary sort key.
type SortOrder struct {
	Field     string
	Direction SortDirection
}

// Builder accumulates filter groups, sort orders, and pagination settings and
// renders them into a canonical query string. The zero value is not usable;
// call New. A Builder is meant for a single search composition and is not
// safe for concurrent use — Clone it instead of sharing.
type Builder struct {
	groups    [][]Criterion
	sorts     []SortOrder
	fields    []string
	pageSize  int
	page      int
	tsField   string
	idField   string
	maxPages  int
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{
		tsField: defaultTimestampField,
		idField: defaultIdentifierField,
	}
}

// Clone returns a deep copy of the Builder.
func (b *Builder) Clone() *Builder {
	c := *b
	c.groups = make([][]Criterion, len(b.groups))
	for i := range b.groups {
		c.groups[i] = append([]Criterion(nil), b.groups[i]...)
	}
	c.sorts = append([]SortOrder(nil), b.sorts...)
	c.fields = append([]string(nil), b.fields...)
	return &c
}

// TimestampField overrides the field Since and Until filter on.
func (b *Builder) TimestampField(field string) *Builder {
	b.tsField = field
	return b
}

// IdentifierField overrides the field ByID filters on and the field
// RestrictFields always includes in the response shape.
func (b *Builder) IdentifierField(field string) *Builder {
	b.idField = field
	return b
}

// AddCriteria appends a criterion as a new filter group, ANDed against all
// previously added groups. Callers needing OR semantics add further criteria
// to the same group with AddToGroup.
func (b *Builder) AddCriteria(field, value string, cond Condition) *Builder {
	b.groups = append(b.groups, []Criterion{{Field: field, Value: value, Condition: cond}})
	return b
}

// AddToGroup appends a criterion to the group with the given index, ORing it
// with the group's existing criteria. An index equal to the current group
// count starts a new group; anything further out of range is ignored.
func (b *Builder) AddToGroup(group int, field, value string, cond Condition) *Builder {
	if group < 0 || group > len(b.groups) {
		return b
	}
	if group == len(b.groups) {
		return b.AddCriteria(field, value, cond)
	}
	b.groups[group] = append(b.groups[group], Criterion{Field: field, Value: value, Condition: cond})
	return b
}

// LastGroup returns the index of the most recently added filter group, or -1
// if no criteria have been added.
func (b *Builder) LastGroup() int {
	return len(b.groups) - 1
}

// ByID filters on the identifier field with an eq condition.
func (b *Builder) ByID(id string) *Builder {
	return b.AddCriteria(b.idField, id, ConditionEq)
}

// ByList filters with a single `in` criterion whose value is the given
// values joined by commas.
func (b *Builder) ByList(field string, values ...string) *Builder {
	return b.AddCriteria(field, strings.Join(values, ","), ConditionIn)
}

// Since filters for items whose timestamp field is at or after t.
func (b *Builder) Since(t time.Time) *Builder {
	return b.AddCriteria(b.tsField, t.Format(TimestampFormat), ConditionGteq)
}

// Until filters for items whose timestamp field is at or before t.
func (b *Builder) Until(t time.Time) *Builder {
	return b.AddCriteria(b.tsField, t.Format(TimestampFormat), ConditionLteq)
}

// SortBy adds a sort order. Sorting again on a field already present
// replaces its direction in place instead of appending a duplicate.
func (b *Builder) SortBy(field string, dir SortDirection) *Builder {
	for i := range b.sorts {
		if b.sorts[i].Field == field {
			b.sorts[i].Direction = dir
			return b
		}
	}
	b.sorts = append(b.sorts, SortOrder{Field: field, Direction: dir})
	return b
}

// RestrictFields constrains the response items to the given fields. The
// identifier field is always included so results stay addressable.
func (b *Builder) RestrictFields(fields ...string) *Builder {
	b.fields = append([]string(nil), fields...)
	return b
}

// PageSize sets the number of items per page, clamped to [1, MaxPageSize].
func (b *Builder) PageSize(n int) *Builder {
	switch {
	case n < 1:
		n = 1
	case n > MaxPageSize:
		n = MaxPageSize
	}
	b.pageSize = n
	return b
}

// CurrentPage sets the page to request, starting at 1.
func (b *Builder) CurrentPage(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.page = n
	return b
}

// MaxPages bounds how many pages a paginated search may fetch. Zero means
// no bound.
func (b *Builder) MaxPages(n int) *Builder {
	if n < 0 {
		n = 0
	}
	b.maxPages = n
	return b
}

// EffectivePageSize returns the page size that Encode will render.
func (b *Builder) EffectivePageSize() int {
	if b.pageSize == 0 {
		return DefaultPageSize
	}
	return b.pageSize
}

// MaxPagesValue returns the configured page bound, or 0 for unbounded.
func (b *Builder) MaxPagesValue() int {
	return b.maxPages
}

// Encode renders the accumulated criteria into the canonical query string:
// filter groups in insertion order, filters within each group in insertion
// order, then sort orders, then pagination, then the fields restriction.
// Manual rendering is required because url.Values.Encode sorts keys
// alphabetically, which would interleave group indices.
func (b *Builder) Encode() string {
	var sb strings.Builder

	for g, group := range b.groups {
		for f, c := range group {
			prefix := fmt.Sprintf("searchCriteria[filter_groups][%d][filters][%d]", g, f)
			writeParam(&sb, prefix+"[field]", c.Field)
			writeParam(&sb, prefix+"[value]", c.Value)
			writeParam(&sb, prefix+"[condition_type]", string(c.Condition))
		}
	}

	for i, s := range b.sorts {
		prefix := fmt.Sprintf("searchCriteria[sortOrders][%d]", i)
		writeParam(&sb, prefix+"[field]", s.Field)
		writeParam(&sb, prefix+"[direction]", string(s.Direction))
	}

	if b.pageSize > 0 || b.page > 0 {
		writeParam(&sb, "searchCriteria[pageSize]", strconv.Itoa(b.EffectivePageSize()))
		page := b.page
		if page == 0 {
			page = 1
		}
		writeParam(&sb, "searchCriteria[currentPage]", strconv.Itoa(page))
	}

	if len(b.fields) > 0 {
		fields := b.fields
		if !slices.Contains(fields, b.idField) {
			fields = append(append([]string(nil), fields...), b.idField)
		}
		writeParam(&sb, "fields", "items["+strings.Join(fields, ",")+"]")
	}

	return sb.String()
}

func writeParam(sb *strings.Builder, key, value string) {
	if sb.Len() > 0 {
		sb.WriteByte('&')
	}
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(url.QueryEscape(value))
}
