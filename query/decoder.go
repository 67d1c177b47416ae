// Package query decodes the client list descriptor into a validated
// realestates.QuerySpec.
//
// The descriptor is a JSON object carried in the "data" query parameter:
//
//	{
//	  "query":  {"price": {"$lte": 50000}, "tags": [{"name": "...", "value": "..."}]},
//	  "sort":   {"price": -1, "updatedAt": -1},
//	  "fields": {"price": 1, "user": 1},
//	  "count":  20,
//	  "cursor": "eyJkIjoibiIsInYiOnsuLi59fQ"
//	}
//
// Malformed syntax and out-of-policy requests (unknown sort keys, counts out
// of range, filters on non-indexed fields) fail with BadRequest. Payloads that
// parse but put an operator where a field or value belongs fail with
// UnprocessableEntity.
package query

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
)

var descriptorKeys = map[string]bool{
	"query":  true,
	"sort":   true,
	"fields": true,
	"count":  true,
	"cursor": true,
}

var operators = map[string]filter.Op{
	"$eq":  filter.OpEq,
	"$ne":  filter.OpNe,
	"$gt":  filter.OpGt,
	"$gte": filter.OpGte,
	"$lt":  filter.OpLt,
	"$lte": filter.OpLte,
	"$in":  filter.OpIn,
	"$nin": filter.OpNin,
}

// Decoder turns raw descriptors into QuerySpecs.
type Decoder struct {
	index *Index
	pages *realestates.PageConfig
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithIndex replaces DefaultIndex.
func WithIndex(index *Index) Option {
	return func(d *Decoder) {
		if index != nil {
			d.index = index
		}
	}
}

// WithPageConfig replaces the default page size limits.
func WithPageConfig(cfg *realestates.PageConfig) Option {
	return func(d *Decoder) {
		if cfg != nil {
			d.pages = cfg
		}
	}
}

// NewDecoder creates a Decoder using DefaultIndex and the default page config.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		index: DefaultIndex,
		pages: realestates.NewPageConfig(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses raw with a default Decoder.
func Decode(raw string) (*realestates.QuerySpec, error) {
	return NewDecoder().Decode(raw)
}

// Decode parses and validates a raw descriptor. An empty descriptor yields
// the default spec: default count, no sort, no filter.
func (d *Decoder) Decode(raw string) (*realestates.QuerySpec, error) {
	spec := &realestates.QuerySpec{
		Filter: filter.All{},
		Count:  d.pages.EffectiveCount(nil),
	}
	if strings.TrimSpace(raw) == "" {
		return spec, nil
	}

	var parts map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parts); err != nil || parts == nil {
		return nil, realestates.BadRequest("data is not a valid JSON object")
	}
	for key := range parts {
		if !descriptorKeys[key] {
			return nil, realestates.BadRequest("unknown data key %q", key)
		}
	}

	if v, ok := present(parts, "count"); ok {
		count, err := d.decodeCount(v)
		if err != nil {
			return nil, err
		}
		spec.Count = count
	}

	if v, ok := present(parts, "sort"); ok {
		sorts, err := d.decodeSort(v)
		if err != nil {
			return nil, err
		}
		spec.Sort = sorts
	}

	if v, ok := present(parts, "fields"); ok {
		fields, err := d.decodeFields(v)
		if err != nil {
			return nil, err
		}
		spec.Fields = fields
	}

	if v, ok := present(parts, "query"); ok {
		node, err := d.decodeQuery(v)
		if err != nil {
			return nil, err
		}
		spec.Filter = node
		spec.Query = v
	}

	if v, ok := present(parts, "cursor"); ok {
		if err := json.Unmarshal(v, &spec.Cursor); err != nil || spec.Cursor == "" {
			return nil, realestates.BadRequest("cursor must be a non-empty string")
		}
	}

	return spec, nil
}

// present returns a part unless it is missing or JSON null.
func present(parts map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := parts[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func (d *Decoder) decodeCount(v json.RawMessage) (int, error) {
	var raw any
	if err := unmarshalNumber(v, &raw); err != nil {
		return 0, realestates.BadRequest("count must be an integer")
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, realestates.BadRequest("count must be an integer")
	}
	i, err := n.Int64()
	if err != nil {
		return 0, realestates.BadRequest("count must be an integer")
	}
	count := int(i)
	if err := d.pages.Validate(&count); err != nil {
		return 0, realestates.BadRequest("%s", err.Error())
	}
	return count, nil
}

// decodeSort reads the sort object token by token to keep key order, which
// decides precedence between sort keys.
func (d *Decoder) decodeSort(v json.RawMessage) ([]realestates.OrderBy, error) {
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, realestates.BadRequest("sort must be an object")
	}

	var sorts []realestates.OrderBy
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, realestates.BadRequest("sort must be an object")
		}
		field, _ := tok.(string)
		if !d.index.Sortable[field] {
			return nil, realestates.BadRequest("%q is not a sortable field", field)
		}
		if seen[field] {
			return nil, realestates.BadRequest("duplicate sort field %q", field)
		}
		seen[field] = true

		tok, err = dec.Token()
		if err != nil {
			return nil, realestates.BadRequest("invalid sort value for %q", field)
		}
		n, ok := tok.(json.Number)
		if !ok || (n.String() != "1" && n.String() != "-1") {
			return nil, realestates.BadRequest("invalid sort value for %q, expected 1 or -1", field)
		}
		sorts = append(sorts, realestates.OrderBy{Column: field, Desc: n.String() == "-1"})
	}
	if _, err := dec.Token(); err != nil {
		return nil, realestates.BadRequest("sort must be an object")
	}
	return sorts, nil
}

func (d *Decoder) decodeFields(v json.RawMessage) ([]string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(v, &m); err != nil {
		return nil, realestates.BadRequest("fields must be an object")
	}

	fields := make([]string, 0, len(m))
	for field, flag := range m {
		if !d.index.Projectable[field] {
			return nil, realestates.BadRequest("%q is not a known field", field)
		}
		if string(bytes.TrimSpace(flag)) != "1" {
			return nil, realestates.BadRequest("invalid projection value for %q, expected 1", field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields, nil
}

func (d *Decoder) decodeQuery(v json.RawMessage) (filter.Node, error) {
	var q any
	if err := unmarshalNumber(v, &q); err != nil {
		return nil, realestates.BadRequest("query must be an object")
	}
	m, ok := q.(map[string]any)
	if !ok {
		return nil, realestates.BadRequest("query must be an object")
	}
	return d.parseQuery(m)
}

func (d *Decoder) parseQuery(m map[string]any) (filter.Node, error) {
	nodes := make([]filter.Node, 0, len(m))
	for _, key := range sortedKeys(m) {
		value := m[key]

		if strings.HasPrefix(key, "$") {
			node, err := d.parseLogical(key, value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			continue
		}

		kind, ok := d.index.Filterable[key]
		if !ok {
			return nil, realestates.BadRequest("%q is not an indexed field", key)
		}

		var (
			node filter.Node
			err  error
		)
		switch kind {
		case KindTags:
			node, err = parseTags(value)
		case KindPermissions:
			node, err = parsePermissions(value)
		default:
			node, err = parseField(key, kind, value)
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return filter.Conjoin(nodes...), nil
}

func (d *Decoder) parseLogical(op string, value any) (filter.Node, error) {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		if op == "$and" || op == "$or" || op == "$nor" {
			return nil, realestates.UnprocessableEntity("%s expects a non-empty array", op)
		}
		return nil, realestates.UnprocessableEntity("unexpected operator %s", op)
	}

	children := make([]filter.Node, 0, len(list))
	for _, item := range list {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, realestates.UnprocessableEntity("%s expects an array of objects", op)
		}
		node, err := d.parseQuery(sub)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}

	switch op {
	case "$and":
		return filter.Conjoin(children...), nil
	case "$or":
		return filter.Or{Nodes: children}, nil
	case "$nor":
		return filter.Nor{Nodes: children}, nil
	}
	return nil, realestates.UnprocessableEntity("unexpected operator %s", op)
}

// parseField handles scalar fields: a plain value means equality, an object
// must hold only recognised operators.
func parseField(field string, kind Kind, value any) (filter.Node, error) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			return nil, realestates.UnprocessableEntity("empty filter for %q", field)
		}
		nodes := make([]filter.Node, 0, len(v))
		for _, key := range sortedKeys(v) {
			op, ok := operators[key]
			if !ok {
				return nil, realestates.UnprocessableEntity("unexpected key %q in filter for %q", key, field)
			}
			operand, err := operandFor(field, kind, op, v[key])
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, filter.Cmp(field, op, operand))
		}
		return filter.Conjoin(nodes...), nil
	case []any:
		return nil, realestates.UnprocessableEntity("unexpected array in filter for %q", field)
	}

	operand, err := coerce(field, kind, value)
	if err != nil {
		return nil, err
	}
	return filter.Cmp(field, filter.OpEq, operand), nil
}

func operandFor(field string, kind Kind, op filter.Op, value any) (any, error) {
	if op != filter.OpIn && op != filter.OpNin {
		return coerce(field, kind, value)
	}

	list, ok := value.([]any)
	if !ok {
		return nil, realestates.UnprocessableEntity("%s on %q expects an array", op, field)
	}
	out := make([]any, len(list))
	for i, item := range list {
		v, err := coerce(field, kind, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func coerce(field string, kind Kind, value any) (any, error) {
	switch kind {
	case KindNumber:
		if n, ok := value.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		}
		return nil, realestates.UnprocessableEntity("%q expects a number", field)
	case KindID:
		if s, ok := value.(string); ok {
			if _, err := uuid.Parse(s); err == nil {
				return s, nil
			}
		}
		return nil, realestates.UnprocessableEntity("%q expects a uuid", field)
	case KindTime:
		if s, ok := value.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t, nil
			}
		}
		return nil, realestates.UnprocessableEntity("%q expects an RFC 3339 time", field)
	default:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, realestates.UnprocessableEntity("%q expects a string", field)
	}
}

// parseTags accepts only an array of {name, value} objects. Every entry must
// match, each on some tag of the record.
func parseTags(value any) (filter.Node, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, realestates.UnprocessableEntity("tags expects an array of {name, value} objects")
	}

	nodes := make([]filter.Node, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok || len(entry) != 2 {
			return nil, realestates.UnprocessableEntity("tags expects an array of {name, value} objects")
		}
		name, okName := entry["name"].(string)
		val, okValue := entry["value"].(string)
		if !okName || !okValue {
			return nil, realestates.UnprocessableEntity("tags expects an array of {name, value} objects")
		}
		nodes = append(nodes, filter.ElemMatch{
			Field: "tags",
			Node: filter.Conjoin(
				filter.Cmp("name", filter.OpEq, name),
				filter.Cmp("value", filter.OpEq, val),
			),
		})
	}
	return filter.Conjoin(nodes...), nil
}

// parsePermissions accepts a single grant condition or an object of
// $or/$nor/$and over grant conditions.
func parsePermissions(value any) (filter.Node, error) {
	m, ok := value.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, realestates.UnprocessableEntity("permissions expects an object")
	}

	hasOperator := false
	for key := range m {
		if strings.HasPrefix(key, "$") {
			hasOperator = true
			break
		}
	}
	if !hasOperator {
		return grantCondition(m)
	}

	nodes := make([]filter.Node, 0, len(m))
	for _, key := range sortedKeys(m) {
		list, ok := m[key].([]any)
		if !ok || len(list) == 0 {
			return nil, realestates.UnprocessableEntity("permissions %s expects a non-empty array", key)
		}
		children := make([]filter.Node, 0, len(list))
		for _, item := range list {
			cond, ok := item.(map[string]any)
			if !ok {
				return nil, realestates.UnprocessableEntity("permissions %s expects an array of objects", key)
			}
			node, err := grantCondition(cond)
			if err != nil {
				return nil, err
			}
			children = append(children, node)
		}

		switch key {
		case "$or":
			nodes = append(nodes, filter.Or{Nodes: children})
		case "$nor":
			nodes = append(nodes, filter.Nor{Nodes: children})
		case "$and":
			nodes = append(nodes, filter.Conjoin(children...))
		default:
			return nil, realestates.UnprocessableEntity("unexpected key %q in permissions filter", key)
		}
	}
	return filter.Conjoin(nodes...), nil
}

func grantCondition(m map[string]any) (filter.Node, error) {
	var nodes []filter.Node
	grantees := 0

	for _, key := range sortedKeys(m) {
		switch key {
		case "user", "group":
			id, ok := m[key].(string)
			if !ok {
				return nil, realestates.UnprocessableEntity("permissions %s expects a string", key)
			}
			grantees++
			nodes = append(nodes, filter.Cmp(key, filter.OpEq, id))
		case "actions":
			node, err := actionsCondition(m[key])
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		default:
			return nil, realestates.UnprocessableEntity("unexpected key %q in permissions filter", key)
		}
	}
	if grantees != 1 {
		return nil, realestates.UnprocessableEntity("permissions filter needs exactly one of user or group")
	}

	return filter.ElemMatch{Field: "permissions", Node: filter.Conjoin(nodes...)}, nil
}

func actionsCondition(value any) (filter.Node, error) {
	switch v := value.(type) {
	case string:
		return filter.Cmp("actions", filter.OpEq, v), nil
	case map[string]any:
		if len(v) != 1 {
			return nil, realestates.UnprocessableEntity("permissions actions expects one of $in or $all")
		}
		for key, raw := range v {
			actions, err := stringList(raw)
			if err != nil {
				return nil, err
			}
			switch key {
			case "$in":
				return filter.Cmp("actions", filter.OpIn, actions), nil
			case "$all":
				nodes := make([]filter.Node, len(actions))
				for i, a := range actions {
					nodes[i] = filter.Cmp("actions", filter.OpEq, a)
				}
				return filter.Conjoin(nodes...), nil
			}
			return nil, realestates.UnprocessableEntity("unexpected key %q in permissions actions", key)
		}
	}
	return nil, realestates.UnprocessableEntity("permissions actions expects a string or an operator object")
}

func stringList(value any) ([]any, error) {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil, realestates.UnprocessableEntity("permissions actions expects a non-empty array of strings")
	}
	for _, item := range list {
		if _, ok := item.(string); !ok {
			return nil, realestates.UnprocessableEntity("permissions actions expects a non-empty array of strings")
		}
	}
	return list, nil
}

func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
