package pispi

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Operator is a filter comparison.
type Operator string

const (
	OpEq          Operator = "eq"
	OpNe          Operator = "ne"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpIn          Operator = "in"
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpBeginsWith  Operator = "beginsWith"
	OpEndsWith    Operator = "endsWith"
	OpExists      Operator = "exists"
)

var operators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true, OpIn: true,
	OpContains: true, OpNotContains: true, OpBeginsWith: true, OpEndsWith: true, OpExists: true,
}

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Page size bounds.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// Params are rendered query parameters.
type Params map[string]string

// Values converts p to url.Values.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for key, value := range p {
		v.Set(key, value)
	}
	return v
}

type filter struct {
	field string
	op    Operator
	value any
}

// QueryBuilder accumulates filters, a sort and pagination for list endpoints.
// The first invalid argument is recorded and returned by Err and Build; later
// calls keep chaining.
type QueryBuilder struct {
	filters []filter
	sort    string
	page    *int
	size    *int
	err     error
}

// NewQueryBuilder returns an empty builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Filter adds a predicate on field. Slice values are joined with commas.
func (q *QueryBuilder) Filter(field string, op Operator, value any) *QueryBuilder {
	switch {
	case field == "":
		q.fail(fmt.Errorf("%w: filter field must not be empty", ErrInvalidArgument))
	case !operators[op]:
		q.fail(fmt.Errorf("%w: unknown filter operator %q", ErrInvalidArgument, op))
	default:
		q.filters = append(q.filters, filter{field: field, op: op, value: value})
	}
	return q
}

// Sort orders results by field. A single sort is kept; the last call wins.
func (q *QueryBuilder) Sort(field string, dir Direction) *QueryBuilder {
	switch {
	case field == "":
		q.fail(fmt.Errorf("%w: sort field must not be empty", ErrInvalidArgument))
	case dir == Desc:
		q.sort = "-" + field
	case dir == Asc || dir == "":
		q.sort = field
	default:
		q.fail(fmt.Errorf("%w: unknown sort direction %q", ErrInvalidArgument, dir))
	}
	return q
}

// Page selects the result page.
func (q *QueryBuilder) Page(n int) *QueryBuilder {
	q.page = &n
	return q
}

// Size sets the page size. Values outside [MinPageSize, MaxPageSize] are
// rejected immediately: Err reports the failure right after the call.
func (q *QueryBuilder) Size(n int) *QueryBuilder {
	if n < MinPageSize || n > MaxPageSize {
		q.fail(fmt.Errorf("%w: size must be between %d and %d, got %d", ErrInvalidArgument, MinPageSize, MaxPageSize, n))
		return q
	}
	q.size = &n
	return q
}

// Err returns the first invalid argument passed to the builder.
func (q *QueryBuilder) Err() error {
	return q.err
}

// Build renders the query parameters.
func (q *QueryBuilder) Build() (Params, error) {
	if q.err != nil {
		return nil, q.err
	}

	params := Params{}
	for _, f := range q.filters {
		key := f.field
		if f.op != OpEq {
			key = fmt.Sprintf("%s[%s]", f.field, f.op)
		}
		params[key] = formatValue(f.value)
	}
	if q.sort != "" {
		params["sort"] = q.sort
	}
	if q.page != nil {
		params["page"] = strconv.Itoa(*q.page)
	}
	if q.size != nil {
		params["size"] = strconv.Itoa(*q.size)
	}
	return params, nil
}

func (q *QueryBuilder) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
