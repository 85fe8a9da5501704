package graph

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/dialect"
	"github.com/syssam/kelo/dialect/sql"
	"github.com/syssam/kelo/naming"
	"github.com/syssam/kelo/privacy"
	"github.com/syssam/kelo/schema"
)

// Instance is a materialized entity: column values in application casing,
// plus resolved relation results keyed by relation name. A has-many or
// many-to-many relation resolves to a []Instance (empty, never nil); a
// belongs-to relation resolves to an Instance or untyped nil.
type Instance map[string]any

// Option configures a Materializer or a Resolver.
type Option func(*options)

type options struct {
	mapper   *naming.Mapper
	strategy Strategy
	policy   privacy.Policy
}

// WithMapper sets the identifier mapper translating application casing
// to storage casing. The default maps nothing.
func WithMapper(m *naming.Mapper) Option {
	return func(o *options) { o.mapper = m }
}

// WithStrategy sets the default eager-loading strategy of a Resolver.
// Materializers ignore it.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithPolicy sets the access policy evaluated before every resolve and
// before every inserted entity. The default allows everything.
func WithPolicy(p privacy.Policy) Option {
	return func(o *options) { o.policy = p }
}

// loader bundles what a strategy needs to build and run statements:
// the registry, the driver, the identifier mapper and the per-path
// query modifiers of the enclosing call.
type loader struct {
	registry  *kelo.Registry
	drv       dialect.Driver
	mapper    *naming.Mapper
	builder   *sql.DialectBuilder
	modifiers map[string][]func(*sql.Selector)
}

func newBuilder(drv dialect.Driver, mapper *naming.Mapper) *sql.DialectBuilder {
	b := sql.Dialect(drv.Dialect())
	if mapper != nil {
		b = b.MapIdents(mapper.ToStorage)
	}
	return b
}

// selectType returns a selector over all declared columns of the type.
func (l *loader) selectType(t *schema.Type) *sql.Selector {
	return l.builder.Select(t.ColumnNames()...).From(t.TableName())
}

// applyModifiers applies the modifiers registered for the exact path.
func (l *loader) applyModifiers(path string, s *sql.Selector) {
	for _, fn := range l.modifiers[path] {
		fn(s)
	}
}

// storage translates one identifier to storage casing.
func (l *loader) storage(name string) string {
	return l.mapper.ToStorage(name)
}

// fetch runs the selector and scans the rows into instances, renaming
// result columns to application casing.
func (l *loader) fetch(ctx context.Context, sel *sql.Selector) ([]Instance, error) {
	return l.query(ctx, sel, l.mapper.ToApplication)
}

// fetchRaw is like fetch but keeps result column names verbatim. Used
// by the join strategy, whose result columns are fold aliases.
func (l *loader) fetchRaw(ctx context.Context, sel *sql.Selector) ([]Instance, error) {
	return l.query(ctx, sel, func(s string) string { return s })
}

func (l *loader) query(ctx context.Context, sel *sql.Selector, rename func(string) string) ([]Instance, error) {
	query, args := sel.Query()
	var rows sql.Rows
	if err := l.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstances(&rows, rename)
}

func scanInstances(rows *sql.Rows, rename func(string) string) ([]Instance, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []Instance{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		inst := make(Instance, len(columns))
		for i, c := range columns {
			inst[rename(c)] = normalize(values[i])
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// normalize unifies driver-specific scan values so that instances
// compare structurally regardless of backend. Raw byte slices become
// strings.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// keyOf encodes a scanned value into a comparable grouping key. The
// encoding is value-based, so an int and an int64 holding the same
// number produce the same key, which is what foreign-key correlation
// across heterogeneous drivers needs.
func keyOf(v any) string {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

// joinPath extends a dot-separated relation path by one hop.
func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// ensureColumn makes sure the selector fetches the given column,
// reporting whether it had to be added. Columns added here are needed
// for correlation only and are stripped from the result rows so the
// final shape matches the caller's selection.
func ensureColumn(sel *sql.Selector, col string) bool {
	for _, c := range sel.SelectedColumns() {
		if c == col {
			return false
		}
	}
	sel.AppendSelect(col)
	return true
}

func stripColumn(rows []Instance, col string) {
	for _, row := range rows {
		delete(row, col)
	}
}
