package sql

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/kelo/dialect"
)

// IdentMapper rewrites a single identifier segment before it is quoted
// into a statement. It is the configuration-time hook through which the
// naming mapper translates application casing to storage casing. A nil
// mapper is the identity.
type IdentMapper func(string) string

// DialectBuilder is the entry point for building statements for a
// specific dialect with an optional identifier mapper. Builders created
// from independently configured DialectBuilders never share state.
type DialectBuilder struct {
	dialect string
	ident   IdentMapper
}

// Dialect creates a builder entry point for the given dialect.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// MapIdents returns a copy of the builder that rewrites every identifier
// leaf token with f before quoting.
func (d *DialectBuilder) MapIdents(f IdentMapper) *DialectBuilder {
	return &DialectBuilder{dialect: d.dialect, ident: f}
}

// Select returns a Selector for the given columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	s := &Selector{dialect: d.dialect, ident: d.ident}
	return s.Select(columns...)
}

// Insert returns an InsertBuilder for the given table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{dialect: d.dialect, ident: d.ident, table: table}
}

// CreateTable returns a TableBuilder for the given table.
func (d *DialectBuilder) CreateTable(name string) *TableBuilder {
	return &TableBuilder{dialect: d.dialect, ident: d.ident, name: name}
}

// stmt accumulates a statement's text and arguments.
type stmt struct {
	dialect string
	ident   IdentMapper
	qualify string
	b       strings.Builder
	args    []any
}

func (s *stmt) writeString(v string) { s.b.WriteString(v) }

// arg appends a query argument and writes its placeholder.
func (s *stmt) arg(v any) {
	s.args = append(s.args, v)
	if s.dialect == dialect.Postgres {
		s.b.WriteByte('$')
		s.b.WriteString(strconv.Itoa(len(s.args)))
	} else {
		s.b.WriteByte('?')
	}
}

// writeIdent maps and quotes an identifier. Qualified identifiers
// ("alias.column") are split and each segment is handled on its own.
// The "*" segment is written verbatim.
func (s *stmt) writeIdent(name string) {
	if s.qualify != "" && !strings.Contains(name, ".") {
		s.b.WriteString(s.quote(s.qualify))
		s.b.WriteByte('.')
	}
	for i, part := range strings.Split(name, ".") {
		if i > 0 {
			s.b.WriteByte('.')
		}
		if part == "*" {
			s.b.WriteByte('*')
			continue
		}
		if s.ident != nil {
			part = s.ident(part)
		}
		s.b.WriteString(s.quote(part))
	}
}

func (s *stmt) quote(ident string) string {
	switch s.dialect {
	case dialect.MySQL:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	case dialect.Postgres:
		return pq.QuoteIdentifier(ident)
	default:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}

// Predicate is a where-clause tree node.
type Predicate struct {
	apply func(*stmt)
}

func binary(col, op string, v any) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		s.writeIdent(col)
		s.writeString(" " + op + " ")
		s.arg(v)
	}}
}

// EQ returns a "column = value" predicate.
func EQ(col string, v any) *Predicate { return binary(col, "=", v) }

// NEQ returns a "column <> value" predicate.
func NEQ(col string, v any) *Predicate { return binary(col, "<>", v) }

// GT returns a "column > value" predicate.
func GT(col string, v any) *Predicate { return binary(col, ">", v) }

// GTE returns a "column >= value" predicate.
func GTE(col string, v any) *Predicate { return binary(col, ">=", v) }

// LT returns a "column < value" predicate.
func LT(col string, v any) *Predicate { return binary(col, "<", v) }

// LTE returns a "column <= value" predicate.
func LTE(col string, v any) *Predicate { return binary(col, "<=", v) }

// In returns a "column IN (...)" predicate. An empty value set renders a
// false condition, matching no rows on every dialect.
func In(col string, vs ...any) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		if len(vs) == 0 {
			s.writeString("1 = 0")
			return
		}
		s.writeIdent(col)
		s.writeString(" IN (")
		for i, v := range vs {
			if i > 0 {
				s.writeString(", ")
			}
			s.arg(v)
		}
		s.writeString(")")
	}}
}

// IsNull returns a "column IS NULL" predicate.
func IsNull(col string) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		s.writeIdent(col)
		s.writeString(" IS NULL")
	}}
}

// NotNull returns a "column IS NOT NULL" predicate.
func NotNull(col string) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		s.writeIdent(col)
		s.writeString(" IS NOT NULL")
	}}
}

// ColumnsEQ returns a "col1 = col2" predicate over two identifiers.
func ColumnsEQ(col1, col2 string) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		s.writeIdent(col1)
		s.writeString(" = ")
		s.writeIdent(col2)
	}}
}

func compose(op string, ps []*Predicate) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		for i, p := range ps {
			if i > 0 {
				s.writeString(" " + op + " ")
			}
			s.writeString("(")
			p.apply(s)
			s.writeString(")")
		}
	}}
}

// And combines the predicates with AND.
func And(ps ...*Predicate) *Predicate { return compose("AND", ps) }

// Or combines the predicates with OR.
func Or(ps ...*Predicate) *Predicate { return compose("OR", ps) }

// Qualified returns a predicate that renders p with every unqualified
// identifier prefixed by the given table alias. The alias itself is
// quoted verbatim, without identifier mapping.
func Qualified(alias string, p *Predicate) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		prev := s.qualify
		s.qualify = alias
		p.apply(s)
		s.qualify = prev
	}}
}

// Not negates the predicate.
func Not(p *Predicate) *Predicate {
	return &Predicate{apply: func(s *stmt) {
		s.writeString("NOT (")
		p.apply(s)
		s.writeString(")")
	}}
}

// Asc returns an ascending order term for the column.
func Asc(col string) string { return col }

// Desc returns a descending order term for the column.
func Desc(col string) string { return col + " DESC" }

type selection struct {
	col string
	as  string
}

type join struct {
	kind  string
	table string
	as    string
	on    *Predicate
}

// Selector builds a SELECT statement.
type Selector struct {
	dialect string
	ident   IdentMapper
	columns []selection
	from    string
	as      string
	joins   []join
	where   *Predicate
	order   []string
	limit   *int
	offset  *int
}

// Select sets the selected columns, replacing any previous selection.
func (s *Selector) Select(columns ...string) *Selector {
	s.columns = s.columns[:0]
	return s.AppendSelect(columns...)
}

// AppendSelect adds columns to the selection.
func (s *Selector) AppendSelect(columns ...string) *Selector {
	for _, c := range columns {
		s.columns = append(s.columns, selection{col: c})
	}
	return s
}

// AppendSelectAs adds an aliased column to the selection.
func (s *Selector) AppendSelectAs(col, as string) *Selector {
	s.columns = append(s.columns, selection{col: col, as: as})
	return s
}

// SelectedColumns returns the currently selected (unaliased) columns.
func (s *Selector) SelectedColumns() []string {
	cols := make([]string, len(s.columns))
	for i := range s.columns {
		cols[i] = s.columns[i].col
	}
	return cols
}

// From sets the table of the selector.
func (s *Selector) From(table string) *Selector {
	s.from = table
	return s
}

// As sets the table alias.
func (s *Selector) As(alias string) *Selector {
	s.as = alias
	return s
}

// LeftJoin appends a LEFT JOIN clause.
func (s *Selector) LeftJoin(table, as string, on *Predicate) *Selector {
	s.joins = append(s.joins, join{kind: "LEFT JOIN", table: table, as: as, on: on})
	return s
}

// Join appends an INNER JOIN clause.
func (s *Selector) Join(table, as string, on *Predicate) *Selector {
	s.joins = append(s.joins, join{kind: "JOIN", table: table, as: as, on: on})
	return s
}

// Where ANDs the predicate into the where clause.
func (s *Selector) Where(p *Predicate) *Selector {
	if s.where != nil {
		p = And(s.where, p)
	}
	s.where = p
	return s
}

// P returns the accumulated where predicate, or nil if none was set.
func (s *Selector) P() *Predicate {
	return s.where
}

// OrderBy appends order terms (see Asc and Desc).
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// ClearOrder drops any previously appended order terms.
func (s *Selector) ClearOrder() *Selector {
	s.order = nil
	return s
}

// OrderedBy returns the appended order terms.
func (s *Selector) OrderedBy() []string {
	return append([]string(nil), s.order...)
}

// Limit sets the limit of the selector.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Paginated reports whether a limit or an offset is set.
func (s *Selector) Paginated() bool {
	return s.limit != nil || s.offset != nil
}

// Offset sets the offset of the selector.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Query returns the statement text and arguments.
func (s *Selector) Query() (string, []any) {
	st := &stmt{dialect: s.dialect, ident: s.ident}
	st.writeString("SELECT ")
	if len(s.columns) == 0 {
		st.writeString("*")
	}
	for i, c := range s.columns {
		if i > 0 {
			st.writeString(", ")
		}
		st.writeIdent(c.col)
		if c.as != "" {
			st.writeString(" AS ")
			st.writeString(st.quote(c.as))
		}
	}
	st.writeString(" FROM ")
	st.writeIdent(s.from)
	if s.as != "" {
		st.writeString(" AS ")
		st.writeString(st.quote(s.as))
	}
	for _, j := range s.joins {
		st.writeString(" " + j.kind + " ")
		st.writeIdent(j.table)
		if j.as != "" {
			st.writeString(" AS ")
			st.writeString(st.quote(j.as))
		}
		st.writeString(" ON ")
		j.on.apply(st)
	}
	if s.where != nil {
		st.writeString(" WHERE ")
		s.where.apply(st)
	}
	for i, o := range s.order {
		if i == 0 {
			st.writeString(" ORDER BY ")
		} else {
			st.writeString(", ")
		}
		col, desc := strings.CutSuffix(o, " DESC")
		st.writeIdent(col)
		if desc {
			st.writeString(" DESC")
		}
	}
	if s.limit != nil {
		st.writeString(" LIMIT ")
		st.writeString(strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		st.writeString(" OFFSET ")
		st.writeString(strconv.Itoa(*s.offset))
	}
	return st.b.String(), st.args
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	dialect   string
	ident     IdentMapper
	table     string
	columns   []string
	values    []any
	returning string
}

// Columns sets the insert columns.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values sets the insert values, positionally matching the columns.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values...)
	return i
}

// Set adds a single column/value pair.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	i.values = append(i.values, v)
	return i
}

// Returning adds a RETURNING clause for dialects that support it.
func (i *InsertBuilder) Returning(column string) *InsertBuilder {
	i.returning = column
	return i
}

// Query returns the statement text and arguments.
func (i *InsertBuilder) Query() (string, []any) {
	st := &stmt{dialect: i.dialect, ident: i.ident}
	st.writeString("INSERT INTO ")
	st.writeIdent(i.table)
	st.writeString(" (")
	for n, c := range i.columns {
		if n > 0 {
			st.writeString(", ")
		}
		st.writeIdent(c)
	}
	st.writeString(") VALUES (")
	for n, v := range i.values {
		if n > 0 {
			st.writeString(", ")
		}
		st.arg(v)
	}
	st.writeString(")")
	if i.returning != "" {
		st.writeString(" RETURNING ")
		st.writeIdent(i.returning)
	}
	return st.b.String(), st.args
}

// TableBuilder builds a CREATE TABLE statement.
type TableBuilder struct {
	dialect     string
	ident       IdentMapper
	name        string
	ifNotExists bool
	columns     []*ColumnBuilder
}

// ColumnBuilder builds a single column definition of a CREATE TABLE
// statement.
type ColumnBuilder struct {
	name  string
	typ   string
	attrs []string
}

// Column creates a column definition for the given name. The name passes
// through the identifier mapper of the enclosing TableBuilder.
func Column(name string) *ColumnBuilder {
	return &ColumnBuilder{name: name}
}

// Type sets the column's storage type, e.g. "integer" or "text".
func (c *ColumnBuilder) Type(typ string) *ColumnBuilder {
	c.typ = typ
	return c
}

// Attr appends a raw attribute to the column definition, e.g. "PRIMARY KEY".
func (c *ColumnBuilder) Attr(attr string) *ColumnBuilder {
	c.attrs = append(c.attrs, attr)
	return c
}

// IfNotExists makes the CREATE TABLE conditional.
func (t *TableBuilder) IfNotExists() *TableBuilder {
	t.ifNotExists = true
	return t
}

// Columns appends column definitions to the table.
func (t *TableBuilder) Columns(columns ...*ColumnBuilder) *TableBuilder {
	t.columns = append(t.columns, columns...)
	return t
}

// Query returns the statement text and arguments.
func (t *TableBuilder) Query() (string, []any) {
	st := &stmt{dialect: t.dialect, ident: t.ident}
	st.writeString("CREATE TABLE ")
	if t.ifNotExists {
		st.writeString("IF NOT EXISTS ")
	}
	st.writeIdent(t.name)
	st.writeString(" (")
	for i, c := range t.columns {
		if i > 0 {
			st.writeString(", ")
		}
		st.writeIdent(c.name)
		st.writeString(" " + c.typ)
		for _, a := range c.attrs {
			st.writeString(" " + a)
		}
	}
	st.writeString(")")
	return st.b.String(), st.args
}
