package sql

// PredicateFunc is a constraint type for predicate functions.
// It allows generic field types to work with any predicate type that is
// based on func(*Selector).
type PredicateFunc interface {
	~func(*Selector)
}

// FieldEQ returns a predicate function that checks the field equals the
// given value.
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(EQ(name, v)) }
}

// FieldNEQ returns a predicate function that checks the field does not
// equal the given value.
func FieldNEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(NEQ(name, v)) }
}

// FieldGT returns a predicate function that checks the field is greater
// than the given value.
func FieldGT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GT(name, v)) }
}

// FieldGTE returns a predicate function that checks the field is greater
// than or equal to the given value.
func FieldGTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GTE(name, v)) }
}

// FieldLT returns a predicate function that checks the field is less than
// the given value.
func FieldLT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LT(name, v)) }
}

// FieldLTE returns a predicate function that checks the field is less than
// or equal to the given value.
func FieldLTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LTE(name, v)) }
}

// FieldIn returns a predicate function that checks the field value is in
// the given list.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		args := make([]any, len(vs))
		for i := range vs {
			args[i] = vs[i]
		}
		s.Where(In(name, args...))
	}
}

// FieldIsNull returns a predicate function that checks the field is NULL.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(IsNull(name)) }
}

// FieldNotNull returns a predicate function that checks the field is not
// NULL.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(NotNull(name)) }
}

// OrderByField returns a modifier function appending an ascending order
// term for the field.
func OrderByField(name string) func(*Selector) {
	return func(s *Selector) { s.OrderBy(Asc(name)) }
}

// OrderByFieldDesc returns a modifier function appending a descending
// order term for the field.
func OrderByFieldDesc(name string) func(*Selector) {
	return func(s *Selector) { s.OrderBy(Desc(name)) }
}

// StringField is a generic string field that provides type-safe predicate
// methods. It reduces generated code by defining predicates once via
// generics.
//
// Usage:
//
//	var FirstName = sql.StringField[predicate.Person]("firstName")
//	query.Where(person.FirstName.EQ("Seppo"))
type StringField[P PredicateFunc] string

// Name returns the field name.
func (f StringField[P]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f StringField[P]) EQ(v string) P {
	return P(FieldEQ(string(f), v))
}

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f StringField[P]) NEQ(v string) P {
	return P(FieldNEQ(string(f), v))
}

// In returns a predicate that checks if the field value is in the given list.
func (f StringField[P]) In(vs ...string) P {
	return P(FieldIn(string(f), vs...))
}

// GT returns a predicate that checks if the field is greater than the given value.
func (f StringField[P]) GT(v string) P {
	return P(FieldGT(string(f), v))
}

// LT returns a predicate that checks if the field is less than the given value.
func (f StringField[P]) LT(v string) P {
	return P(FieldLT(string(f), v))
}

// IsNull returns a predicate that checks if the field is NULL.
func (f StringField[P]) IsNull() P {
	return P(FieldIsNull(string(f)))
}

// NotNull returns a predicate that checks if the field is not NULL.
func (f StringField[P]) NotNull() P {
	return P(FieldNotNull(string(f)))
}

// Asc returns an ascending order modifier for the field.
func (f StringField[P]) Asc() P {
	return P(OrderByField(string(f)))
}

// Desc returns a descending order modifier for the field.
func (f StringField[P]) Desc() P {
	return P(OrderByFieldDesc(string(f)))
}

// IntField is a generic integer field that provides type-safe predicate
// methods.
type IntField[P PredicateFunc] string

// Name returns the field name.
func (f IntField[P]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f IntField[P]) EQ(v int) P {
	return P(FieldEQ(string(f), v))
}

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f IntField[P]) NEQ(v int) P {
	return P(FieldNEQ(string(f), v))
}

// In returns a predicate that checks if the field value is in the given list.
func (f IntField[P]) In(vs ...int) P {
	return P(FieldIn(string(f), vs...))
}

// GT returns a predicate that checks if the field is greater than the given value.
func (f IntField[P]) GT(v int) P {
	return P(FieldGT(string(f), v))
}

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f IntField[P]) GTE(v int) P {
	return P(FieldGTE(string(f), v))
}

// LT returns a predicate that checks if the field is less than the given value.
func (f IntField[P]) LT(v int) P {
	return P(FieldLT(string(f), v))
}

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f IntField[P]) LTE(v int) P {
	return P(FieldLTE(string(f), v))
}

// IsNull returns a predicate that checks if the field is NULL.
func (f IntField[P]) IsNull() P {
	return P(FieldIsNull(string(f)))
}

// Asc returns an ascending order modifier for the field.
func (f IntField[P]) Asc() P {
	return P(OrderByField(string(f)))
}

// Desc returns a descending order modifier for the field.
func (f IntField[P]) Desc() P {
	return P(OrderByFieldDesc(string(f)))
}
