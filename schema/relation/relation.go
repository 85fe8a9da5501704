// Package relation provides fluent builders for declaring entity relations.
//
// A relation is one of three kinds:
//
//   - BelongsTo: this entity holds a foreign key pointing at the target
//     ("Person.parentId" -> "Person.id").
//   - HasMany: the target holds a foreign key pointing back at this entity
//     ("Animal.ownerId" -> "Person.id").
//   - ManyToMany: the association is mediated by a join table holding a
//     pair of foreign keys ("persons_movies.personId"/"movieId").
//
// The target entity type is referenced by name, never by descriptor. This
// keeps declarations lazy: a relation may name a type that is registered
// later, and a type may relate to itself.
//
//	relation.BelongsTo("parent", "Person").From("parentId").To("id")
//	relation.HasMany("pets", "Animal").From("id").To("ownerId")
//	relation.ManyToMany("movies", "Movie").
//		From("id").
//		Through("personsMovies", "personId", "movieId").
//		To("id")
package relation

// Kind is the closed tagged variant over relation kinds.
type Kind int

const (
	// KindBelongsTo relates through a foreign key on the owning entity.
	KindBelongsTo Kind = iota
	// KindHasMany relates through a foreign key on the target entity.
	KindHasMany
	// KindManyToMany relates through a join table.
	KindManyToMany
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBelongsTo:
		return "BelongsTo"
	case KindHasMany:
		return "HasMany"
	case KindManyToMany:
		return "ManyToMany"
	default:
		return "Unknown"
	}
}

// Single reports whether the relation materializes as a single instance
// (or nil) rather than a list.
func (k Kind) Single() bool { return k == KindBelongsTo }

// ThroughDescriptor describes the join table of a many-to-many relation.
// Column names are in application casing.
type ThroughDescriptor struct {
	// Table is the join table name.
	Table string
	// FromColumn references the owning entity's join column.
	FromColumn string
	// ToColumn references the target entity's join column.
	ToColumn string
}

// Descriptor holds the full declaration of a relation. Build it with the
// BelongsTo, HasMany and ManyToMany builders rather than by hand.
type Descriptor struct {
	// Name is the relation name as it appears on instances and in
	// inclusion expressions.
	Name string
	// Kind is the relation kind.
	Kind Kind
	// Target is the target entity type name.
	Target string
	// FromColumn is the join column on the owning entity.
	FromColumn string
	// ToColumn is the join column on the target entity.
	ToColumn string
	// Through is set for many-to-many relations only.
	Through *ThroughDescriptor
}

// Builder is the fluent relation builder.
type Builder struct {
	desc *Descriptor
}

// BelongsTo declares a relation where this entity holds the foreign key.
func BelongsTo(name, target string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: KindBelongsTo, Target: target}}
}

// HasMany declares a relation where the target holds the foreign key.
func HasMany(name, target string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: KindHasMany, Target: target}}
}

// ManyToMany declares a relation mediated by a join table.
func ManyToMany(name, target string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: KindManyToMany, Target: target}}
}

// From sets the join column on the owning entity.
func (b *Builder) From(column string) *Builder {
	b.desc.FromColumn = column
	return b
}

// To sets the join column on the target entity.
func (b *Builder) To(column string) *Builder {
	b.desc.ToColumn = column
	return b
}

// Through sets the join table of a many-to-many relation along with the
// columns referencing the owning and target entities.
func (b *Builder) Through(table, fromColumn, toColumn string) *Builder {
	b.desc.Through = &ThroughDescriptor{
		Table:      table,
		FromColumn: fromColumn,
		ToColumn:   toColumn,
	}
	return b
}

// Descriptor returns the built declaration.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
