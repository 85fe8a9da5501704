// Package kelo is a runtime object-relational layer built around two
// engines: a bidirectional identifier-casing mapper that translates
// application-facing camel-cased identifiers to storage-facing snake-cased
// identifiers across DDL, query building and result decoding, and an
// eager-relation loader that fetches connected object graphs using
// interchangeable strategies with byte-identical result shapes.
//
// The root package holds the relation graph registry. The engines live in
// the graph package; identifier translation lives in the naming package.
package kelo

import (
	"fmt"
	"slices"

	"github.com/syssam/kelo/schema"
	"github.com/syssam/kelo/schema/relation"
)

// Registry holds the entity types and their relation declarations.
// It is populated once at process start and is read-only afterwards;
// a frozen registry is safe for concurrent use.
type Registry struct {
	types     map[string]*schema.Type
	relations map[string]map[string]*relation.Descriptor
	order     map[string][]string // relation declaration order per type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:     make(map[string]*schema.Type),
		relations: make(map[string]map[string]*relation.Descriptor),
		order:     make(map[string][]string),
	}
}

// Register adds an entity type to the registry. Registering the same type
// name twice replaces the earlier descriptor.
func (r *Registry) Register(types ...*schema.Type) *Registry {
	for _, t := range types {
		r.types[t.Name] = t
	}
	return r
}

// DeclareRelations declares relations for the named entity type. The
// target types are referenced lazily by name: they may be registered
// later, or be the declaring type itself. Join descriptors are validated
// on first use, not here.
func (r *Registry) DeclareRelations(typ string, rels ...*relation.Builder) *Registry {
	if r.relations[typ] == nil {
		r.relations[typ] = make(map[string]*relation.Descriptor)
	}
	for _, b := range rels {
		desc := b.Descriptor()
		if _, ok := r.relations[typ][desc.Name]; !ok {
			r.order[typ] = append(r.order[typ], desc.Name)
		}
		r.relations[typ][desc.Name] = desc
	}
	return r
}

// Type returns the descriptor of the named entity type.
func (r *Registry) Type(name string) (*schema.Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, ErrUnknownType
	}
	return t, nil
}

// Relation returns the named relation of the given entity type. The join
// descriptor is validated against the owning and target types: a column
// that does not resolve yields an InvalidJoinError, an undeclared relation
// name yields an UnknownRelationError.
func (r *Registry) Relation(typ, name string) (*relation.Descriptor, error) {
	rel, ok := r.relations[typ][name]
	if !ok {
		return nil, NewUnknownRelationError(typ, name)
	}
	if err := r.checkJoin(typ, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// TypeByTable returns the registered type backed by the given table.
// When several registered types share the table, the lexically smallest
// type name wins.
func (r *Registry) TypeByTable(table string) (*schema.Type, bool) {
	names := r.typeNamesByTable(table)
	if len(names) == 0 {
		return nil, false
	}
	slices.Sort(names)
	return r.types[names[0]], true
}

// RelationNames returns the relation names declared on the type, in
// declaration order.
func (r *Registry) RelationNames(typ string) []string {
	return append([]string(nil), r.order[typ]...)
}

// checkJoin validates that the join descriptor's columns resolve to
// declared columns on their respective tables. Join-table columns are
// validated only when the join table is itself a registered type.
func (r *Registry) checkJoin(typ string, rel *relation.Descriptor) error {
	owner, err := r.Type(typ)
	if err != nil {
		return err
	}
	if !owner.HasColumn(rel.FromColumn) {
		return NewInvalidJoinError(typ, rel.Name, rel.FromColumn)
	}
	target, err := r.Type(rel.Target)
	if err != nil {
		return fmt.Errorf("kelo: relation %q on type %q targets unregistered type %q: %w", rel.Name, typ, rel.Target, ErrUnknownType)
	}
	if !target.HasColumn(rel.ToColumn) {
		return NewInvalidJoinError(rel.Target, rel.Name, rel.ToColumn)
	}
	if th := rel.Through; th != nil {
		for _, name := range r.typeNamesByTable(th.Table) {
			tt := r.types[name]
			if !tt.HasColumn(th.FromColumn) {
				return NewInvalidJoinError(name, rel.Name, th.FromColumn)
			}
			if !tt.HasColumn(th.ToColumn) {
				return NewInvalidJoinError(name, rel.Name, th.ToColumn)
			}
		}
	}
	return nil
}

func (r *Registry) typeNamesByTable(table string) []string {
	var names []string
	for name, t := range r.types {
		if t.TableName() == table {
			names = append(names, name)
		}
	}
	return names
}
