package gen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/kelo"
	"github.com/syssam/kelo/schema"
	"github.com/syssam/kelo/schema/relation"
)

// File is a parsed schema declaration file.
type File struct {
	Entities []*Entity `yaml:"entities"`
}

// Entity declares one entity type.
type Entity struct {
	Name        string          `yaml:"name"`
	Table       string          `yaml:"table,omitempty"`
	IDGenerator string          `yaml:"idGenerator,omitempty"`
	Columns     []*ColumnDecl   `yaml:"columns"`
	Relations   []*RelationDecl `yaml:"relations,omitempty"`
}

// ColumnDecl declares one column in application casing.
type ColumnDecl struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

// RelationDecl declares one relation.
type RelationDecl struct {
	Name    string       `yaml:"name"`
	Kind    string       `yaml:"kind"`
	Target  string       `yaml:"target"`
	From    string       `yaml:"from"`
	To      string       `yaml:"to"`
	Through *ThroughDecl `yaml:"through,omitempty"`
}

// ThroughDecl declares the join table of a many-to-many relation.
type ThroughDecl struct {
	Table string `yaml:"table"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

// Load reads and parses a schema declaration file.
func Load(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gen: read schema: %w", err)
	}
	f := &File{}
	if err := yaml.Unmarshal(buf, f); err != nil {
		return nil, fmt.Errorf("gen: parse schema: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

var columnTypes = map[string]schema.ColumnType{
	"int":    schema.TypeInt,
	"string": schema.TypeString,
	"float":  schema.TypeFloat,
	"bool":   schema.TypeBool,
	"time":   schema.TypeTime,
	"uuid":   schema.TypeUUID,
}

func (f *File) validate() error {
	if len(f.Entities) == 0 {
		return fmt.Errorf("gen: schema declares no entities")
	}
	for _, e := range f.Entities {
		if e.Name == "" {
			return fmt.Errorf("gen: entity with empty name")
		}
		if len(e.Columns) == 0 {
			return fmt.Errorf("gen: entity %q declares no columns", e.Name)
		}
		for _, c := range e.Columns {
			if _, ok := columnTypes[c.Type]; !ok {
				return fmt.Errorf("gen: entity %q: column %q has unknown type %q", e.Name, c.Name, c.Type)
			}
		}
		switch e.IDGenerator {
		case "", "uuid":
		default:
			return fmt.Errorf("gen: entity %q: unknown id generator %q", e.Name, e.IDGenerator)
		}
		for _, r := range e.Relations {
			switch r.Kind {
			case "belongs_to", "has_many":
				if r.Through != nil {
					return fmt.Errorf("gen: entity %q: relation %q: through is only valid for many_to_many", e.Name, r.Name)
				}
			case "many_to_many":
				if r.Through == nil {
					return fmt.Errorf("gen: entity %q: relation %q: many_to_many requires a through table", e.Name, r.Name)
				}
			default:
				return fmt.Errorf("gen: entity %q: relation %q has unknown kind %q", e.Name, r.Name, r.Kind)
			}
		}
	}
	return nil
}

// Type converts the declaration into a runtime type descriptor.
func (e *Entity) Type() *schema.Type {
	t := &schema.Type{Name: e.Name, Table: e.Table}
	for _, c := range e.Columns {
		t.Columns = append(t.Columns, schema.Column{
			Name:     c.Name,
			Type:     columnTypes[c.Type],
			Nullable: c.Nullable,
		})
	}
	if e.IDGenerator == "uuid" {
		t.NewID = schema.UUIDGenerator
	}
	return t
}

func (r *RelationDecl) builder() *relation.Builder {
	var b *relation.Builder
	switch r.Kind {
	case "belongs_to":
		b = relation.BelongsTo(r.Name, r.Target)
	case "has_many":
		b = relation.HasMany(r.Name, r.Target)
	default:
		b = relation.ManyToMany(r.Name, r.Target)
	}
	b = b.From(r.From).To(r.To)
	if r.Through != nil {
		b = b.Through(r.Through.Table, r.Through.From, r.Through.To)
	}
	return b
}

// Registry builds a registry from the declarations and validates every
// relation's join descriptor against it.
func (f *File) Registry() (*kelo.Registry, error) {
	r := kelo.NewRegistry()
	for _, e := range f.Entities {
		r.Register(e.Type())
	}
	for _, e := range f.Entities {
		for _, rel := range e.Relations {
			r.DeclareRelations(e.Name, rel.builder())
		}
	}
	for _, e := range f.Entities {
		for _, name := range r.RelationNames(e.Name) {
			if _, err := r.Relation(e.Name, name); err != nil {
				return nil, fmt.Errorf("gen: %w", err)
			}
		}
	}
	return r, nil
}
