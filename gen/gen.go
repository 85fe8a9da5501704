// Package gen turns YAML entity declarations into Go packages of
// table constants and typed predicate helpers, plus a registry
// constructor wiring the declared types and relations together.
package gen

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	keloPkg     = "github.com/syssam/kelo"
	schemaPkg   = "github.com/syssam/kelo/schema"
	relationPkg = "github.com/syssam/kelo/schema/relation"
	sqlPkg      = "github.com/syssam/kelo/dialect/sql"

	header = "Code generated by kelogen. DO NOT EDIT."
)

// Generator emits one package per entity and a registry file at the
// output root.
type Generator struct {
	file    *File
	outDir  string
	pkg     string
	workers int
	metrics WriterMetrics
}

// NewGenerator returns a generator writing under outDir. The registry
// file's package name defaults to the output directory's base name.
func NewGenerator(f *File, outDir string) *Generator {
	return &Generator{
		file:    f,
		outDir:  outDir,
		pkg:     filepath.Base(outDir),
		workers: defaultWorkers,
	}
}

// WithPackage overrides the registry file's package name.
func (g *Generator) WithPackage(pkg string) *Generator {
	g.pkg = pkg
	return g
}

// WithWorkers sets the number of concurrent file writers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Generate renders and writes all output files.
func (g *Generator) Generate(ctx context.Context) error {
	if _, err := g.file.Registry(); err != nil {
		return err
	}
	tasks := make([]writeTask, 0, len(g.file.Entities)+1)
	for _, e := range g.file.Entities {
		pkg := strings.ToLower(e.Name)
		tasks = append(tasks, writeTask{
			path: filepath.Join(g.outDir, pkg, pkg+".go"),
			file: g.entityFile(e),
		})
	}
	tasks = append(tasks, writeTask{
		path: filepath.Join(g.outDir, "registry.go"),
		file: g.registryFile(),
	})
	w := newWriter(g.outDir, g.workers)
	if err := w.Write(ctx, tasks); err != nil {
		return err
	}
	g.metrics = w.Metrics()
	return nil
}

// Metrics returns counters from the last Generate call.
func (g *Generator) Metrics() WriterMetrics {
	return g.metrics
}

var titleCaser = cases.Title(language.Und, cases.NoLower)

func pascal(s string) string {
	parts := strings.Split(s, "_")
	for i := range parts {
		parts[i] = titleCaser.String(parts[i])
	}
	return strings.Join(parts, "")
}

func goType(t string) *jen.Statement {
	switch t {
	case "int":
		return jen.Int()
	case "float":
		return jen.Float64()
	case "bool":
		return jen.Bool()
	case "time":
		return jen.Qual("time", "Time")
	default:
		return jen.String()
	}
}

func selectorFunc() *jen.Statement {
	return jen.Func().Params(jen.Op("*").Qual(sqlPkg, "Selector"))
}

func (g *Generator) entityFile(e *Entity) *jen.File {
	pkg := strings.ToLower(e.Name)
	f := jen.NewFile(pkg)
	f.HeaderComment(header)

	defs := []jen.Code{
		jen.Comment("Label is the registry name of the type."),
		jen.Id("Label").Op("=").Lit(e.Name),
		jen.Comment("Table is the storage table backing the type."),
		jen.Id("Table").Op("=").Lit(e.Type().TableName()),
	}
	for _, c := range e.Columns {
		defs = append(defs, jen.Id("Field"+pascal(c.Name)).Op("=").Lit(c.Name))
	}
	f.Const().Defs(defs...)

	for _, c := range e.Columns {
		field := "Field" + pascal(c.Name)
		f.Commentf("%sEQ matches rows whose %s equals v.", pascal(c.Name), c.Name)
		f.Func().Id(pascal(c.Name)+"EQ").Params(jen.Id("v").Add(goType(c.Type))).
			Add(selectorFunc()).Block(
			jen.Return(jen.Qual(sqlPkg, "FieldEQ").Call(jen.Id(field), jen.Id("v"))),
		)
		f.Commentf("%sIn matches rows whose %s is one of vs.", pascal(c.Name), c.Name)
		f.Func().Id(pascal(c.Name)+"In").Params(jen.Id("vs").Op("...").Add(goType(c.Type))).
			Add(selectorFunc()).Block(
			jen.Return(jen.Qual(sqlPkg, "FieldIn").Call(jen.Id(field), jen.Id("vs").Op("..."))),
		)
		if c.Nullable {
			f.Commentf("%sIsNil matches rows whose %s is null.", pascal(c.Name), c.Name)
			f.Func().Id(pascal(c.Name)+"IsNil").Params().
				Add(selectorFunc()).Block(
				jen.Return(jen.Qual(sqlPkg, "FieldIsNull").Call(jen.Id(field))),
			)
			f.Commentf("%sNotNil matches rows whose %s is not null.", pascal(c.Name), c.Name)
			f.Func().Id(pascal(c.Name)+"NotNil").Params().
				Add(selectorFunc()).Block(
				jen.Return(jen.Qual(sqlPkg, "FieldNotNull").Call(jen.Id(field))),
			)
		}
		f.Commentf("By%s orders rows by %s ascending.", pascal(c.Name), c.Name)
		f.Func().Id("By"+pascal(c.Name)).Params().
			Add(selectorFunc()).Block(
			jen.Return(jen.Qual(sqlPkg, "OrderByField").Call(jen.Id(field))),
		)
		f.Commentf("By%sDesc orders rows by %s descending.", pascal(c.Name), c.Name)
		f.Func().Id("By"+pascal(c.Name)+"Desc").Params().
			Add(selectorFunc()).Block(
			jen.Return(jen.Qual(sqlPkg, "OrderByFieldDesc").Call(jen.Id(field))),
		)
	}

	if len(e.Relations) > 0 {
		defs := make([]jen.Code, 0, len(e.Relations))
		for _, r := range e.Relations {
			defs = append(defs, jen.Id("Relation"+pascal(r.Name)).Op("=").Lit(r.Name))
		}
		f.Comment("Relation names declared on the type.")
		f.Const().Defs(defs...)
	}
	return f
}

var typeConsts = map[string]string{
	"int":    "TypeInt",
	"string": "TypeString",
	"float":  "TypeFloat",
	"bool":   "TypeBool",
	"time":   "TypeTime",
	"uuid":   "TypeUUID",
}

func columnLiteral(c *ColumnDecl) jen.Code {
	d := jen.Dict{
		jen.Id("Name"): jen.Lit(c.Name),
		jen.Id("Type"): jen.Qual(schemaPkg, typeConsts[c.Type]),
	}
	if c.Nullable {
		d[jen.Id("Nullable")] = jen.True()
	}
	return jen.Values(d)
}

func typeLiteral(e *Entity) jen.Code {
	cols := make([]jen.Code, 0, len(e.Columns))
	for _, c := range e.Columns {
		cols = append(cols, columnLiteral(c))
	}
	d := jen.Dict{
		jen.Id("Name"):    jen.Lit(e.Name),
		jen.Id("Columns"): jen.Index().Qual(schemaPkg, "Column").Values(cols...),
	}
	if e.Table != "" {
		d[jen.Id("Table")] = jen.Lit(e.Table)
	}
	if e.IDGenerator == "uuid" {
		d[jen.Id("NewID")] = jen.Qual(schemaPkg, "UUIDGenerator")
	}
	return jen.Op("&").Qual(schemaPkg, "Type").Values(d)
}

func relationCall(r *RelationDecl) *jen.Statement {
	var s *jen.Statement
	switch r.Kind {
	case "belongs_to":
		s = jen.Qual(relationPkg, "BelongsTo").Call(jen.Lit(r.Name), jen.Lit(r.Target))
	case "has_many":
		s = jen.Qual(relationPkg, "HasMany").Call(jen.Lit(r.Name), jen.Lit(r.Target))
	default:
		s = jen.Qual(relationPkg, "ManyToMany").Call(jen.Lit(r.Name), jen.Lit(r.Target))
	}
	s = s.Dot("From").Call(jen.Lit(r.From)).Dot("To").Call(jen.Lit(r.To))
	if r.Through != nil {
		s = s.Dot("Through").Call(jen.Lit(r.Through.Table), jen.Lit(r.Through.From), jen.Lit(r.Through.To))
	}
	return s
}

func (g *Generator) registryFile() *jen.File {
	f := jen.NewFile(g.pkg)
	f.HeaderComment(header)

	types := make([]jen.Code, 0, len(g.file.Entities))
	for _, e := range g.file.Entities {
		types = append(types, typeLiteral(e))
	}
	expr := jen.Qual(keloPkg, "NewRegistry").Call().
		Dot("Register").Call(types...)
	for _, e := range g.file.Entities {
		if len(e.Relations) == 0 {
			continue
		}
		args := []jen.Code{jen.Lit(e.Name)}
		for _, r := range e.Relations {
			args = append(args, relationCall(r))
		}
		expr = expr.Dot("DeclareRelations").Call(args...)
	}

	f.Comment("NewRegistry builds the registry declared by the schema file.")
	f.Func().Id("NewRegistry").Params().Op("*").Qual(keloPkg, "Registry").Block(
		jen.Return(expr),
	)
	return f
}
