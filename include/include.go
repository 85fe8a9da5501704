// Package include parses relation-inclusion expressions.
//
// An inclusion expression names the relations to eager-load alongside a
// root query. Dots descend into nested relations and brackets group
// siblings under a common prefix:
//
//	pets                       load the pets relation
//	parent.parent              load parent, and its parent
//	parent.[movies, pets]      load parent, with its movies and pets
//	parent.parent, pets        two top-level branches
//
// Parsing is purely syntactic. Relation names are checked against the
// registry when the expression is resolved, not here.
package include

import (
	"fmt"
	"strings"
)

// Expr is a parsed inclusion expression: an ordered set of relation
// branches. Branches with the same name are merged, keeping the order
// of first appearance.
type Expr struct {
	nodes []*Node
	index map[string]*Node
}

// Node is one relation branch of an expression.
type Node struct {
	Name     string
	Children *Expr
}

// New returns an expression holding the given branches. Same-named
// branches are merged recursively.
func New(nodes ...*Node) *Expr {
	e := &Expr{index: make(map[string]*Node)}
	for _, n := range nodes {
		e.add(n)
	}
	return e
}

// NewNode returns a branch with the given name and child branches.
func NewNode(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: New(children...)}
}

func (e *Expr) add(n *Node) {
	if prev, ok := e.index[n.Name]; ok {
		for _, c := range n.Children.Nodes() {
			prev.Children.add(c)
		}
		return
	}
	e.nodes = append(e.nodes, n)
	e.index[n.Name] = n
}

// Nodes returns the top-level branches in order.
func (e *Expr) Nodes() []*Node {
	if e == nil {
		return nil
	}
	return e.nodes
}

// Empty reports whether the expression includes no relations.
func (e *Expr) Empty() bool {
	return e == nil || len(e.nodes) == 0
}

// String returns the canonical textual form of the expression.
// Parse(e.String()) yields an expression equal to e.
func (e *Expr) String() string {
	if e.Empty() {
		return ""
	}
	parts := make([]string, len(e.nodes))
	for i, n := range e.nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// String returns the canonical textual form of the branch.
func (n *Node) String() string {
	switch children := n.Children.Nodes(); len(children) {
	case 0:
		return n.Name
	case 1:
		return n.Name + "." + children[0].String()
	default:
		return n.Name + ".[" + n.Children.String() + "]"
	}
}

// Parse parses an inclusion expression. The empty string parses to an
// empty expression.
func Parse(s string) (*Expr, error) {
	p := &parser{input: s}
	p.skipSpace()
	if p.eof() {
		return New(), nil
	}
	expr, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.input[p.pos])
	}
	return expr, nil
}

// MustParse is like Parse but panics on a malformed expression. It is
// intended for expressions fixed at compile time.
func MustParse(s string) *Expr {
	expr, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return expr
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseList() (*Expr, error) {
	expr := New()
	for {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		expr.add(node)
		p.skipSpace()
		if !p.accept(',') {
			return expr, nil
		}
	}
}

func (p *parser) parseNode() (*Node, error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	node := NewNode(name)
	p.skipSpace()
	if !p.accept('.') {
		return node, nil
	}
	p.skipSpace()
	if p.accept('[') {
		children, err := p.parseList()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.accept(']') {
			return nil, p.errorf("expected ']'")
		}
		node.Children = children
		return node, nil
	}
	child, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	node.Children = New(child)
	return node, nil
}

func (p *parser) parseName() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected relation name")
	}
	return p.input[start:p.pos], nil
}

func (p *parser) accept(c byte) bool {
	if !p.eof() && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("include: %s at position %d", fmt.Sprintf(format, args...), p.pos)
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
