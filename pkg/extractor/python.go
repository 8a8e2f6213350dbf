package extractor

import (
	"github.com/l3aro/go-pygraph/pkg/graph"
	sitter "github.com/smacker/go-tree-sitter"
)

// Python grammar node types.
const (
	nodeFunction  = "function_definition"
	nodeClass     = "class_definition"
	nodeDecorated = "decorated_definition"
	nodeCall      = "call"
	nodeAttribute = "attribute"
	nodeIdent     = "identifier"
)

// ClassExtractor builds the class and function inventory of a file.
//
// A class becomes a class node. A function defined directly in a class body
// becomes a Class.method function node with a containment edge from the
// class. Every other function, at module level or nested anywhere, becomes a
// bare-name function node: the traversal visits the whole tree and flattens
// scopes on purpose.
type ClassExtractor struct{}

// NewClassExtractor creates a class inventory extractor.
func NewClassExtractor() *ClassExtractor {
	return &ClassExtractor{}
}

// Extract implements Extractor.
func (e *ClassExtractor) Extract(src *Source) *graph.Graph {
	g := graph.New()
	e.walk(src.Root(), src, g, "")
	return g
}

// walk visits n. owner names the class whose body directly contains n.
func (e *ClassExtractor) walk(n *sitter.Node, src *Source, g *graph.Graph, owner string) {
	if n == nil {
		return
	}

	switch n.Type() {
	case nodeClass:
		name := definitionName(n, src)
		if name == "" {
			return
		}
		g.AddNode(name, graph.KindClass)
		if body := n.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				e.walk(body.NamedChild(i), src, g, name)
			}
		}
		return

	case nodeFunction:
		name := definitionName(n, src)
		if name != "" {
			if owner != "" {
				method := owner + "." + name
				g.AddNode(method, graph.KindFunction)
				g.AddEdge(owner, method)
			} else {
				g.AddNode(name, graph.KindFunction)
			}
		}
		if body := n.ChildByFieldName("body"); body != nil {
			e.walk(body, src, g, "")
		}
		return

	case nodeDecorated:
		// Decorators do not change ownership of the wrapped definition
		for i := 0; i < int(n.NamedChildCount()); i++ {
			e.walk(n.NamedChild(i), src, g, owner)
		}
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		e.walk(n.NamedChild(i), src, g, "")
	}
}

// CallExtractor builds the invocation graph of a file.
//
// Every named function becomes a function node. A call inside a function adds
// an edge from the innermost enclosing named function to the callee's name:
// the identifier for plain calls, the trailing attribute for obj.method()
// calls. Other callee shapes (subscripts, calls of calls) are ignored, as are
// calls made outside any function.
type CallExtractor struct{}

// NewCallExtractor creates an invocation graph extractor.
func NewCallExtractor() *CallExtractor {
	return &CallExtractor{}
}

// Extract implements Extractor.
func (e *CallExtractor) Extract(src *Source) *graph.Graph {
	g := graph.New()
	e.walk(src.Root(), src, g, nil)
	return g
}

func (e *CallExtractor) walk(n *sitter.Node, src *Source, g *graph.Graph, scope []string) {
	if n == nil {
		return
	}

	switch n.Type() {
	case nodeFunction:
		if name := definitionName(n, src); name != "" {
			g.AddNode(name, graph.KindFunction)
			scope = append(scope, name)
		}

	case nodeDecorated:
		// Decorator calls belong to the function they decorate
		if def := n.ChildByFieldName("definition"); def != nil && def.Type() == nodeFunction {
			if name := definitionName(def, src); name != "" {
				scope = append(scope, name)
			}
		}

	case nodeCall:
		if len(scope) > 0 {
			if callee := CalleeName(n, src); callee != "" {
				g.AddEdge(scope[len(scope)-1], callee)
			}
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		e.walk(n.NamedChild(i), src, g, scope)
	}
}

// CalleeName returns the displayed name of a call's target: the identifier of
// f(), or the trailing attribute of obj.f(). It returns "" for any other
// target shape or when n is not a call.
func CalleeName(n *sitter.Node, src *Source) string {
	if n == nil || n.Type() != nodeCall {
		return ""
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case nodeIdent:
		return src.Text(fn)
	case nodeAttribute:
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return src.Text(attr)
		}
	}
	return ""
}

// CallNames returns the callee names of every call under n, breadth-first.
// Duplicates are kept in call order.
func CallNames(n *sitter.Node, src *Source) []string {
	var names []string
	if n == nil {
		return names
	}

	queue := []*sitter.Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if name := CalleeName(cur, src); name != "" {
			names = append(names, name)
		}
		for i := 0; i < int(cur.NamedChildCount()); i++ {
			if child := cur.NamedChild(i); child != nil {
				queue = append(queue, child)
			}
		}
	}
	return names
}

// Definitions indexes the functions and classes of a file by bare name.
// When a name is defined more than once the definition met last in a
// breadth-first walk wins; the name keeps its first position in the order.
type Definitions struct {
	functions  map[string]*sitter.Node
	classes    map[string]*sitter.Node
	funcOrder  []string
	classOrder []string
}

// CollectDefinitions indexes every function and class definition in the tree,
// nested ones included.
func CollectDefinitions(src *Source) *Definitions {
	d := &Definitions{
		functions: make(map[string]*sitter.Node),
		classes:   make(map[string]*sitter.Node),
	}

	queue := []*sitter.Node{src.Root()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		switch cur.Type() {
		case nodeFunction:
			if name := definitionName(cur, src); name != "" {
				if _, ok := d.functions[name]; !ok {
					d.funcOrder = append(d.funcOrder, name)
				}
				d.functions[name] = cur
			}
		case nodeClass:
			if name := definitionName(cur, src); name != "" {
				if _, ok := d.classes[name]; !ok {
					d.classOrder = append(d.classOrder, name)
				}
				d.classes[name] = cur
			}
		}

		for i := 0; i < int(cur.NamedChildCount()); i++ {
			if child := cur.NamedChild(i); child != nil {
				queue = append(queue, child)
			}
		}
	}
	return d
}

// Function returns the definition node of a function.
func (d *Definitions) Function(name string) (*sitter.Node, bool) {
	n, ok := d.functions[name]
	return n, ok
}

// Class returns the definition node of a class.
func (d *Definitions) Class(name string) (*sitter.Node, bool) {
	n, ok := d.classes[name]
	return n, ok
}

// FunctionNames lists defined function names in discovery order.
func (d *Definitions) FunctionNames() []string {
	return append([]string(nil), d.funcOrder...)
}

// ClassNames lists defined class names in discovery order.
func (d *Definitions) ClassNames() []string {
	return append([]string(nil), d.classOrder...)
}

// Methods returns the bare names of the functions defined directly in a
// class body, decorated ones included.
func Methods(class *sitter.Node, src *Source) []string {
	var names []string
	if class == nil {
		return names
	}
	body := class.ChildByFieldName("body")
	if body == nil {
		return names
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		item := body.NamedChild(i)
		if item != nil && item.Type() == nodeDecorated {
			item = item.ChildByFieldName("definition")
		}
		if item == nil || item.Type() != nodeFunction {
			continue
		}
		if name := definitionName(item, src); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func definitionName(n *sitter.Node, src *Source) string {
	return src.Text(n.ChildByFieldName("name"))
}
