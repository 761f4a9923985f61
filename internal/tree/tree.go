package tree

import (
	"github.com/koskimas/gltfgen/internal/model"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Node groups resolved types by module path. Types with an empty module
// path live in the root node.
type Node struct {
	Types    []*model.ResolvedType
	Children *sequencedmap.Map[string, *Node]
}

func newNode() *Node {
	return &Node{
		Types:    make([]*model.ResolvedType, 0),
		Children: sequencedmap.New[string, *Node](),
	}
}

// Build groups the types of a module. Children keep the order in which the
// module's sorted types first mention them.
func Build(module *model.Module) *Node {
	root := newNode()

	for _, t := range module.Sorted() {
		node := root

		for _, segment := range t.ModulePath {
			child, ok := node.Children.Get(segment)
			if !ok {
				child = newNode()
				node.Children.Set(segment, child)
			}

			node = child
		}

		node.Types = append(node.Types, t)
	}

	return root
}

// Walk calls `fn` for `n` and all of its descendants, parents first.
func (n *Node) Walk(fn func(path []string, node *Node) error) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func(path []string, node *Node) error) error {
	if err := fn(path, n); err != nil {
		return err
	}

	for segment, child := range n.Children.All() {
		childPath := append(append(make([]string, 0, len(path)+1), path...), segment)

		if err := child.walk(childPath, fn); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of types in `n` and its descendants.
func (n *Node) Len() int {
	count := len(n.Types)

	for _, child := range n.Children.All() {
		count += child.Len()
	}

	return count
}
