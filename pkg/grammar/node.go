package grammar

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// NodeText returns the source text for the given node.
// Returns empty string if the node's byte range exceeds the source length.
func NodeText(node *sitter.Node, source []byte) (result string) {
	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	if start > sourceLen || end > sourceLen || start > end {
		return ""
	}

	// Content() may touch memory past the slice when trees and sources get out
	// of step; treat that as an empty node.
	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// Children returns the direct children of node that are not in skip.
func Children(node *sitter.Node, skip KindSet) []*sitter.Node {
	count := int(node.ChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if child == nil || skip.HasNode(child) {
			continue
		}
		children = append(children, child)
	}
	return children
}

// NamedChildren returns the named direct children of node that are not in skip.
func NamedChildren(node *sitter.Node, skip KindSet) []*sitter.Node {
	var named []*sitter.Node
	for _, child := range Children(node, skip) {
		if child.IsNamed() {
			named = append(named, child)
		}
	}
	return named
}

func walkTreeWithDepth(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if depth > MaxTreeDepth {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		walkTreeWithDepth(child, visitor, depth+1)
	}
}

// WalkTree recursively visits all nodes in the tree.
// The visitor function returns false to stop traversing into children.
func WalkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkTreeWithDepth(node, visitor, 0)
}

// FirstError returns the first ERROR or MISSING node in document order,
// or nil when the tree parsed cleanly.
func FirstError(root *sitter.Node) *sitter.Node {
	if root == nil || !root.HasError() {
		return nil
	}

	var found *sitter.Node
	WalkTree(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsMissing() || n.Type() == "ERROR" {
			found = n
			return false
		}
		return n.HasError()
	})

	// HasError can be set on the root while the failing node is the root itself.
	if found == nil {
		found = root
	}
	return found
}
