package pred

// Index maps predicate ids to nodes of one tree.
type Index struct {
	nodes map[ID]Node
}

// BuildIndex registers every node of the tree rooted at root with one
// pre-order traversal. The tree is not modified.
func BuildIndex(root Node) *Index {
	ix := &Index{nodes: make(map[ID]Node)}
	if root == nil {
		return ix
	}
	root.Traverse(func(n Node) {
		ix.nodes[n.ID()] = n
	})
	return ix
}

// Lookup returns the node registered under id.
func (ix *Index) Lookup(id ID) (Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (ix *Index) Len() int {
	return len(ix.nodes)
}
