package linkbuf

// Capacity is the maximum number of cells in a node.
const Capacity = 5

// nilNode marks an absent link.
const nilNode = -1

// node is one link of the chain.
type node struct {
	cells [Capacity]rune
	n     int // cells in use
	next  int
	prev  int // navigational only
}

// arena owns every node and hands out stable indices.
// Released slots go on a free list and are reused before the slice grows.
type arena struct {
	nodes []node
	free  []int
	live  int
}

// alloc returns the index of an empty, unlinked node.
// Pointers into the arena are invalid after alloc.
func (a *arena) alloc() int {
	a.live++
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[id] = node{next: nilNode, prev: nilNode}
		return id
	}
	a.nodes = append(a.nodes, node{next: nilNode, prev: nilNode})
	return len(a.nodes) - 1
}

// release returns a node to the free list.
func (a *arena) release(id int) {
	a.nodes[id] = node{next: nilNode, prev: nilNode}
	a.free = append(a.free, id)
	a.live--
}

// reset releases every node at once.
func (a *arena) reset() {
	a.nodes = a.nodes[:0]
	a.free = a.free[:0]
	a.live = 0
}

// get returns the node at id.
func (a *arena) get(id int) *node {
	return &a.nodes[id]
}
