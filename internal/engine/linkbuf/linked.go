package linkbuf

import (
	"fmt"
	"iter"
	"strings"

	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/tracking"
)

// Option configures a Buffer.
type Option func(*Buffer)

// WithDisplayWidth sets the minimum number of display tokens.
func WithDisplayWidth(width int) Option {
	return func(b *Buffer) {
		if width >= 0 {
			b.width = width
		}
	}
}

// WithHistoryLimit sets the size of the operation journal.
func WithHistoryLimit(limit int) Option {
	return func(b *Buffer) {
		b.historyLimit = limit
	}
}

// Buffer is the linked-node engine.
type Buffer struct {
	arena arena
	head  int
	tail  int

	// Cursor position: offset cells into node cur.
	cur int
	off int

	length int

	width        int
	historyLimit int
	ops          *tracking.Tracker
}

var (
	_ buffer.Buffer        = (*Buffer)(nil)
	_ buffer.NodeInspector = (*Buffer)(nil)
	_ buffer.Validator     = (*Buffer)(nil)
)

// New creates a buffer holding text in full nodes with the cursor at the end.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{
		head:  nilNode,
		tail:  nilNode,
		cur:   nilNode,
		width: buffer.DefaultDisplayWidth,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ops = tracking.NewTracker(tracking.WithHistoryLimit(b.historyLimit))

	for _, r := range text {
		if b.tail == nilNode || b.arena.get(b.tail).n == Capacity {
			b.insertAfter(b.tail)
		}
		t := b.arena.get(b.tail)
		t.cells[t.n] = r
		t.n++
		b.length++
	}
	if b.tail != nilNode {
		b.cur = b.tail
		b.off = b.arena.get(b.tail).n
	}
	return b
}

// insertAfter links a new node after id (or as the only node when id is
// nilNode) and returns its index.
func (b *Buffer) insertAfter(id int) int {
	nid := b.arena.alloc()
	if id == nilNode {
		b.head, b.tail = nid, nid
		return nid
	}
	n := b.arena.get(nid)
	n.prev = id
	n.next = b.arena.get(id).next
	if n.next != nilNode {
		b.arena.get(n.next).prev = nid
	} else {
		b.tail = nid
	}
	b.arena.get(id).next = nid
	return nid
}

// insertBefore links a new node before id and returns its index.
func (b *Buffer) insertBefore(id int) int {
	nid := b.arena.alloc()
	n := b.arena.get(nid)
	n.next = id
	n.prev = b.arena.get(id).prev
	if n.prev != nilNode {
		b.arena.get(n.prev).next = nid
	} else {
		b.head = nid
	}
	b.arena.get(id).prev = nid
	return nid
}

// unlink removes id from the chain and releases it.
func (b *Buffer) unlink(id int) {
	n := b.arena.get(id)
	if n.prev != nilNode {
		b.arena.get(n.prev).next = n.next
	} else {
		b.head = n.next
	}
	if n.next != nilNode {
		b.arena.get(n.next).prev = n.prev
	} else {
		b.tail = n.prev
	}
	b.arena.release(id)
}

// sole reports whether id is the only node in the chain.
func (b *Buffer) sole(id int) bool {
	return b.head == id && b.tail == id
}

// Insert places ch before the cursor, growing or splitting nodes as needed.
func (b *Buffer) Insert(ch rune) {
	event := tracking.EventNone
	if b.cur == nilNode {
		b.cur = b.insertAfter(nilNode)
		b.off = 0
		event = tracking.EventNodeAlloc
	}

	var desc string
	var shifts int
	n := b.arena.get(b.cur)
	switch {
	case n.n < Capacity:
		shifts = n.n - b.off
		copy(n.cells[b.off+1:n.n+1], n.cells[b.off:n.n])
		n.cells[b.off] = ch
		n.n++
		b.off++
		desc = fmt.Sprintf("Inserted %q (%d shifts within node)", ch, shifts)

	case b.off == n.n:
		nid := b.insertAfter(b.cur)
		succ := b.arena.get(nid)
		succ.cells[0] = ch
		succ.n = 1
		b.cur, b.off = nid, 1
		event = tracking.EventNodeAlloc
		desc = fmt.Sprintf("Inserted %q (new node)", ch)

	case b.off == 0:
		// Full node, cursor at its start: the cell belongs at the end of
		// the predecessor when it has room.
		if p := n.prev; p != nilNode && b.arena.get(p).n < Capacity {
			pn := b.arena.get(p)
			pn.cells[pn.n] = ch
			pn.n++
			b.cur, b.off = p, pn.n
			desc = fmt.Sprintf("Inserted %q (appended to previous node)", ch)
			break
		}
		nid := b.insertBefore(b.cur)
		pred := b.arena.get(nid)
		pred.cells[0] = ch
		pred.n = 1
		b.cur, b.off = nid, 1
		event = tracking.EventNodeAlloc
		desc = fmt.Sprintf("Inserted %q (new node)", ch)

	default:
		nid := b.insertAfter(b.cur)
		n = b.arena.get(b.cur) // alloc may have moved the arena
		succ := b.arena.get(nid)
		succ.cells[0] = ch
		shifts = copy(succ.cells[1:], n.cells[b.off:n.n])
		succ.n = 1 + shifts
		n.n = b.off
		b.cur, b.off = nid, 1
		event = tracking.EventNodeSplit
		desc = fmt.Sprintf("Inserted %q (split node, moved %d cells)", ch, shifts)
	}

	b.length++
	b.ops.Record(tracking.Operation{
		Kind:        tracking.OpInsert,
		Description: desc,
		Chars:       1,
		Shifts:      shifts,
		Event:       event,
	})
}

// DeleteLeft removes the cell before the cursor. A node left empty is
// unlinked and the cursor moves to the end of the previous node, or to the
// start of the next one.
func (b *Buffer) DeleteLeft() {
	if b.cur == nilNode {
		b.noop(tracking.OpDeleteLeft, "Cannot delete at beginning")
		return
	}
	if b.off == 0 {
		p := b.arena.get(b.cur).prev
		if p == nilNode {
			b.noop(tracking.OpDeleteLeft, "Cannot delete at beginning")
			return
		}
		b.cur, b.off = p, b.arena.get(p).n
	}

	n := b.arena.get(b.cur)
	shifts := n.n - b.off
	copy(n.cells[b.off-1:], n.cells[b.off:n.n])
	n.n--
	b.off--
	b.length--

	event := tracking.EventNone
	if n.n == 0 && !b.sole(b.cur) {
		prev, next := n.prev, n.next
		b.unlink(b.cur)
		if prev != nilNode {
			b.cur, b.off = prev, b.arena.get(prev).n
		} else {
			b.cur, b.off = next, 0
		}
		event = tracking.EventNodeRemove
	}

	b.ops.Record(tracking.Operation{
		Kind:        tracking.OpDeleteLeft,
		Description: fmt.Sprintf("Deleted character (%d shifts within node)", shifts),
		Chars:       1,
		Shifts:      shifts,
		Event:       event,
	})
}

// DeleteRight removes the cell at the cursor. A node left empty is unlinked
// and the cursor moves to the start of the next node, or to the end of the
// previous one.
func (b *Buffer) DeleteRight() {
	if b.cur == nilNode {
		b.noop(tracking.OpDeleteRight, "Cannot delete at end")
		return
	}
	if b.off == b.arena.get(b.cur).n {
		next := b.arena.get(b.cur).next
		if next == nilNode {
			b.noop(tracking.OpDeleteRight, "Cannot delete at end")
			return
		}
		b.cur, b.off = next, 0
	}

	n := b.arena.get(b.cur)
	shifts := n.n - b.off - 1
	copy(n.cells[b.off:], n.cells[b.off+1:n.n])
	n.n--
	b.length--

	event := tracking.EventNone
	if n.n == 0 && !b.sole(b.cur) {
		prev, next := n.prev, n.next
		b.unlink(b.cur)
		if next != nilNode {
			b.cur, b.off = next, 0
		} else {
			b.cur, b.off = prev, b.arena.get(prev).n
		}
		event = tracking.EventNodeRemove
	}

	b.ops.Record(tracking.Operation{
		Kind:        tracking.OpDeleteRight,
		Description: fmt.Sprintf("Deleted character to the right (%d shifts within node)", shifts),
		Chars:       1,
		Shifts:      shifts,
		Event:       event,
	})
}

// MoveLeft moves the cursor one cell left, stepping into the previous node
// when it leaves the current one.
func (b *Buffer) MoveLeft() {
	switch {
	case b.cur == nilNode:
	case b.off > 0:
		b.off--
		b.ops.Record(tracking.Operation{Kind: tracking.OpMoveLeft, Description: "Moved cursor left"})
		return
	case b.arena.get(b.cur).prev != nilNode:
		p := b.arena.get(b.cur).prev
		b.cur, b.off = p, b.arena.get(p).n-1
		b.ops.Record(tracking.Operation{Kind: tracking.OpMoveLeft, Description: "Moved cursor left to previous node"})
		return
	}
	b.noop(tracking.OpMoveLeft, "Cursor already at start")
}

// MoveRight moves the cursor one cell right, stepping into the next node
// when it leaves the current one.
func (b *Buffer) MoveRight() {
	switch {
	case b.cur == nilNode:
	case b.off < b.arena.get(b.cur).n:
		b.off++
		b.ops.Record(tracking.Operation{Kind: tracking.OpMoveRight, Description: "Moved cursor right"})
		return
	case b.arena.get(b.cur).next != nilNode:
		b.cur, b.off = b.arena.get(b.cur).next, 1
		b.ops.Record(tracking.Operation{Kind: tracking.OpMoveRight, Description: "Moved cursor right to next node"})
		return
	}
	b.noop(tracking.OpMoveRight, "Cursor already at end")
}

// Clear releases every node.
func (b *Buffer) Clear() {
	n := b.length
	b.arena.reset()
	b.head, b.tail, b.cur = nilNode, nilNode, nilNode
	b.off = 0
	b.length = 0
	b.ops.Record(tracking.Operation{Kind: tracking.OpClear, Description: "Cleared all text", Chars: n})
}

func (b *Buffer) noop(kind tracking.OpKind, desc string) {
	b.ops.Record(tracking.Operation{Kind: kind, Description: desc, NoOp: true})
}

// Text concatenates the cells of every node.
func (b *Buffer) Text() string {
	var sb strings.Builder
	for id := b.head; id != nilNode; id = b.arena.get(id).next {
		n := b.arena.get(id)
		for _, r := range n.cells[:n.n] {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Cursor sums the lengths of the nodes before the cursor node and adds the
// offset within it.
func (b *Buffer) Cursor() int {
	if b.cur == nilNode {
		return 0
	}
	pos := 0
	for id := b.head; id != b.cur; id = b.arena.get(id).next {
		pos += b.arena.get(id).n
	}
	return pos + b.off
}

// Len returns the number of cells.
func (b *Buffer) Len() int { return b.length }

// MemoryEstimate returns cells plus two link fields per node.
func (b *Buffer) MemoryEstimate() int { return b.length + 2*b.arena.live }

// Kind reports buffer.KindLinked.
func (b *Buffer) Kind() buffer.Kind { return buffer.KindLinked }

// NodeCount returns the number of live nodes.
func (b *Buffer) NodeCount() int { return b.arena.live }

// NodeCapacity returns Capacity.
func (b *Buffer) NodeCapacity() int { return Capacity }

// NodeLens returns the cell count of each node, head first.
func (b *Buffer) NodeLens() []int {
	lens := make([]int, 0, b.arena.live)
	for id := b.head; id != nilNode; id = b.arena.get(id).next {
		lens = append(lens, b.arena.get(id).n)
	}
	return lens
}

// DisplayTokens yields the cells of every node with a separator between
// nodes. The cell at the cursor is marked.
func (b *Buffer) DisplayTokens() iter.Seq[buffer.Token] {
	cells := func(yield func(buffer.Token) bool) {
		cursor := b.Cursor()
		pos := 0
		for id := b.head; id != nilNode; id = b.arena.get(id).next {
			n := b.arena.get(id)
			for _, r := range n.cells[:n.n] {
				if !yield(buffer.Cell(r, pos == cursor)) {
					return
				}
				pos++
			}
			if n.next != nilNode && !yield(buffer.Separator()) {
				return
			}
		}
	}
	return buffer.Pad(cells, b.width)
}

// Validate walks the chain and checks links, node sizes and the cursor.
func (b *Buffer) Validate() error {
	if b.head == nilNode {
		if b.tail != nilNode || b.cur != nilNode || b.length != 0 || b.arena.live != 0 {
			return fmt.Errorf("%w: empty chain with tail=%d cur=%d length=%d live=%d",
				buffer.ErrBrokenLink, b.tail, b.cur, b.length, b.arena.live)
		}
		return nil
	}

	var (
		count, total int
		prev         = nilNode
		cursorSeen   bool
	)
	for id := b.head; id != nilNode; id = b.arena.get(id).next {
		n := b.arena.get(id)
		if n.prev != prev {
			return fmt.Errorf("%w: node %d prev=%d, expected %d", buffer.ErrBrokenLink, id, n.prev, prev)
		}
		if n.n > Capacity {
			return fmt.Errorf("%w: node %d holds %d cells", buffer.ErrNodeOverflow, id, n.n)
		}
		if n.n == 0 && !b.sole(id) {
			return fmt.Errorf("%w: node %d", buffer.ErrEmptyNode, id)
		}
		if id == b.cur {
			cursorSeen = true
			if b.off < 0 || b.off > n.n {
				return fmt.Errorf("%w: offset %d in node of %d cells", buffer.ErrCursorRange, b.off, n.n)
			}
		}
		count++
		total += n.n
		prev = id
		if count > b.arena.live {
			return fmt.Errorf("%w: chain longer than %d live nodes", buffer.ErrBrokenLink, b.arena.live)
		}
	}
	if prev != b.tail {
		return fmt.Errorf("%w: tail=%d, last node=%d", buffer.ErrBrokenLink, b.tail, prev)
	}
	if count != b.arena.live {
		return fmt.Errorf("%w: %d linked nodes, %d live", buffer.ErrBrokenLink, count, b.arena.live)
	}
	if total != b.length {
		return fmt.Errorf("%w: %d cells linked, length %d", buffer.ErrBrokenLink, total, b.length)
	}
	if !cursorSeen {
		return fmt.Errorf("%w: cursor node %d not in chain", buffer.ErrCursorRange, b.cur)
	}
	return nil
}

// OperationCount returns the number of recorded operations.
func (b *Buffer) OperationCount() int { return b.ops.Count() }

// LastOperation describes the most recent operation.
func (b *Buffer) LastOperation() string { return b.ops.Last() }

// ResetOperationTracking clears the telemetry.
func (b *Buffer) ResetOperationTracking() { b.ops.Reset() }

// RecentOperations returns up to n journal entries.
func (b *Buffer) RecentOperations(n int) []tracking.Operation { return b.ops.Recent(n) }

// OperationSummary returns telemetry totals.
func (b *Buffer) OperationSummary() tracking.Summary { return b.ops.Summary() }
