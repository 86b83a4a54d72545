// Package rtlist implements the real-time list: an owning, intrusively
// linked sequence of Items that the audio thread may only iterate, and
// that only queue.Command executions may mutate. It generalizes the
// teacher's mutability.Mutability/Mutations bookkeeping and pipe.Pipe's
// componentID map (pipe.go) from "a set of deferred closures keyed by
// component" into "an ordered list of owned nodes mutated by two-phase
// commands", per apf's RTList (mimoprocessor.h).
package rtlist

import "github.com/dudk/mimo/internal/queue"

// Item is any scheduled unit of work owned by a List.
type Item interface {
	Process() error
}

// Node is one link in the list. Its identity is the handle the control
// thread holds between Add and a later Remove; only commands created by
// the List's own methods may dereference prev/next.
type Node struct {
	Item Item
	prev *Node
	next *Node
}

// Next returns the following node in process order, or nil at the tail.
func (n *Node) Next() *Node { return n.next }

// Prev returns the preceding node in process order, or nil at the head.
func (n *Node) Prev() *Node { return n.prev }

// List is an ordered sequence of owning pointers to Items. Its contents
// change only during a queue.Command's Execute, which runs on the audio
// thread; between the start and end of one process() cycle the contents
// are fixed, matching the invariant in spec §3.
type List struct {
	head *Node
	tail *Node
	len  int
}

// New returns an empty list.
func New() *List {
	return &List{}
}

// Front returns the first node in process order, or nil if the list is
// empty.
func (l *List) Front() *Node { return l.head }

// Len returns the current item count. Only meaningful when read from the
// audio thread between cycles, or from the control thread while
// deactivated.
func (l *List) Len() int { return l.len }

func (l *List) link(n *Node) {
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.len++
}

func (l *List) unlink(n *Node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

// Add allocates a Node for item (on the calling, non-real-time thread)
// and returns it alongside a Command that links it at the tail when
// executed. Node identity is valid immediately — the caller may hand it
// to Remove before the command has even been pushed — but the item is
// not visible to iteration until the command's Execute has run on the
// audio thread, matching spec §4.2's "add(new_item)".
func (l *List) Add(item Item) (*Node, queue.Command) {
	n := &Node{Item: item}
	return n, queue.Func{
		ExecuteFunc: func() { l.link(n) },
	}
}

// Remove returns a Command that unlinks n when executed on the audio
// thread, and drops the list's reference to its Item when cleaned up on
// the control thread — the Go rendering of "the item's destructor runs
// on the control thread", since item disposal here means making it
// eligible for GC rather than an explicit free.
func (l *List) Remove(n *Node) queue.Command {
	return queue.Func{
		ExecuteFunc: func() { l.unlink(n) },
		CleanupFunc: func() { n.Item = nil },
	}
}

// Clear returns a Command that empties the list when executed, and
// drops every item's reference when cleaned up — equivalent to
// Remove-ing every item, per spec §4.2.
func (l *List) Clear() queue.Command {
	var removed *Node
	return queue.Func{
		ExecuteFunc: func() {
			removed = l.head
			l.head, l.tail, l.len = nil, nil, 0
		},
		CleanupFunc: func() {
			for n := removed; n != nil; {
				next := n.next
				n.Item, n.prev, n.next = nil, nil, nil
				n = next
			}
		},
	}
}

// Splice returns a Command that, when executed, removes the run of
// nodes [first, last] (inclusive) from src — or src's entire contents if
// first and last are both nil — and re-links them into l starting at
// zero-based position pos. Items become accessible in l only once this
// command's Execute has run, per spec §4.2.
func (l *List) Splice(pos int, src *List, first, last *Node) queue.Command {
	return queue.Func{
		ExecuteFunc: func() {
			if first == nil && last == nil {
				first, last = src.head, src.tail
			}
			if first == nil {
				return
			}
			src.detachRun(first, last)
			l.attachRun(pos, first, last)
		},
	}
}

// detachRun unlinks the closed run [first, last] from l in one pass,
// leaving the run's own prev/next pointers intact so attachRun can
// relink it elsewhere.
func (l *List) detachRun(first, last *Node) {
	count := 1
	for n := first; n != last; n = n.next {
		count++
	}
	if first.prev != nil {
		first.prev.next = last.next
	} else {
		l.head = last.next
	}
	if last.next != nil {
		last.next.prev = first.prev
	} else {
		l.tail = first.prev
	}
	l.len -= count
}

// attachRun links the closed run [first, last] into l starting at
// zero-based position pos, clamped to the list's current length.
func (l *List) attachRun(pos int, first, last *Node) {
	count := 1
	for n := first; n != last; n = n.next {
		count++
	}

	after := l.nodeAt(pos)
	var before *Node
	if after != nil {
		before = after.prev
	} else {
		before = l.tail
	}

	first.prev = before
	if before != nil {
		before.next = first
	} else {
		l.head = first
	}
	last.next = after
	if after != nil {
		after.prev = last
	} else {
		l.tail = last
	}
	l.len += count
}

// nodeAt returns the node currently at zero-based position pos, or nil
// if pos is at or past the end of the list.
func (l *List) nodeAt(pos int) *Node {
	n := l.head
	for i := 0; i < pos && n != nil; i++ {
		n = n.next
	}
	return n
}

// Each calls f with the zero-based position and Item of every node in
// process order. f must not mutate the list.
func (l *List) Each(f func(position int, item Item)) {
	i := 0
	for n := l.head; n != nil; n = n.next {
		f(i, n.Item)
		i++
	}
}
