package fastlock

// list is a doubly-linked list of parked goroutines, identical in shape to
// the intrusive list nsync.Mu uses for its waiter queue.
type list struct {
	next *list
	prev *list
	elem *parked // the parked struct this list node is embedded in, if any
}

func (l *list) makeEmpty() {
	l.next = l
	l.prev = l
}

func (l *list) isEmpty() bool {
	return l.next == l
}

// insertAfter inserts e into the list immediately after p.
func (e *list) insertAfter(p *list) {
	e.next = p.next
	e.prev = p
	e.next.prev = e
	e.prev.next = e
}

func (e *list) remove() {
	e.next.prev = e.prev
	e.prev.next = e.next
}
