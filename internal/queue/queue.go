// Package queue implements a double-ended ring buffer queue.
package queue

const minCap = 4

// Queue is a FIFO queue that also accepts items at the front.
// Zero value is an empty queue ready to use.
type Queue[T any] struct {
	items []T
	head  int
	count int
}

func New[T any](items ...T) *Queue[T] {
	q := &Queue[T]{}
	for _, item := range items {
		q.Append(item)
	}
	return q
}

func (q *Queue[T]) IsEmpty() bool {
	return q.count == 0
}

func (q *Queue[T]) Len() int {
	return q.count
}

// Items returns a copy of queued items, head first.
func (q *Queue[T]) Items() []T {
	result := make([]T, q.count)
	for i := range result {
		result[i] = q.items[(q.head+i)%len(q.items)]
	}
	return result
}

// Append adds an item to the tail.
func (q *Queue[T]) Append(item T) *Queue[T] {
	q.reserve()
	q.items[(q.head+q.count)%len(q.items)] = item
	q.count++
	return q
}

// Prepend adds an item to the head, it will be returned by the next call to First.
func (q *Queue[T]) Prepend(item T) *Queue[T] {
	q.reserve()
	q.head = (q.head + len(q.items) - 1) % len(q.items)
	q.items[q.head] = item
	q.count++
	return q
}

// Peek returns the head item without removing it.
func (q *Queue[T]) Peek() (item T, ok bool) {
	if q.count == 0 {
		return
	}
	return q.items[q.head], true
}

// First removes and returns the head item.
func (q *Queue[T]) First() (item T, ok bool) {
	if q.count == 0 {
		return
	}

	var zero T
	item = q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.count--
	if q.count == 0 {
		q.head = 0
	}
	return item, true
}

// Last removes and returns the tail item.
func (q *Queue[T]) Last() (item T, ok bool) {
	if q.count == 0 {
		return
	}

	var zero T
	index := (q.head + q.count - 1) % len(q.items)
	item = q.items[index]
	q.items[index] = zero
	q.count--
	return item, true
}

// Clear drops all items keeping allocated buffer.
func (q *Queue[T]) Clear() {
	var zero T
	for i := range q.items {
		q.items[i] = zero
	}
	q.head = 0
	q.count = 0
}

func (q *Queue[T]) reserve() {
	if q.count < len(q.items) {
		return
	}

	size := len(q.items) << 1
	if size < minCap {
		size = minCap
	}
	items := make([]T, size)
	copy(items, q.Items())
	q.items = items
	q.head = 0
}
