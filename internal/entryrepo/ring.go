package entryrepo

// ring keeps the last cap values pushed to it.
type ring[T any] struct {
	buf  []T
	next int
	full bool
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)

	if r.next == 0 {
		r.full = true
	}
}

// items returns the kept values oldest first.
func (r *ring[T]) items() []T {
	if !r.full {
		return append([]T(nil), r.buf[:r.next]...)
	}

	out := make([]T, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)

	return append(out, r.buf[:r.next]...)
}
