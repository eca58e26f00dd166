package outcome

import "fmt"

// Buffer is a fixed-capacity message holder. Its capacity counts the
// terminating byte of the original C convention, so a Buffer of capacity n
// keeps at most n-1 bytes of text. Longer messages are silently truncated.
// A nil Buffer or a zero capacity suppresses messages entirely.
type Buffer struct {
	capacity int
	buf      []byte
}

// NewBuffer creates a message buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{
		capacity: capacity,
		buf:      make([]byte, 0, capacity),
	}
}

// Cap returns the buffer capacity, zero for a nil buffer.
func (b *Buffer) Cap() int {
	if b == nil {
		return 0
	}
	return b.capacity
}

// Enabled reports whether messages can be produced into b.
func (b *Buffer) Enabled() bool {
	return b.Cap() > 0
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	b.buf = b.buf[:0]
}

// Printf replaces the buffer content with the formatted message.
func (b *Buffer) Printf(format string, args ...any) {
	if !b.Enabled() {
		return
	}
	s := fmt.Sprintf(format, args...)
	if max := b.capacity - 1; len(s) > max {
		s = s[:max]
	}
	b.buf = append(b.buf[:0], s...)
}

// Len returns the length of the stored message.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.buf)
}

func (b *Buffer) String() string {
	if b == nil {
		return ""
	}
	return string(b.buf)
}
