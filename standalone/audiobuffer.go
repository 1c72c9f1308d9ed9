package standalone

import (
	"io"
	"sync"
)

// AudioRingBuffer is a fixed-size byte FIFO between the driver, which
// writes after every frame, and oto's player goroutine, which reads. When
// full, the oldest bytes are dropped. Read blocks until data arrives or the
// buffer is closed.
type AudioRingBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	rpos   int
	count  int
	closed bool
}

// NewAudioRingBuffer creates a buffer holding up to capacity bytes.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	rb := &AudioRingBuffer{buf: make([]byte, capacity)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write appends p, overwriting the oldest data on overflow.
func (rb *AudioRingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed || len(p) == 0 {
		return
	}

	size := len(rb.buf)
	if len(p) >= size {
		copy(rb.buf, p[len(p)-size:])
		rb.rpos = 0
		rb.count = size
		rb.cond.Broadcast()
		return
	}

	if over := rb.count + len(p) - size; over > 0 {
		rb.rpos = (rb.rpos + over) % size
		rb.count -= over
	}

	wpos := (rb.rpos + rb.count) % size
	n := copy(rb.buf[wpos:], p)
	copy(rb.buf, p[n:])
	rb.count += len(p)
	rb.cond.Broadcast()
}

// Read implements io.Reader for oto.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 && !rb.closed {
		rb.cond.Wait()
	}
	if rb.count == 0 {
		return 0, io.EOF
	}

	n := len(p)
	if n > rb.count {
		n = rb.count
	}
	size := len(rb.buf)
	first := copy(p[:n], rb.buf[rb.rpos:])
	if first < n {
		copy(p[first:n], rb.buf)
	}
	rb.rpos = (rb.rpos + n) % size
	rb.count -= n
	return n, nil
}

// Buffered returns the number of unread bytes.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Clear drops all unread bytes.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	rb.rpos = 0
	rb.count = 0
	rb.mu.Unlock()
}

// Close wakes blocked readers. Remaining data can still be read, after
// which Read returns io.EOF.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	rb.closed = true
	rb.cond.Broadcast()
	rb.mu.Unlock()
}
