package mxl

import "sync"

// MemoryChannel is the in-process reference Channel implementation: an
// unbounded FIFO guarded by a mutex, naive in the same way the original
// in-memory edge channel is naive -- a production host is expected to
// replace it with something that bounds memory, but single-threaded
// correctness under the tick protocol only requires FIFO order and the
// three-state close discipline.
type MemoryChannel struct {
	mu     sync.Mutex
	state  ChannelState
	buffer []Frame[[]byte]
}

// NewMemoryChannel returns a fresh, empty, Running channel.
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{}
}

// Send accepts a frame. After the writer has closed (FinishedWriting) or the
// reader has consumed that close (FinishedReading), further sends are
// dropped as a protocol violation. The drop is silent: MemoryChannel has no
// logger, and no diagnostic is emitted for it.
func (c *MemoryChannel) Send(f Frame[[]byte]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return
	}

	c.buffer = append(c.buffer, f)

	if f.IsEnd() {
		c.state = FinishedWriting
	}
}

// Recv pops the next frame if one is buffered. Consuming an End frame
// transitions the channel to FinishedReading.
func (c *MemoryChannel) Recv() (Frame[[]byte], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == FinishedReading || len(c.buffer) == 0 {
		return Frame[[]byte]{}, false
	}

	f := c.buffer[0]
	c.buffer = c.buffer[1:]

	if f.IsEnd() {
		c.state = FinishedReading
	}

	return f, true
}

// Finished reports whether the writer has closed this channel.
func (c *MemoryChannel) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state == FinishedWriting || c.state == FinishedReading
}

// State returns the current three-state lifecycle value, mainly useful for
// tests and introspection.
func (c *MemoryChannel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}
