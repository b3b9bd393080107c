// Package history keeps a bounded rolling window of samples per metric
// series for trend display.
package history

import "sync"

// DefaultCapacity is the number of points retained per series.
const DefaultCapacity = 20

// Series is a fixed-capacity FIFO ring of float64 samples. When full, an
// append overwrites the oldest sample. The zero value is not usable; call
// NewSeries.
type Series struct {
	buf   []float64
	start int // index of the oldest sample
	n     int
}

// NewSeries returns an empty series holding at most capacity samples.
// A capacity below 1 is raised to 1.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{buf: make([]float64, capacity)}
}

// Append pushes v, evicting the oldest sample when the series is full.
func (s *Series) Append(v float64) {
	c := len(s.buf)
	if s.n < c {
		s.buf[(s.start+s.n)%c] = v
		s.n++
		return
	}
	s.buf[s.start] = v
	s.start = (s.start + 1) % c
}

// Values returns a copy of the samples, oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.buf[(s.start+i)%len(s.buf)]
	}
	return out
}

// Len returns the number of samples currently held.
func (s *Series) Len() int { return s.n }

// Cap returns the maximum number of samples held.
func (s *Series) Cap() int { return len(s.buf) }

// Buffer holds one Series per key. It is safe for concurrent use: the
// poller appends while UI goroutines read copies.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	series   map[string]*Series
	order    []string
}

// New creates a buffer whose series hold capacity points each. Keys listed
// here exist (empty) from the start; other keys are created on first Append.
func New(capacity int, keys ...string) *Buffer {
	b := &Buffer{
		capacity: capacity,
		series:   make(map[string]*Series, len(keys)),
	}
	for _, k := range keys {
		b.ensure(k)
	}
	return b
}

func (b *Buffer) ensure(key string) *Series {
	s, ok := b.series[key]
	if !ok {
		s = NewSeries(b.capacity)
		b.series[key] = s
		b.order = append(b.order, key)
	}
	return s
}

// Append pushes v onto the series named key.
func (b *Buffer) Append(key string, v float64) {
	b.mu.Lock()
	b.ensure(key).Append(v)
	b.mu.Unlock()
}

// Series returns the samples for key, oldest first. Unknown keys yield an
// empty slice.
func (b *Buffer) Series(key string) []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.series[key]
	if !ok {
		return []float64{}
	}
	return s.Values()
}

// Keys returns the series names in creation order.
func (b *Buffer) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Snapshot copies every series. The result shares no memory with the
// buffer, so it can be handed to subscribers as is.
func (b *Buffer) Snapshot() map[string][]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string][]float64, len(b.series))
	for k, s := range b.series {
		out[k] = s.Values()
	}
	return out
}
