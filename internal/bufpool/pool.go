// Package bufpool recycles RGBA pixel buffers.
package bufpool

import "github.com/gogpu/cellimage"

// Pool groups buffers by pixel size so that render passes placing images
// into identically sized areas reuse the same memory.
//
// Pool is not safe for concurrent use.
type Pool struct {
	buckets map[cellimage.Size][][]byte
	maxSize int // max buffers per bucket, 0 for unlimited

	reused    uint64
	allocated uint64
}

// New creates a pool retaining at most maxPerBucket buffers per size.
// A maxPerBucket of 0 means unlimited.
func New(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[cellimage.Size][][]byte),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of exactly size.Area()*4 bytes.
// Non-positive sizes yield an empty buffer.
func (p *Pool) Get(size cellimage.Size) []byte {
	if !size.IsPositive() {
		return []byte{}
	}

	bucket := p.buckets[size]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[size] = bucket[:n-1]
		clear(buf)
		p.reused++
		return buf
	}

	p.allocated++
	return make([]byte, size.Area()*cellimage.BytesPerPixel)
}

// Put hands buf back for reuse. Buffers that do not match size, and
// buffers beyond the bucket limit, are dropped.
func (p *Pool) Put(size cellimage.Size, buf []byte) {
	if !size.IsPositive() || len(buf) != size.Area()*cellimage.BytesPerPixel {
		return
	}

	bucket := p.buckets[size]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[size] = append(bucket, buf)
}

// Len returns the number of idle buffers.
func (p *Pool) Len() int {
	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}

// Reused returns how many Get calls were served from the pool.
func (p *Pool) Reused() uint64 { return p.reused }

// Allocated returns how many Get calls allocated a new buffer.
func (p *Pool) Allocated() uint64 { return p.allocated }

// Reset drops every idle buffer.
func (p *Pool) Reset() {
	clear(p.buckets)
}
