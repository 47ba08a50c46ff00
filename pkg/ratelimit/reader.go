// Package ratelimit provides token-bucket bandwidth limiting for the
// copy path of an update.
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// Limiter controls the rate of data transfer across readers sharing it
type Limiter struct {
	bytesPerSecond int64
	mu             sync.Mutex
	tokens         int64
	lastUpdate     time.Time
	bucketSize     int64
}

// NewLimiter creates a limiter for the given bytes-per-second rate.
// A rate of zero or less disables limiting (returns nil).
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// One second of burst, with a 64KB floor for smooth small transfers
	bucketSize := bytesPerSecond
	if bucketSize < 65536 {
		bucketSize = 65536
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		tokens:         bucketSize,
		lastUpdate:     time.Now(),
		bucketSize:     bucketSize,
	}
}

func (l *Limiter) waitForTokens(needed int64) {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= needed {
			l.mu.Unlock()
			return
		}

		deficit := needed - l.tokens
		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		l.mu.Unlock()

		time.Sleep(wait)
	}
}

// refill adds tokens for elapsed time; callers hold the lock
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastUpdate)

	add := int64(float64(elapsed) / float64(time.Second) * float64(l.bytesPerSecond))
	if add > 0 {
		l.tokens += add
		if l.tokens > l.bucketSize {
			l.tokens = l.bucketSize
		}
		l.lastUpdate = now
	}
}

func (l *Limiter) consume(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens -= n
	if l.tokens < 0 {
		l.tokens = 0
	}
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps a reader with rate limiting; a nil limiter is a no-op
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{reader: reader, limiter: limiter, ctx: ctx}
}

// Read implements io.Reader, blocking until the bucket has tokens
func (r *Reader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	toRead := len(p)
	if toRead > int(r.limiter.bucketSize) {
		toRead = int(r.limiter.bucketSize)
	}

	r.limiter.waitForTokens(int64(toRead))

	n, err := r.reader.Read(p[:toRead])
	if n > 0 {
		r.limiter.consume(int64(n))
	}
	return n, err
}

// ReadCloser wraps an io.ReadCloser with rate limiting
type ReadCloser struct {
	Reader
	closer io.Closer
}

// NewReadCloser wraps a ReadCloser with rate limiting; a nil limiter is a no-op
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{
		Reader: Reader{reader: rc, limiter: limiter, ctx: ctx},
		closer: rc,
	}
}

// Close implements io.Closer
func (rc *ReadCloser) Close() error {
	return rc.closer.Close()
}
