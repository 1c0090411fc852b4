// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rrd

import "fmt"

// Policy supplies the aggregation semantics a Ring has no way to know on its
// own, since the payload type P is opaque to the ring.
//
//   - Update is called when a new sample lands in the bucket that is already
//     active (same BucketStart as the ring's current window). It reads the
//     active bucket (Ring.Active) and decides how to merge the incoming
//     sample into it.
//   - Zero is called once per intermediate bucket the ring advances through
//     while skipping forward across a gap to the sample's new bucket. Ring.Active
//     refers to the just-advanced bucket; Zero's job is to give it a value —
//     typically by carrying the incoming sample forward, carrying the
//     previous bucket's value forward (Ring.Previous), or writing a constant.
//
// ctx is an opaque value threaded through from NewRing, letting a Policy carry
// state (accumulators, constants, whatever it needs) without the Ring having
// to know its type. The original C implementation this package is modeled on
// passed no such context to its callbacks; every Policy here takes one.
type Policy[T Timestamp, P any, C any] interface {
	Update(r *Ring[T, P, C], ctx C, incoming *P)
	Zero(r *Ring[T, P, C], ctx C, incoming *P)
}

// Ring is a fixed-capacity circular store of buckets of equal width. See the
// package doc for the overall model. The zero value is not usable; construct
// with NewRing.
type Ring[T Timestamp, P any, C any] struct {
	name     string
	width    T
	capacity int
	entries  []P

	// head/tail are -1 when the ring is empty; otherwise both are valid
	// indices into entries and the occupied logical sequence (oldest first)
	// is the wrapped slice beginning at head and ending at tail inclusive.
	head, tail int
	start      T // BucketStart-aligned lower edge of the bucket at tail
	last       T // most recent timestamp accepted; rejects t < last

	policy Policy[T, P, C]
	ctx    C
}

// NewRing allocates a Ring with the given name (informational), bucket width
// (must be > 0), capacity in buckets (must be >= 1), and policy (must not be
// nil — constructing a ring fails loudly rather than running with a missing
// aggregation callback). ctx is passed to every Policy call for the lifetime
// of the ring.
func NewRing[T Timestamp, P any, C any](name string, width T, capacity int, policy Policy[T, P, C], ctx C) (*Ring[T, P, C], error) {
	if width <= 0 {
		return nil, fmt.Errorf("rrd: ring %q: width must be > 0", name)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("rrd: ring %q: capacity must be >= 1", name)
	}
	if policy == nil {
		return nil, fmt.Errorf("rrd: ring %q: policy must not be nil", name)
	}

	return &Ring[T, P, C]{
		name:     name,
		width:    width,
		capacity: capacity,
		entries:  make([]P, capacity),
		head:     -1,
		tail:     -1,
		policy:   policy,
		ctx:      ctx,
	}, nil
}

// Destroy releases the ring's backing storage. Go's garbage collector would
// eventually reclaim it regardless; Destroy exists for API parity with the
// original (which made exactly one allocation per ring and exactly one free)
// and to drop payload references early when P itself holds memory.
func (r *Ring[T, P, C]) Destroy() {
	var zero P
	for i := range r.entries {
		r.entries[i] = zero
	}
	r.entries = nil
	r.head, r.tail = -1, -1
}

// SetPolicy replaces the ring's aggregation policy. Overwrites any previous
// policy; in-flight state (head/tail/start/last) is untouched.
func (r *Ring[T, P, C]) SetPolicy(policy Policy[T, P, C]) {
	r.policy = policy
}

func (r *Ring[T, P, C]) Name() string   { return r.name }
func (r *Ring[T, P, C]) Width() T       { return r.width }
func (r *Ring[T, P, C]) Capacity() int  { return r.capacity }
func (r *Ring[T, P, C]) Start() T       { return r.start }
func (r *Ring[T, P, C]) Last() T        { return r.last }
func (r *Ring[T, P, C]) TailIndex() int { return r.tail }

// Length returns the number of occupied buckets, always in [0, Capacity()].
func (r *Ring[T, P, C]) Length() int {
	switch {
	case r.head == -1:
		return 0
	case r.head <= r.tail:
		return r.tail - r.head + 1
	default:
		return r.capacity - r.head + r.tail + 1
	}
}

// Horizon returns the half-open interval [low, high) currently retained by
// the ring: low is the start of the oldest occupied bucket, high is the end
// of the active bucket.
func (r *Ring[T, P, C]) Horizon() (low, high T) {
	n := r.Length()
	if n == 0 {
		return 0, 0
	}
	low = r.start - r.width*T(n-1)
	high = r.start + r.width
	return low, high
}

// Get returns a pointer to the i-th logical bucket, oldest first (0-based),
// or nil if i is out of [0, Length()).
func (r *Ring[T, P, C]) Get(i int) *P {
	n := r.Length()
	if i < 0 || i >= n {
		return nil
	}
	return &r.entries[r.wrap(r.head+i)]
}

// Bucket returns a pointer to the raw bucket at physical index i, regardless
// of logical occupancy. Policies use this (together with TailIndex) to
// address tail-1 for carry-forward semantics in Zero.
func (r *Ring[T, P, C]) Bucket(i int) *P {
	if i < 0 || i >= r.capacity {
		return nil
	}
	return &r.entries[i]
}

// Active returns a pointer to the currently active bucket (physical index
// tail). Valid to call from Update and from Zero (Zero always sees tail
// already pointing at the just-advanced bucket).
func (r *Ring[T, P, C]) Active() *P {
	return &r.entries[r.tail]
}

// Previous returns a pointer to the bucket physically before tail (wrapping),
// for carry-forward Zero policies. The caller is responsible for knowing this
// is only meaningful once the ring holds at least one prior bucket — calling
// it on a ring with Length() <= 1 returns a pointer to a bucket that was
// never written (the zero value of P).
func (r *Ring[T, P, C]) Previous() *P {
	return &r.entries[r.wrap(r.tail-1)]
}

func (r *Ring[T, P, C]) wrap(i int) int {
	m := i % r.capacity
	if m < 0 {
		m += r.capacity
	}
	return m
}

// advance moves the ring's window forward by exactly one bucket width,
// evicting the oldest bucket once the ring is full. Mirrors the original's
// "start = bucket_start(start + width + 1, width)" formula verbatim,
// including its "+1" guard against a no-op boundary case.
func (r *Ring[T, P, C]) advance() {
	r.tail = r.wrap(r.tail + 1)
	if r.tail == r.head {
		r.head = r.wrap(r.head + 1)
	}
	r.start = BucketStart(r.start+r.width+1, r.width)
}

// InsertAt runs the insert state machine:
//
//   - empty ring: the sample becomes the sole occupant.
//   - t older than the last accepted sample: silently rejected (no mutation).
//   - t in the active bucket: Policy.Update merges it in.
//   - t past the active bucket: the ring advances one bucket width at a time,
//     calling Policy.Zero for every intermediate bucket, then stores the
//     sample in the newly active bucket.
//
// InsertAt never fails; out-of-order samples are a documented no-op; payload
// is copied by value (P should be a plain data type, not something holding
// onto ownership the caller still needs exclusively).
func (r *Ring[T, P, C]) InsertAt(payload *P, t T) {
	if r.head == -1 {
		r.head, r.tail = 0, 0
		r.entries[0] = *payload
		r.start = BucketStart(t, r.width)
		r.last = t
		return
	}

	if t < r.last {
		return
	}

	t0 := BucketStart(t, r.width)

	if t0 == r.start {
		r.last = t
		r.policy.Update(r, r.ctx, payload)
		return
	}

	for r.start < t0 {
		r.advance()
		r.policy.Zero(r, r.ctx, payload)
	}

	r.entries[r.tail] = *payload
	r.last = t
}
