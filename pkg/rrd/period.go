// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rrd provides a fixed-memory, constant-time round-robin time-series
// store meant for embedding inside another system's hot path (a copy-on-write
// filesystem's transaction-group tracking is the motivating use case, but the
// package knows nothing about filesystems).
//
// # Layout
//
// A Ring is a single-resolution circular buffer of buckets of equal width.
// Writing a sample advances the ring's head/tail across a wrapping array with
// no dynamic allocation on the hot path; reading a bucket by logical index is
// O(1). How a bucket merges a same-bucket sample (Update) or initializes a
// skipped bucket (Zero) is supplied by the caller through a Policy — the ring
// only sequences the calls and owns the memory.
//
// A Stack layers several Rings of increasing bucket width to cover disparate
// retention horizons in parallel: every sample is fanned out to every Ring,
// and a point-in-time query walks the Rings finest to coarsest, returning the
// first one whose retained window covers the requested instant.
//
// # Non-goals
//
// This package does not persist anything to disk, does not synchronize
// concurrent access internally (callers serialize access to a Ring or Stack
// themselves), does not resample or rebalance data across Rings, and treats a
// backdated sample (one older than the most recent sample already accepted)
// as a silent no-op rather than an error.
package rrd

import "golang.org/x/exp/constraints"

// Timestamp is the integer scalar used to express elapsed time. The unit
// (nanoseconds, microseconds, milliseconds, seconds — anything) is chosen by
// the caller and is never interpreted by this package, only used in
// arithmetic; bucket widths and stored timestamps share the same unit.
type Timestamp interface {
	constraints.Integer
}

// BucketStart returns the start of the bucket of width w (w > 0) that
// contains t: the largest multiple of w that is <= t. A timestamp that falls
// exactly on a bucket boundary belongs to the bucket that starts there.
//
// BucketStart is the only arithmetic primitive the engine depends on; every
// insert and every query reduces to a BucketStart call plus ring bookkeeping.
func BucketStart[T Timestamp](t, w T) T {
	if w <= 0 {
		panic("rrd: bucket width must be > 0")
	}
	r := t % w
	if r < 0 {
		// T may be a signed integer type; keep the floor-division semantics
		// regardless of Go's truncating '%' for negative operands.
		r += w
	}
	return t - r
}
