// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package policy provides ready-to-use rrd.Policy implementations for common
// bucket-merge aggregation strategies: an exponential running mean, a
// min/max envelope, carry-forward smearing, and pick-first/keep-last. None
// of these are wired into the rrd engine itself — the engine treats
// aggregation as entirely the caller's business — but a caller embedding a
// ring store rarely wants to hand-write "keep the running average" from
// scratch, so the common cases live here.
//
// This generalizes a spatial sum/avg/none field-aggregation strategy to the
// ring's temporal bucket-merge aggregation instead.
package policy

import (
	"golang.org/x/exp/constraints"

	"github.com/ringstore/ringstore/pkg/rrd"
)

// RunningMean is an exponentially weighted running mean policy for a
// floating-point payload, keyed by a fixed window size N (typically the
// ring's bucket width measured in the same unit as the sampling interval).
// Update blends the incoming sample into the active bucket with weight 1/N;
// Zero carries the incoming sample forward into the newly active bucket:
// `new = old - old/N + v/N` on update, a plain store on zero.
type RunningMean[T rrd.Timestamp, F constraints.Float] struct {
	N F
}

func (p RunningMean[T, F]) Update(r *rrd.Ring[T, F, any], _ any, incoming *F) {
	active := r.Active()
	*active = *active - *active/p.N + *incoming/p.N
}

func (p RunningMean[T, F]) Zero(r *rrd.Ring[T, F, any], _ any, incoming *F) {
	*r.Active() = *incoming
}

// Range is a min/max envelope payload: the smallest and largest value seen
// within the bucket. Used by EnvelopePair, typically instantiated over
// uint64 to track a monotone counter such as a transaction-group number.
type Range[N constraints.Ordered] struct {
	Low, High N
}

// EnvelopePair widens Range.Low/Range.High to cover every sample observed,
// and carries the previous bucket's range forward unchanged into a freshly
// advanced bucket — appropriate for monotone sequences (like transaction
// group numbers) where averaging would be meaningless.
type EnvelopePair[T rrd.Timestamp, N constraints.Ordered] struct{}

func (EnvelopePair[T, N]) Update(r *rrd.Ring[T, Range[N], any], _ any, incoming *Range[N]) {
	active := r.Active()
	if incoming.Low < active.Low {
		active.Low = incoming.Low
	}
	if incoming.High > active.High {
		active.High = incoming.High
	}
}

// Zero copies the previous bucket's range into the newly advanced one.
// Requires the ring to already hold at least one prior bucket: InsertAt only
// ever calls Zero from its gap-fill branch, which is unreachable on an empty
// ring, so this precondition always holds in practice.
func (EnvelopePair[T, N]) Zero(r *rrd.Ring[T, Range[N], any], _ any, incoming *Range[N]) {
	*r.Active() = *r.Previous()
}

// CarryForward smears the incoming sample's value forward, verbatim, into
// every intermediate bucket a gap skips over, and leaves same-bucket samples
// to simply overwrite (keep-last). Useful when a gap should read as "still
// this value" rather than "no data" — e.g. a status flag or a gauge that
// changes rarely.
type CarryForward[T rrd.Timestamp, P any] struct{}

func (CarryForward[T, P]) Update(r *rrd.Ring[T, P, any], _ any, incoming *P) {
	*r.Active() = *incoming
}

func (CarryForward[T, P]) Zero(r *rrd.Ring[T, P, any], _ any, incoming *P) {
	*r.Active() = *incoming
}

// KeepFirst never overwrites an already-written active bucket and seeds
// skipped buckets from the incoming sample. Inserting the same (t, v) twice
// leaves the ring unchanged after the first insert.
type KeepFirst[T rrd.Timestamp, P any] struct{}

func (KeepFirst[T, P]) Update(r *rrd.Ring[T, P, any], _ any, incoming *P) {
	// Intentional no-op: the active bucket already holds the first sample
	// seen for this bucket; later same-bucket samples are discarded.
}

func (KeepFirst[T, P]) Zero(r *rrd.Ring[T, P, any], _ any, incoming *P) {
	*r.Active() = *incoming
}
