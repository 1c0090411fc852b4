// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rrd

import "fmt"

// RingSpec describes one resolution to build into a Stack.
type RingSpec[T Timestamp] struct {
	Name     string
	Width    T
	Capacity int
}

// Stack owns an ordered sequence of Rings of strictly increasing bucket
// width, all sharing one payload type, Policy, and ctx. AddAt fans a sample
// out to every Ring; Query walks the Rings finest to coarsest and returns the
// first whose retained horizon covers the requested instant, which is always
// the tightest (most precise) answer available.
type Stack[T Timestamp, P any, C any] struct {
	name  string
	rings []*Ring[T, P, C] // index 0 is the finest resolution
}

// NewStack builds a Stack. specs must be given coarsest-to-finest (strictly
// decreasing Width) — the same order the original C source required of its
// spec[] array — and are linked in the opposite direction internally, so
// Stack.Rings()[0] is always the finest ring. A slice replaces the original's
// sentinel-terminated array; there is no {capacity:0, width:0} marker to omit
// or forget.
//
// Every ring in the stack shares policy and ctx. If any ring fails to
// construct, every ring already built is destroyed and an error is returned
// (no partially-constructed Stack is ever handed back).
func NewStack[T Timestamp, P any, C any](name string, specs []RingSpec[T], policy Policy[T, P, C], ctx C) (*Stack[T, P, C], error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("rrd: stack %q: at least one ring spec required", name)
	}
	if policy == nil {
		return nil, fmt.Errorf("rrd: stack %q: policy must not be nil", name)
	}

	for i := 0; i+1 < len(specs); i++ {
		if !(specs[i].Width > specs[i+1].Width) {
			return nil, fmt.Errorf("rrd: stack %q: ring specs must be strictly decreasing in width, got %v then %v",
				name, specs[i].Width, specs[i+1].Width)
		}
	}

	rings := make([]*Ring[T, P, C], 0, len(specs))
	for i := len(specs) - 1; i >= 0; i-- {
		spec := specs[i]
		r, err := NewRing(spec.Name, spec.Width, spec.Capacity, policy, ctx)
		if err != nil {
			for _, built := range rings {
				built.Destroy()
			}
			return nil, fmt.Errorf("rrd: stack %q: %w", name, err)
		}
		rings = append(rings, r)
	}

	return &Stack[T, P, C]{name: name, rings: rings}, nil
}

func (s *Stack[T, P, C]) Name() string              { return s.name }
func (s *Stack[T, P, C]) Rings() []*Ring[T, P, C]    { return s.rings }
func (s *Stack[T, P, C]) Finest() *Ring[T, P, C]     { return s.rings[0] }
func (s *Stack[T, P, C]) Coarsest() *Ring[T, P, C]   { return s.rings[len(s.rings)-1] }

// AddAt writes payload at timestamp t to every ring in the stack. Fan-out is
// not observable as partial: by the time AddAt returns, every ring has either
// accepted the sample (Last() == t) or rejected it as backdated.
func (s *Stack[T, P, C]) AddAt(payload *P, t T) {
	for _, r := range s.rings {
		r.InsertAt(payload, t)
	}
}

// Query returns the payload covering timestamp t at the finest resolution
// that retains it, along with that ring's bucket width. ok is false if t is
// newer than the finest ring's most recent accepted sample (a future query),
// or older than every ring's retained horizon.
func (s *Stack[T, P, C]) Query(t T) (payload *P, width T, ok bool) {
	finest := s.rings[0]
	if finest.Length() == 0 || t > finest.Last() {
		return nil, 0, false
	}

	for _, r := range s.rings {
		if r.Length() == 0 {
			continue
		}

		t0 := BucketStart(t, r.Width())
		low, _ := r.Horizon()
		if t0 >= low {
			idx := int((t0 - low) / r.Width())
			return r.Get(idx), r.Width(), true
		}
	}

	return nil, 0, false
}

// Destroy destroys every ring in the stack, in order.
func (s *Stack[T, P, C]) Destroy() {
	for _, r := range s.rings {
		r.Destroy()
	}
	s.rings = nil
}
