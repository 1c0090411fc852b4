// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rrd

import "testing"

// ─── Construction ───────────────────────────────────────────────────────────

func TestNewStackRejectsInvalidParameters(t *testing.T) {
	p := overwritePolicy[int64, float64]{}

	if _, err := NewStack[int64, float64, any]("s", nil, p, nil); err == nil {
		t.Error("empty specs: expected error, got nil")
	}
	if _, err := NewStack[int64, float64, any]("s", []RingSpec[int64]{{Name: "a", Width: 10, Capacity: 5}}, nil, nil); err == nil {
		t.Error("nil policy: expected error, got nil")
	}

	// Widths must strictly decrease (coarsest first).
	badSpecs := []RingSpec[int64]{
		{Name: "coarse", Width: 10, Capacity: 5},
		{Name: "fine", Width: 10, Capacity: 5}, // equal, not strictly decreasing
	}
	if _, err := NewStack[int64, float64, any]("s", badSpecs, p, nil); err == nil {
		t.Error("non-decreasing widths: expected error, got nil")
	}
}

func TestNewStackOrdersRingsFinestFirst(t *testing.T) {
	p := overwritePolicy[int64, float64]{}
	specs := []RingSpec[int64]{
		{Name: "coarse", Width: 1000, Capacity: 10},
		{Name: "mid", Width: 100, Capacity: 10},
		{Name: "fine", Width: 10, Capacity: 10},
	}
	s, err := NewStack[int64, float64, any]("s", specs, p, nil)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}

	rings := s.Rings()
	if len(rings) != 3 {
		t.Fatalf("len(Rings()) = %d, want 3", len(rings))
	}
	wantWidths := []int64{10, 100, 1000}
	for i, w := range wantWidths {
		if got := rings[i].Width(); got != w {
			t.Errorf("Rings()[%d].Width() = %d, want %d", i, got, w)
		}
	}
	if s.Finest().Width() != 10 {
		t.Errorf("Finest().Width() = %d, want 10", s.Finest().Width())
	}
	if s.Coarsest().Width() != 1000 {
		t.Errorf("Coarsest().Width() = %d, want 1000", s.Coarsest().Width())
	}
}

// ─── Fan-out ─────────────────────────────────────────────────────────────────

func TestAddAtFansOutToEveryRing(t *testing.T) {
	p := overwritePolicy[int64, float64]{}
	specs := []RingSpec[int64]{
		{Name: "coarse", Width: 100, Capacity: 10},
		{Name: "fine", Width: 10, Capacity: 10},
	}
	s, err := NewStack[int64, float64, any]("s", specs, p, nil)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}

	v := 3.5
	s.AddAt(&v, 55)

	for _, r := range s.Rings() {
		if got := r.Last(); got != 55 {
			t.Errorf("ring %q: Last() = %d, want 55", r.Name(), got)
		}
		if got := r.Length(); got != 1 {
			t.Errorf("ring %q: Length() = %d, want 1", r.Name(), got)
		}
	}
}

// ─── Multi-ring fan-out horizon ──────────────────────────────────────────────

// TestMultiRingFanOutHorizon exercises four rings of capacity 100 and widths
// {1, 10, 100, 1000} seconds, fed a sample every integer second from t=0 to
// t=149999, then probes each ring's retained horizon with a query table.
func TestMultiRingFanOutHorizon(t *testing.T) {
	p := overwritePolicy[int64, float64]{}
	specs := []RingSpec[int64]{
		{Name: "1000s", Width: 1000, Capacity: 100},
		{Name: "100s", Width: 100, Capacity: 100},
		{Name: "10s", Width: 10, Capacity: 100},
		{Name: "1s", Width: 1, Capacity: 100},
	}
	s, err := NewStack[int64, float64, any]("s", specs, p, nil)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}

	v := 5.0
	for tt := int64(0); tt <= 149999; tt++ {
		s.AddAt(&v, tt)
	}

	cases := []struct {
		t         int64
		wantOk    bool
		wantWidth int64
	}{
		{150001, false, 0},
		{149999, true, 1},
		{149900, true, 1},
		{149899, true, 10},
		{149000, true, 10},
		{148999, true, 100},
		{140000, true, 100},
		{139999, true, 1000},
		{50000, true, 1000},
		{49999, false, 0},
	}

	for _, c := range cases {
		payload, width, ok := s.Query(c.t)
		if ok != c.wantOk {
			t.Errorf("Query(%d) ok = %v, want %v", c.t, ok, c.wantOk)
			continue
		}
		if !ok {
			continue
		}
		if width != c.wantWidth {
			t.Errorf("Query(%d) width = %d, want %d", c.t, width, c.wantWidth)
		}
		if *payload != 5.0 {
			t.Errorf("Query(%d) value = %v, want 5.0", c.t, *payload)
		}
	}
}

// ─── Destroy ─────────────────────────────────────────────────────────────────

func TestStackDestroy(t *testing.T) {
	p := overwritePolicy[int64, float64]{}
	specs := []RingSpec[int64]{{Name: "only", Width: 10, Capacity: 5}}
	s, err := NewStack[int64, float64, any]("s", specs, p, nil)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}

	v := 1.0
	s.AddAt(&v, 0)
	s.Destroy()

	if s.Rings() != nil {
		t.Error("Rings() after Destroy() should be nil")
	}
}
