// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"context"
	"testing"
)

// TestReceiveWithNilClientIsANoOp exercises the guard that lets ringstored
// start up without a NATS connection configured (e.g. an HTTP-ingest-only
// deployment) rather than blocking forever or panicking on a nil client.
func TestReceiveWithNilClientIsANoOp(t *testing.T) {
	called := false
	sink := func(_ *float64, _ int64) { called = true }

	err := Receive[float64](context.Background(), nil, []Subscription{{SubscribeTo: "x"}}, FloatCodec{}, 4, sink)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if called {
		t.Error("sink was called despite a nil client")
	}
}
