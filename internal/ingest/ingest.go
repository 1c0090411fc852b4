// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest subscribes to NATS subjects carrying timestamped samples
// and feeds them into a ring stack. The wire format is deliberately minimal:
// an 8-byte big-endian Unix-second timestamp followed by a fixed-size
// encoded payload, decoded by a Codec. This stands in for the external
// timestamp source the core engine assumes but never implements itself.
package ingest

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/ringstore/ringstore/pkg/nats"
)

// Codec decodes the payload bytes that follow the 8-byte timestamp prefix on
// every message.
type Codec[P any] interface {
	// Size is the number of payload bytes following the timestamp.
	Size() int
	// Decode parses exactly Size() bytes into a payload value.
	Decode(data []byte) (P, error)
}

// Sink accepts one decoded sample. (*rrd.Stack[int64, P, C]).AddAt has this
// exact signature and can be passed directly as a Sink.
type Sink[P any] func(payload *P, t int64)

// Subscription names one NATS subject to ingest samples from.
type Subscription struct {
	SubscribeTo string
}

// Receive subscribes to every subscription on client and decodes each
// message before handing it to sink. With workers > 1 each subscription
// starts a pool of workers goroutines, all draining one channel shared by
// every subscription, so decoding proceeds in parallel;
// with workers == 1 the NATS callback decodes inline, avoiding channel
// overhead for low-throughput subjects.
//
// Receive blocks until ctx is cancelled and every worker goroutine has
// drained its channel and returned. sink is called from worker goroutines
// (or directly from the NATS callback when workers == 1) — if it writes into
// a shared ring stack, the caller must serialize those calls itself, exactly
// as the stack's own concurrency contract requires.
func Receive[P any](ctx context.Context, client *nats.Client, subs []Subscription, codec Codec[P], workers int, sink Sink[P]) error {
	if client == nil {
		cclog.Warn("ingest: NATS client not initialized, skipping subscriptions")
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	wantLen := 8 + codec.Size()

	decode := func(data []byte) {
		if len(data) != wantLen {
			cclog.Errorf("ingest: dropping message of length %d, want %d", len(data), wantLen)
			return
		}
		t := int64(binary.BigEndian.Uint64(data[:8]))
		payload, err := codec.Decode(data[8:])
		if err != nil {
			cclog.Errorf("ingest: decode error: %v", err)
			return
		}
		sink(&payload, t)
	}

	var wg sync.WaitGroup
	msgs := make(chan []byte, workers*2)

	for _, sub := range subs {
		if workers > 1 {
			wg.Add(workers)
			for range workers {
				go func() {
					defer wg.Done()
					for m := range msgs {
						decode(m)
					}
				}()
			}

			if err := client.Subscribe(sub.SubscribeTo, func(_ string, data []byte) {
				select {
				case msgs <- data:
				case <-ctx.Done():
				}
			}); err != nil {
				return fmt.Errorf("ingest: subscribe to %q: %w", sub.SubscribeTo, err)
			}
		} else {
			if err := client.Subscribe(sub.SubscribeTo, func(_ string, data []byte) {
				decode(data)
			}); err != nil {
				return fmt.Errorf("ingest: subscribe to %q: %w", sub.SubscribeTo, err)
			}
		}
		cclog.Infof("ingest: subscribed to %q", sub.SubscribeTo)
	}

	go func() {
		<-ctx.Done()
		close(msgs)
	}()

	<-ctx.Done()
	wg.Wait()
	return nil
}
