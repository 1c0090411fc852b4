// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/gorilla/mux"

	"github.com/ringstore/ringstore/internal/api"
	"github.com/ringstore/ringstore/internal/config"
	"github.com/ringstore/ringstore/internal/ingest"
	"github.com/ringstore/ringstore/pkg/nats"
	"github.com/ringstore/ringstore/pkg/rrd"
	"github.com/ringstore/ringstore/pkg/rrd/policy"
)

// errWrongIngestLength reports a malformed /ingest request body.
func errWrongIngestLength(got, want int) error {
	return fmt.Errorf("ingest: wrong body length %d, want %d", got, want)
}

// natsHealth is nil (no ingestion transport configured) unless the config
// has a "nats" connection block, in which case main sets it to report the
// client's current connection state for /healthz.
var natsHealth api.HealthFunc

func main() {
	var flagConfigFile string
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Path to the JSON configuration file")
	flag.Parse()

	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		cclog.Fatal(err)
	}

	if err := config.Init(json.RawMessage(raw)); err != nil {
		cclog.Fatal(err)
	}

	if len(config.Keys.Nats) > 0 {
		if err := nats.Init(config.Keys.Nats); err != nil {
			cclog.Fatal(err)
		}
		nats.Connect()
		natsHealth = func() bool {
			client := nats.GetClient()
			return client != nil && client.IsConnected()
		}
	}

	switch config.Keys.Payload {
	case "envelope":
		runEnvelope()
	default:
		runScalar()
	}
}

// scalarPolicy resolves the configured policy name to a concrete
// rrd.Policy[int64, float64, any] for the payload kinds that share a plain
// float64 bucket value.
func scalarPolicy() rrd.Policy[int64, float64, any] {
	switch config.Keys.Payload {
	case "running-mean":
		n := config.Keys.RunningMeanWindow
		if n == 0 {
			cclog.Fatal("running-mean-window must be set and non-zero for payload \"running-mean\"")
		}
		return policy.RunningMean[int64, float64]{N: n}
	case "keep-first":
		return policy.KeepFirst[int64, float64]{}
	default:
		return policy.CarryForward[int64, float64]{}
	}
}

// runScalar builds and serves a ring stack over plain float64 buckets
// (running-mean, carry-forward, or keep-first payload kinds).
func runScalar() {
	stack, err := rrd.NewStack[int64, float64, any]("ringstored", config.Keys.RingSpecs(), scalarPolicy(), nil)
	if err != nil {
		cclog.Fatal(err)
	}
	defer stack.Destroy()

	var mu sync.Mutex

	subs := make([]ingest.Subscription, len(config.Keys.NatsSubscriptions))
	for i, s := range config.Keys.NatsSubscriptions {
		subs[i] = ingest.Subscription{SubscribeTo: s.SubscribeTo}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(subs) > 0 {
		go func() {
			sink := func(payload *float64, t int64) {
				mu.Lock()
				defer mu.Unlock()
				stack.AddAt(payload, t)
			}
			if err := ingest.Receive(ctx, nats.GetClient(), subs, ingest.FloatCodec{}, 4, sink); err != nil {
				cclog.Errorf("ingest: %s", err.Error())
			}
		}()
	}

	restAPI := &api.API{
		Query: func(t int64) (any, int64, bool) {
			mu.Lock()
			defer mu.Unlock()
			payload, width, ok := stack.Query(t)
			if !ok {
				return nil, 0, false
			}
			return *payload, width, true
		},
		Ingest: func(data []byte) error {
			codec := ingest.FloatCodec{}
			if len(data) != 8+codec.Size() {
				return errWrongIngestLength(len(data), 8+codec.Size())
			}
			t := int64(binary.BigEndian.Uint64(data[:8]))
			payload, err := codec.Decode(data[8:])
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			stack.AddAt(&payload, t)
			return nil
		},
		Health: natsHealth,
	}

	serve(restAPI)
}

// runEnvelope builds and serves a ring stack over policy.Range[uint64]
// buckets (the "envelope" payload kind, for monotone sequences like
// transaction-group numbers).
func runEnvelope() {
	stack, err := rrd.NewStack[int64, policy.Range[uint64], any]("ringstored", config.Keys.RingSpecs(), policy.EnvelopePair[int64, uint64]{}, nil)
	if err != nil {
		cclog.Fatal(err)
	}
	defer stack.Destroy()

	var mu sync.Mutex

	subs := make([]ingest.Subscription, len(config.Keys.NatsSubscriptions))
	for i, s := range config.Keys.NatsSubscriptions {
		subs[i] = ingest.Subscription{SubscribeTo: s.SubscribeTo}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(subs) > 0 {
		go func() {
			sink := func(payload *policy.Range[uint64], t int64) {
				mu.Lock()
				defer mu.Unlock()
				stack.AddAt(payload, t)
			}
			if err := ingest.Receive(ctx, nats.GetClient(), subs, ingest.RangeCodec{}, 4, sink); err != nil {
				cclog.Errorf("ingest: %s", err.Error())
			}
		}()
	}

	restAPI := &api.API{
		Query: func(t int64) (any, int64, bool) {
			mu.Lock()
			defer mu.Unlock()
			payload, width, ok := stack.Query(t)
			if !ok {
				return nil, 0, false
			}
			return *payload, width, true
		},
		Ingest: func(data []byte) error {
			codec := ingest.RangeCodec{}
			if len(data) != 8+codec.Size() {
				return errWrongIngestLength(len(data), 8+codec.Size())
			}
			t := int64(binary.BigEndian.Uint64(data[:8]))
			payload, err := codec.Decode(data[8:])
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			stack.AddAt(&payload, t)
			return nil
		},
		Health: natsHealth,
	}

	serve(restAPI)
}

// serve mounts restAPI on a fresh router and runs the HTTP server until
// SIGINT/SIGTERM, then shuts it down gracefully.
func serve(restAPI *api.API) {
	router := mux.NewRouter()
	restAPI.MountRoutes(router)

	server := http.Server{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Handler:      router,
		Addr:         config.Keys.ListenAddress,
	}

	listener, err := net.Listen("tcp", config.Keys.ListenAddress)
	if err != nil {
		cclog.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cclog.Infof("ringstored listening at %s", config.Keys.ListenAddress)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			cclog.Fatal(err)
		}
	}()

	wg.Add(1)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer wg.Done()
		<-sigs
		cclog.Info("shutting down")
		server.Shutdown(context.Background())
	}()

	wg.Wait()
	cclog.Info("graceful shutdown completed")
}
