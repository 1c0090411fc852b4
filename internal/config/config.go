// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the configuration for a ringstored
// instance: the ring-stack layout (widths and capacities, finest to
// coarsest), which aggregation policy the stack's payload uses, the HTTP
// query address, and the NATS subjects samples are ingested from.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ringstore/ringstore/pkg/rrd"
)

// RingSpec is one resolution of the stack, as given in configuration.
// WidthSeconds/Capacity map directly onto rrd.RingSpec; the JSON array must
// be given coarsest-first, matching rrd.NewStack's expected ordering.
type RingSpec struct {
	Name         string `json:"name"`
	WidthSeconds int64  `json:"width-seconds"`
	Capacity     int    `json:"capacity"`
}

// Subscription names one NATS subject to ingest samples from.
type Subscription struct {
	SubscribeTo string `json:"subscribe-to"`
}

// Config is the top-level, validated configuration for ringstored.
type Config struct {
	ListenAddress     string          `json:"listen-address"`
	Payload           string          `json:"payload"`
	RunningMeanWindow float64         `json:"running-mean-window"`
	Rings             []RingSpec      `json:"rings"`
	NatsSubscriptions []Subscription  `json:"nats-subscriptions"`
	Nats              json.RawMessage `json:"nats"`
}

// Keys is the global configuration instance, populated by Init.
var Keys = Config{
	ListenAddress: ":8080",
}

// Init validates rawConfig against the JSON schema and unmarshals it into
// Keys. It aborts the process (via Validate) on a schema violation, the same
// fail-fast behavior the rest of this codebase uses for startup
// configuration — a malformed config file should never result in a
// partially-configured process silently serving wrong data.
func Init(rawConfig json.RawMessage) error {
	Validate(configSchema, rawConfig)

	Keys = Config{ListenAddress: ":8080"}
	dec := json.NewDecoder(bytes.NewReader(rawConfig))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if Keys.ListenAddress == "" {
		Keys.ListenAddress = ":8080"
	}
	return nil
}

// RingSpecs converts the configured ring list into rrd.RingSpec values,
// ready to hand to rrd.NewStack.
func (c *Config) RingSpecs() []rrd.RingSpec[int64] {
	specs := make([]rrd.RingSpec[int64], len(c.Rings))
	for i, r := range c.Rings {
		specs[i] = rrd.RingSpec[int64]{Name: r.Name, Width: r.WidthSeconds, Capacity: r.Capacity}
	}
	return specs
}
