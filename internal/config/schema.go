// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

const configSchema = `{
  "type": "object",
  "description": "Configuration for a ringstored instance: its ring-stack layout, payload, policy and ingestion/query surfaces.",
  "properties": {
    "listen-address": {
      "description": "Address the HTTP query surface listens on, e.g. ':8080'.",
      "type": "string"
    },
    "payload": {
      "description": "The payload kind stored in every bucket; it also selects the aggregation policy used for it.",
      "type": "string",
      "enum": ["running-mean", "envelope", "carry-forward", "keep-first"]
    },
    "running-mean-window": {
      "description": "Window size N for the running-mean policy's exponential blend. Required when payload is 'running-mean'.",
      "type": "number"
    },
    "rings": {
      "description": "Ring specs in descending bucket-width order (coarsest first); the stack links them finest-first internally.",
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "name": {
            "description": "Short identifier for the ring, informational only.",
            "type": "string"
          },
          "width-seconds": {
            "description": "Bucket width in seconds. Must be > 0.",
            "type": "integer",
            "exclusiveMinimum": 0
          },
          "capacity": {
            "description": "Number of buckets retained by this ring. Must be >= 1.",
            "type": "integer",
            "minimum": 1
          }
        },
        "required": ["name", "width-seconds", "capacity"]
      }
    },
    "nats-subscriptions": {
      "description": "Array of NATS subjects to ingest samples from.",
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "subscribe-to": {
            "description": "Subject name.",
            "type": "string"
          }
        },
        "required": ["subscribe-to"]
      }
    },
    "nats": {
      "description": "NATS client connection configuration.",
      "type": "object"
    }
  },
  "required": ["payload", "rings"]
}`
