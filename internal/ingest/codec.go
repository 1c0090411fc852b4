// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"encoding/binary"
	"math"

	"github.com/ringstore/ringstore/pkg/rrd/policy"
)

// FloatCodec decodes an 8-byte big-endian IEEE-754 double: the wire format
// for a plain numeric sample (running-mean or carry-forward payloads).
type FloatCodec struct{}

func (FloatCodec) Size() int { return 8 }

func (FloatCodec) Decode(data []byte) (float64, error) {
	return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
}

// RangeCodec decodes one 8-byte big-endian uint64 value into a policy.Range, for streams that carry a single point value rather than a
// pre-widened range: low and high are both set to the same incoming value,
// letting EnvelopePair.Update widen it against whatever the bucket already
// holds.
type RangeCodec struct{}

func (RangeCodec) Size() int { return 8 }

func (RangeCodec) Decode(data []byte) (policy.Range[uint64], error) {
	v := binary.BigEndian.Uint64(data)
	return policy.Range[uint64]{Low: v, High: v}, nil
}
