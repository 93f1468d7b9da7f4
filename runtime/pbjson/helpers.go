// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbjson

import "math"

// nan and inf give the encoder's tests short names for the float special
// values the canonical mapping spells as quoted strings.
func nan() float64        { return math.NaN() }
func inf(sign int) float64 { return math.Inf(sign) }
