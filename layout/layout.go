// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout describes the sparse placement of the "live" portion of a
// solver's state buffer: an ordered list of non-overlapping index ranges
// (chunks; a chunk may start right where the previous one ends), each
// carrying its own error-weight multiplier.
//
// The gaps between chunks are off-limits to the solver; a driver typically
// uses them for halo/boundary padding shared with stencil kernels that
// operate on the same underlying buffer.
package layout

import "github.com/cpmech/gosl/chk"

// Result is the outcome of Validate.
type Result int

// Validate outcomes.
const (
	Ok              Result = 0
	Uninitialised   Result = -3
	ExceedsCapacity Result = -5
	InvalidLayout   Result = -6
	NoChunks        Result = -7
)

// String gives a short human-readable description of a Result.
func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case Uninitialised:
		return "uninitialised"
	case ExceedsCapacity:
		return "exceeds capacity"
	case InvalidLayout:
		return "invalid layout"
	case NoChunks:
		return "no chunks"
	}
	return "unknown layout result"
}

// MemDist describes the chunk placement of the live state within a local
// buffer of a given capacity. Start[k], Size[k] and EpsMult[k] describe the
// k-th chunk: its offset, its length, and the multiplier applied to its
// contribution to the reduced Merson error estimate.
type MemDist struct {
	Start   []int     // chunk offsets
	Size    []int     // chunk lengths
	EpsMult []float64 // per-chunk error-weight multiplier
}

// NewMemDist builds a MemDist from parallel start/size/epsMult slices. It
// does not validate; call Validate before using the result in a solve.
func NewMemDist(start, size []int, epsMult []float64) *MemDist {
	return &MemDist{Start: start, Size: size, EpsMult: epsMult}
}

// Validate checks the chunk placement rules of the package doc comment:
// chunks are ordered, non-overlapping, of positive size, carry a positive
// EpsMult, and fit within capacity. It is side-effect free.
func (m *MemDist) Validate(capacity int) Result {
	if m == nil || m.Start == nil || m.Size == nil || m.EpsMult == nil {
		return Uninitialised
	}
	n := len(m.Start)
	if n == 0 || len(m.Size) != n || len(m.EpsMult) != n {
		return NoChunks
	}
	offset := 0
	for i := 0; i < n; i++ {
		if m.Size[i] <= 0 {
			return InvalidLayout
		}
		if m.EpsMult[i] <= 0 {
			return InvalidLayout
		}
		if m.Start[i] < offset {
			return InvalidLayout
		}
		offset = m.Start[i] + m.Size[i]
	}
	if offset > capacity {
		return ExceedsCapacity
	}
	return Ok
}

// NumChunks returns the number of chunks described by m.
func (m *MemDist) NumChunks() int {
	if m == nil {
		return 0
	}
	return len(m.Start)
}

// Chunk returns the (offset, length, epsMult) triple of the k-th chunk. It
// panics if k is out of range; callers are expected to loop over
// [0, NumChunks()).
func (m *MemDist) Chunk(k int) (offset, length int, epsMult float64) {
	if k < 0 || k >= len(m.Start) {
		chk.Panic("layout: chunk index %d out of range (n_chunks=%d)", k, len(m.Start))
	}
	return m.Start[k], m.Size[k], m.EpsMult[k]
}

// Slice returns the sub-slice of buf covered by the k-th chunk.
func (m *MemDist) Slice(buf []float64, k int) []float64 {
	off, n, _ := m.Chunk(k)
	return buf[off : off+n]
}
