// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import (
	"github.com/radixsorth/PorousFreezeThaw/cluster"
	"github.com/radixsorth/PorousFreezeThaw/layout"
)

// global holds the process-wide scratch state of the solver: the four
// Merson coefficient buffers (K2 reuses K3's storage, see step.go), the
// argument staging buffer, the init latch and the NaN-handling gate. It
// mirrors the file-static globals of the original RK_MPI_SAsolver_hybrid.c
// (K1,K3,K4,K5,aux,max_n,handle_NAN) and the `global` struct pattern of
// mallano-gofem/fem/solver.go.
type globalState struct {
	k1, k3, k4, k5, aux []float64
	capacity            int // max_block_size; 0 means "not initialised"
	masterRank          int
	handleNaN           bool
	lastNaN             bool
}

var global globalState

// Init allocates the five scratch buffers of length maxBlockSize and
// records masterRank. Calling Init twice without an intervening Cleanup is
// an error, matching RK_MPI_SA_init's "-3 already initialized".
func Init(maxBlockSize int, comm cluster.Comm, masterRank int) Result {
	if global.capacity != 0 {
		return NotInitialised // already initialised; treated as a configuration error
	}
	if maxBlockSize <= 0 {
		return InvalidSession
	}
	global.k1 = make([]float64, maxBlockSize)
	global.k3 = make([]float64, maxBlockSize)
	global.k4 = make([]float64, maxBlockSize)
	global.k5 = make([]float64, maxBlockSize)
	global.aux = make([]float64, maxBlockSize)
	global.capacity = maxBlockSize
	global.masterRank = masterRank
	global.lastNaN = false
	return Ok
}

// Cleanup frees the scratch buffers and resets the init latch.
func Cleanup() Result {
	if global.capacity == 0 {
		return NotInitialised
	}
	global = globalState{}
	return Ok
}

// HandleNaN toggles the NaN/±Inf handling gate. Call on the master only;
// Solve broadcasts the gate into every rank's session at the start of each
// solve (spec.md §4.3 step 2).
func HandleNaN(on bool) {
	global.handleNaN = on
}

// CheckNaN reports whether the last Solve call observed a NaN/±Inf.
func CheckNaN() bool {
	return global.lastNaN
}

// ValidateMem is a cheap, side-effect-free pre-flight check of mem against
// the scratch capacity recorded by Init (spec.md §4.1).
func ValidateMem(mem *layout.MemDist) layout.Result {
	if global.capacity == 0 {
		return layout.Uninitialised
	}
	return mem.Validate(global.capacity)
}

func initialised() bool {
	return global.capacity != 0
}
