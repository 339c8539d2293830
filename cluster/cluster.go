// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cluster isolates the handful of collective operations the
// RK-Merson solver core needs from the underlying MPI binding, following
// the usage of github.com/cpmech/gosl/mpi in mallano-gofem's fem package
// (fem/solver.go, fem/errorhandler.go).
//
// Every rank-comparison the solver must make collectively is expressed here
// in terms of gosl/mpi's (data, workspace []float64 / []int) in-place
// reduce collectives: AllReduceSum, AllReduceMax and IntAllReduceMax.
// Broadcast-from-master is built on top of AllReduceSum/IntAllReduceMax by
// having every non-master rank contribute the identity element (0) and the
// master contribute the real value: the reduced result equals the
// master's value on every rank. This avoids depending on a Bcast signature
// this pack does not exercise directly, while still running the
// collective every rank must pass through together (see spec.md §5,
// Suspension points).
package cluster

import "github.com/cpmech/gosl/mpi"

// Comm is an opaque handle standing in for "a concrete communicator"
// (spec.md §5). gosl/mpi wraps a single MPI_COMM_WORLD-like universe, so
// Comm carries no data of its own; it exists so callers of rk.Init have an
// explicit communicator argument to pass, as the spec requires.
type Comm struct{}

// World is the (only) communicator gosl/mpi operates on.
var World = Comm{}

// IsDistributed reports whether more than one rank participates.
func IsDistributed() bool {
	return mpi.IsOn() && mpi.Size() > 1
}

// Rank returns this process's rank, or 0 if MPI is not active.
func Rank() int {
	if !mpi.IsOn() {
		return 0
	}
	return mpi.Rank()
}

// Size returns the number of participating ranks, or 1 if MPI is not active.
func Size() int {
	if !mpi.IsOn() {
		return 1
	}
	return mpi.Size()
}

// BroadcastReal distributes v from the master to every rank.
func BroadcastReal(v float64, isMaster bool) float64 {
	if !mpi.IsOn() {
		return v
	}
	data := []float64{0}
	if isMaster {
		data[0] = v
	}
	work := make([]float64, 1)
	mpi.AllReduceSum(data, work)
	return data[0]
}

// BroadcastReals distributes v in place from the master to every rank.
func BroadcastReals(v []float64, isMaster bool) {
	if !mpi.IsOn() || len(v) == 0 {
		return
	}
	data := make([]float64, len(v))
	if isMaster {
		copy(data, v)
	}
	work := make([]float64, len(v))
	mpi.AllReduceSum(data, work)
	copy(v, data)
}

// BroadcastInt distributes a non-negative v from the master to every rank.
// The command word and the NaN-handling gate are both non-negative, so a
// max-reduction with every non-master rank contributing 0 reproduces a
// broadcast.
func BroadcastInt(v int, isMaster bool) int {
	if !mpi.IsOn() {
		return v
	}
	data := []int{0}
	if isMaster {
		data[0] = v
	}
	work := make([]int, 1)
	mpi.IntAllReduceMax(data, work)
	return data[0]
}

// ReduceMaxReal returns the maximum of v across all ranks, visible on every
// rank (spec.md §4.2: ε is all-reduced so every rank can compute h_new,
// even though only the master acts on it).
func ReduceMaxReal(v float64) float64 {
	if !mpi.IsOn() {
		return v
	}
	data := []float64{v}
	work := make([]float64, 1)
	mpi.AllReduceMax(data, work)
	return data[0]
}

// ReduceOrBool returns the logical OR of v across all ranks, visible on
// every rank (spec.md §4.2, NaN-occurred vote).
func ReduceOrBool(v bool) bool {
	if !mpi.IsOn() {
		return v
	}
	local := 0
	if v {
		local = 1
	}
	data := []int{local}
	work := make([]int, 1)
	mpi.IntAllReduceMax(data, work)
	return data[0] != 0
}

// ReduceMinInt returns the minimum of v across all ranks, visible on every
// rank (spec.md §4.3 step 1: "the most negative value wins"). It is built
// from IntAllReduceMax on the negated values, since gosl/mpi's confirmed
// int collective is a max-reduction.
func ReduceMinInt(v int) int {
	if !mpi.IsOn() {
		return v
	}
	data := []int{-v}
	work := make([]int, 1)
	mpi.IntAllReduceMax(data, work)
	return -data[0]
}
