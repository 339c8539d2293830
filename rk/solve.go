// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import (
	"math"

	"github.com/radixsorth/PorousFreezeThaw/cluster"
	"github.com/radixsorth/PorousFreezeThaw/layout"
)

// Solve advances sess from sess.T to tFinal using the Merson construction
// with adaptive step control, negotiating step acceptance across every
// rank so that floating-point non-determinism never causes ranks to
// diverge in control flow (spec.md §4.3). tFinal is only meaningful on the
// master rank; every other rank's argument is replaced by the broadcast
// value.
//
// Grounded on RK_MPI_Asolver.c's RK_MPI_A_solve and
// RK_MPI_SAsolver_hybrid.c's RK_MPI_SA_solve, restructured so the single
// Merson attempt lives in step (step.go) and Solve owns the cluster
// protocol and the outer loop.
func Solve(tFinal float64, sess *Session) Result {
	isMaster := cluster.Rank() == global.masterRank

	// Pre-step: validate locally, then agree cluster-wide (spec.md §4.3 step
	// 1). Checks are applied in the same sequential-overwrite order as
	// RK_MPI_Asolver.c/RK_MPI_SAsolver_hybrid.c's error_code assignments, so
	// that a simultaneous double fault resolves to the same code the
	// original gives it: capacity/layout issues are weakest, "not
	// initialised" overrides them, and an invalid session (bad pointers or
	// a non-positive tolerance on master) has the final say.
	localErr := Ok
	var mem *layout.MemDist
	if sess != nil {
		mem = sess.Mem
	}
	if res := mem.Validate(global.capacity); res != layout.Ok { // mem.Validate is nil-receiver-safe
		if res == layout.ExceedsCapacity {
			localErr = CapacityExceeded
		} else {
			localErr = InvalidSession
		}
	}
	if !initialised() {
		localErr = NotInitialised
	}
	if !sess.valid(isMaster) {
		localErr = InvalidSession
	}
	reduced := Result(cluster.ReduceMinInt(int(localErr)))
	if reduced != Ok {
		if localErr != Ok {
			return localErr
		}
		return OtherRankFailed
	}

	// Step 2: broadcast the NaN-handling gate and the scalars that decide
	// program flow, so every rank computes identical comparisons.
	handleNaN := cluster.BroadcastInt(boolToInt(global.handleNaN), isMaster) != 0
	global.handleNaN = handleNaN
	global.lastNaN = false

	tFinal = cluster.BroadcastReal(tFinal, isMaster)
	t := cluster.BroadcastReal(sess.T, isMaster)
	h := cluster.BroadcastReal(sess.H, isMaster)
	delta := cluster.BroadcastReal(sess.Delta, isMaster)
	deltaMode := DeltaMode(cluster.BroadcastInt(int(sess.DeltaMode), isMaster))

	// Sign-align h with the direction of travel and truncate it to land
	// exactly on tFinal if it would otherwise overshoot. t, tFinal and h are
	// already identical on every rank at this point (just broadcast above),
	// so this is a deterministic, rank-independent computation — unlike the
	// step loop's accept/reject decision, it needs no master gate or
	// re-broadcast to stay agreed across ranks.
	var command cmdWord
	if (tFinal > t && h < 0) || (tFinal < t && h > 0) {
		h = -h
	}
	if h == 0 || math.Abs(tFinal-t) <= math.Abs(h) {
		h = tFinal - t
		command |= cmdFinished
	}

	if t == tFinal {
		sess.T = t
		sess.H = h
		return Ok
	}

	mem = sess.Mem
	f := sess.MetaF()

	for {
		out := step(t, h, sess.X, f, mem)
		sess.StepsTotal++

		eps := cluster.ReduceMaxReal(out.eps)
		if deltaMode == LocalError {
			eps *= math.Abs(h / 3)
		}
		nanHit := false
		if handleNaN {
			nanHit = cluster.ReduceOrBool(out.nanHit)
		}

		newH := nextStep(eps, delta, h)

		if isMaster {
			if nanHit {
				command |= cmdNaN
				if math.Abs(h/(tFinal-t)) < 1e-11 {
					command |= cmdNaNFloor
				}
			} else if eps < delta || math.Abs(h) < sess.HMin {
				command |= cmdUpdate
				if math.Abs(tFinal-(t+h)) <= math.Abs(newH) {
					command |= cmdNextFinish
				}
			}
		}
		command = cmdWord(cluster.BroadcastInt(int(command), isMaster))

		if command.has(cmdNaN) {
			global.lastNaN = true
			if command.has(cmdNaNFloor) {
				sess.T = t
				return NanBreak
			}
			h /= 10
			command = 0
			continue
		}

		if !command.has(cmdUpdate) {
			h = newH
			command = 0
			continue
		}

		t = applyAccepted(t, h, sess.X, mem)
		sess.StepsAccepted++

		if sess.Service != nil {
			sess.T, sess.H = t, h
			brk := sess.Service(tFinal, sess)
			if isMaster && brk != 0 {
				command |= cmdBreak
			}
			command = cmdWord(cluster.BroadcastInt(int(command), isMaster))
		}

		if command.has(cmdFinished) {
			sess.T = t
			sess.H = h
			return Ok
		}

		if command.has(cmdBreak) {
			sess.T = t
			sess.H = newH
			return Interrupted
		}

		if sess.Rebalance != nil {
			if m := sess.Rebalance(sess); m != nil {
				mem = m
				sess.Mem = m
			}
		}

		f = sess.MetaF()

		if command.has(cmdNextFinish) {
			sess.H = newH
			h = tFinal - t
			command = cmdFinished
		} else {
			command = 0
			h = newH
		}
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
