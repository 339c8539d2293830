// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import (
	"math"
	"sync"

	"github.com/cpmech/gosl/la"
	"github.com/radixsorth/PorousFreezeThaw/layout"
)

// stepOutcome carries the per-rank result of one Merson attempt back to
// Solve, which alone performs the cluster-wide reduction and the
// accept/reject decision (spec.md §4.2: "decided on master only, to avoid
// floating-point divergence across ranks").
type stepOutcome struct {
	eps    float64 // this rank's reduced error, ε, weighted by EpsMult
	nanHit bool    // true if handleNaN is on and some e_i was non-finite
}

// step performs one attempt of the Merson construction on x, writing the
// Ki coefficients into the package-wide scratch buffers and evaluating f
// exactly five times in the order K1,K2,K3,K4,K5 (spec.md §9). It never
// mutates x or t: the accepted-step update is applied separately by
// applyAccepted once Solve has decided, collectively, to accept.
//
// Grounded on the inner loop of RK_MPI_SAsolver_hybrid.c, restructured
// into the step/Solve split that spec.md §4.2/§4.3 describes separately.
func step(t, h float64, x []float64, f RHS, mem *layout.MemDist) stepOutcome {
	k1, k3, k4, k5, aux := global.k1, global.k3, global.k4, global.k5, global.aux
	k2 := k3 // K2 elides its own storage (spec.md §3)

	h2, h3, h6, h8 := h/2, h/3, h/6, h/8

	// K1 = f(t, x)
	f(t, x, k1)

	// K2 = f(t+h/3, x + h/3·K1)
	n := mem.NumChunks()
	for c := 0; c < n; c++ {
		off, ln, _ := mem.Chunk(c)
		la.VecAdd2(aux[off:off+ln], h3, k1[off:off+ln], 1, x[off:off+ln])
	}
	f(t+h3, aux, k2)

	// K3 = f(t+h/3, x + h/6·(K1+K2))
	for c := 0; c < n; c++ {
		off, ln, _ := mem.Chunk(c)
		sum := aux[off : off+ln] // reuse aux as scratch for (K1+K2) before scaling into itself below
		for i := range sum {
			sum[i] = k1[off+i] + k2[off+i]
		}
		la.VecAdd2(aux[off:off+ln], h6, aux[off:off+ln], 1, x[off:off+ln])
	}
	f(t+h3, aux, k3) // note: k2 aliases k3, so k2 is consumed above before being overwritten here

	// K4 = f(t+h/2, x + h/8·(K1+3·K3))
	for c := 0; c < n; c++ {
		off, ln, _ := mem.Chunk(c)
		for i := 0; i < ln; i++ {
			aux[off+i] = k1[off+i] + 3*k3[off+i]
		}
		la.VecAdd2(aux[off:off+ln], h8, aux[off:off+ln], 1, x[off:off+ln])
	}
	f(t+h2, aux, k4)

	// K5 = f(t+h, x + h·(½·K1 − 3/2·K3 + 2·K4))
	for c := 0; c < n; c++ {
		off, ln, _ := mem.Chunk(c)
		for i := 0; i < ln; i++ {
			aux[off+i] = 0.5*k1[off+i] - 1.5*k3[off+i] + 2*k4[off+i]
		}
		la.VecAdd2(aux[off:off+ln], h, aux[off:off+ln], 1, x[off:off+ln])
	}
	f(t+h, aux, k5)

	return reduceLocalError(mem, k1, k3, k4, k5)
}

// reduceLocalError computes e_i = eps_mult(chunk)·|0.2K1−0.9K3+0.8K4−0.1K5|
// over every chunk and reduces it to this rank's local ε = max_i e_i,
// fanning the per-chunk work out to one goroutine per chunk and folding
// partial maxima under a mutex. This is the "hybrid" variant of spec.md
// §4.4 collapsed into the single engine the spec permits, using goroutines
// in place of the original's OpenMP parallel region.
func reduceLocalError(mem *layout.MemDist, k1, k3, k4, k5 []float64) stepOutcome {
	n := mem.NumChunks()

	var mu sync.Mutex
	var wg sync.WaitGroup
	eps := 0.0
	nanHit := false
	handleNaN := global.handleNaN

	for c := 0; c < n; c++ {
		off, ln, mult := mem.Chunk(c)
		wg.Add(1)
		go func(off, ln int, mult float64) {
			defer wg.Done()
			chunkEps := 0.0
			chunkNaN := false
			for i := off; i < off+ln; i++ {
				e := mult * math.Abs(0.2*k1[i]-0.9*k3[i]+0.8*k4[i]-0.1*k5[i])
				if handleNaN && !finite(e) {
					chunkNaN = true
					break
				}
				if e > chunkEps {
					chunkEps = e
				}
			}
			mu.Lock()
			if chunkNaN {
				nanHit = true
			} else if chunkEps > eps {
				eps = chunkEps
			}
			mu.Unlock()
		}(off, ln, mult)
	}
	wg.Wait()

	return stepOutcome{eps: eps, nanHit: nanHit}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// applyAccepted performs the accepted-step state update
// x += h/3·(½K1 + 2K4 + ½K5), per chunk, and advances t. It must only be
// called once Solve has collectively decided to accept the step that
// produced the current K1,K4,K5 (spec.md §4.2).
func applyAccepted(t, h float64, x []float64, mem *layout.MemDist) float64 {
	k1, k4, k5 := global.k1, global.k4, global.k5
	h3 := h / 3
	n := mem.NumChunks()
	for c := 0; c < n; c++ {
		off, ln, _ := mem.Chunk(c)
		for i := off; i < off+ln; i++ {
			x[i] += h3 * (0.5*k1[i] + 2*k4[i] + 0.5*k5[i])
		}
	}
	return t + h
}

// nextStep computes the candidate next time step from the globally
// reduced error, following spec.md §4.2's `h_new` formula verbatim,
// including the documented doubling when ε == 0.
func nextStep(eps, delta, h float64) float64 {
	if eps > 0 {
		return 0.8 * math.Pow(delta/eps, 0.2) * h
	}
	return 2 * h
}
