// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/radixsorth/PorousFreezeThaw/cluster"
	"github.com/radixsorth/PorousFreezeThaw/layout"
)

func singleChunk(n int) *layout.MemDist {
	return layout.NewMemDist([]int{0}, []int{n}, []float64{1})
}

// Test_decay integrates x'=-x, x(0)=1 to t=1 and checks against e^-1.
func Test_decay(tst *testing.T) {

	chk.PrintTitle("decay")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()

	sess := &Session{
		H:     0.1,
		HMin:  1e-10,
		Delta: 1e-9,
		X:     []float64{1},
		Mem:   singleChunk(1),
		MetaF: func() RHS {
			return func(t float64, x, dxdt []float64) { dxdt[0] = -x[0] }
		},
	}
	sess.SetDefaults()

	res := Solve(1.0, sess)
	if res != Ok {
		tst.Fatalf("Solve failed: %v", res)
	}
	chk.Scalar(tst, "t", 1e-12, sess.T, 1.0)
	chk.Scalar(tst, "x", 1e-6, sess.X[0], math.Exp(-1))
	if sess.StepsAccepted == 0 {
		tst.Errorf("expected at least one accepted step")
	}
	if sess.StepsAccepted > sess.StepsTotal {
		tst.Errorf("steps_accepted (%d) > steps_total (%d)", sess.StepsAccepted, sess.StepsTotal)
	}
}

// Test_harmonic integrates the 2-state harmonic oscillator x''=-x over a
// full period and checks the trajectory returns close to its start.
func Test_harmonic(tst *testing.T) {

	chk.PrintTitle("harmonic")

	if res := Init(2, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()

	sess := &Session{
		H:     0.05,
		HMin:  1e-10,
		Delta: 1e-8,
		X:     []float64{1, 0},
		Mem:   singleChunk(2),
		MetaF: func() RHS {
			return func(t float64, x, dxdt []float64) {
				dxdt[0] = x[1]
				dxdt[1] = -x[0]
			}
		},
	}
	sess.SetDefaults()

	res := Solve(2*math.Pi, sess)
	if res != Ok {
		tst.Fatalf("Solve failed: %v", res)
	}
	chk.Scalar(tst, "x0", 1e-4, sess.X[0], 1.0)
	chk.Scalar(tst, "x1", 1e-4, sess.X[1], 0.0)
}

// Test_stiffSpike drives a right-hand side with a sudden stiffness increase
// partway through the interval and checks the adaptive controller rejects
// at least one step (steps_total must exceed steps_accepted).
func Test_stiffSpike(tst *testing.T) {

	chk.PrintTitle("stiff_spike")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()

	sess := &Session{
		H:     0.5,
		HMin:  1e-12,
		Delta: 1e-10,
		X:     []float64{1},
		Mem:   singleChunk(1),
		MetaF: func() RHS {
			return func(t float64, x, dxdt []float64) {
				lambda := -1.0
				if t > 1.0 {
					lambda = -500.0
				}
				dxdt[0] = lambda * x[0]
			}
		},
	}
	sess.SetDefaults()

	res := Solve(2.0, sess)
	if res != Ok {
		tst.Fatalf("Solve failed: %v", res)
	}
	if sess.StepsTotal <= sess.StepsAccepted {
		tst.Errorf("expected rejected steps after the stiffness spike: total=%d accepted=%d",
			sess.StepsTotal, sess.StepsAccepted)
	}
}

// Test_hMinForceAccept checks that a step is force-accepted once h falls
// below HMin, even though the error estimate alone would reject it, by
// driving a right-hand side with a hard jump discontinuity.
func Test_hMinForceAccept(tst *testing.T) {

	chk.PrintTitle("hmin_force_accept")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()

	sess := &Session{
		H:     0.1,
		HMin:  1e-3,
		Delta: 1e-14, // unreasonably tight, forcing HMin to decide acceptance
		X:     []float64{0},
		Mem:   singleChunk(1),
		MetaF: func() RHS {
			return func(t float64, x, dxdt []float64) {
				if t < 0.5 {
					dxdt[0] = 0
				} else {
					dxdt[0] = 1000 * math.Sin(1000*t)
				}
			}
		},
	}
	sess.SetDefaults()

	res := Solve(1.0, sess)
	if res != Ok {
		tst.Fatalf("Solve failed: %v", res)
	}
	chk.Scalar(tst, "t", 1e-9, sess.T, 1.0)
}

// Test_serviceBreakAndResume interrupts the integration via the service
// callback partway through, then resumes on the same Session and checks
// the final state matches an uninterrupted run of the same problem.
func Test_serviceBreakAndResume(tst *testing.T) {

	chk.PrintTitle("service_break_and_resume")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()

	rhs := func() RHS {
		return func(t float64, x, dxdt []float64) { dxdt[0] = -x[0] }
	}

	broke := false
	sess := &Session{
		H:     0.1,
		HMin:  1e-10,
		Delta: 1e-9,
		X:     []float64{1},
		Mem:   singleChunk(1),
		MetaF: rhs,
		Service: func(tFinal float64, s *Session) int {
			if !broke && s.T >= 0.5 {
				broke = true
				return 1
			}
			return 0
		},
	}
	sess.SetDefaults()

	res := Solve(2.0, sess)
	if res != Interrupted {
		tst.Fatalf("expected Interrupted, got %v", res)
	}
	tBreak := sess.T

	// resume: the service callback has already fired once, so it won't
	// break again.
	res = Solve(2.0, sess)
	if res != Ok {
		tst.Fatalf("resumed Solve failed: %v", res)
	}
	chk.Scalar(tst, "t_final", 1e-12, sess.T, 2.0)

	// reference: an uninterrupted run of the same problem from the same
	// start should reach the same state at t=2.
	if res := Cleanup(); res != Ok {
		tst.Fatalf("Cleanup failed: %v", res)
	}
	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("re-Init failed: %v", res)
	}
	ref := &Session{
		H:     0.1,
		HMin:  1e-10,
		Delta: 1e-9,
		X:     []float64{1},
		Mem:   singleChunk(1),
		MetaF: rhs,
	}
	ref.SetDefaults()
	if res := Solve(2.0, ref); res != Ok {
		tst.Fatalf("reference Solve failed: %v", res)
	}
	chk.Scalar(tst, "x_vs_reference", 1e-9, sess.X[0], ref.X[0])
	if tBreak <= 0 || tBreak >= 2.0 {
		tst.Errorf("expected an interruption strictly inside (0, 2), got t=%v", tBreak)
	}
}

// Test_solveNoOp checks that Solve returns immediately, with no RHS
// evaluations and no state change, when the session is already at t_final.
func Test_solveNoOp(tst *testing.T) {

	chk.PrintTitle("solve_noop")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()

	calls := 0
	sess := &Session{
		T:     3.0,
		H:     0.1,
		HMin:  1e-10,
		Delta: 1e-9,
		X:     []float64{42},
		Mem:   singleChunk(1),
		MetaF: func() RHS {
			return func(t float64, x, dxdt []float64) {
				calls++
				dxdt[0] = -x[0]
			}
		},
	}
	sess.SetDefaults()

	res := Solve(3.0, sess)
	if res != Ok {
		tst.Fatalf("Solve failed: %v", res)
	}
	chk.Scalar(tst, "t", 0, sess.T, 3.0)
	chk.Scalar(tst, "x", 0, sess.X[0], 42)
	chk.IntAssert(sess.StepsTotal, 0)
	chk.IntAssert(sess.StepsAccepted, 0)
	if calls != 0 {
		tst.Errorf("expected zero RHS evaluations, got %d", calls)
	}
}

// Test_invalidSession checks the pre-step validation rejects a session
// missing its state buffer.
func Test_invalidSession(tst *testing.T) {

	chk.PrintTitle("invalid_session")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()

	sess := &Session{Delta: 1e-9}
	sess.SetDefaults()

	res := Solve(1.0, sess)
	if res != InvalidSession {
		tst.Errorf("expected InvalidSession, got %v", res)
	}
}

// Test_nanBreak drives a right-hand side that is NaN everywhere and checks
// that, with HandleNaN enabled, Solve keeps dividing h by ten (spec.md §4.2's
// NaN retry) until the relative-h floor trips, at which point it reports
// NanBreak, leaves t at its pre-step value, and CheckNaN reports true.
func Test_nanBreak(tst *testing.T) {

	chk.PrintTitle("nan_break")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()
	HandleNaN(true)

	sess := &Session{
		H:     0.1,
		HMin:  1e-12,
		Delta: 1e-9,
		X:     []float64{1},
		Mem:   singleChunk(1),
		MetaF: func() RHS {
			return func(t float64, x, dxdt []float64) { dxdt[0] = math.NaN() }
		},
	}
	sess.SetDefaults()

	res := Solve(1.0, sess)
	if res != NanBreak {
		tst.Fatalf("expected NanBreak, got %v", res)
	}
	if !CheckNaN() {
		tst.Errorf("expected CheckNaN() to report true after a NanBreak")
	}
	if sess.T != 0 {
		tst.Errorf("expected t to remain at its pre-step value on NanBreak, got %v", sess.T)
	}
}

// Test_nanRetryRecovers drives a right-hand side with a domain singularity
// (sqrt of a negative argument) that only produces a NaN when a large step
// overshoots the domain. With HandleNaN enabled, the first attempt at the
// large initial h should hit the NaN retry and divide h by ten; the resulting
// smaller step stays inside the domain and the integration completes
// normally, leaving a record that a NaN was observed along the way.
func Test_nanRetryRecovers(tst *testing.T) {

	chk.PrintTitle("nan_retry_recovers")

	if res := Init(1, cluster.World, 0); res != Ok {
		tst.Fatalf("Init failed: %v", res)
	}
	defer Cleanup()
	HandleNaN(true)

	sess := &Session{
		H:     4.0,
		HMin:  1e-8,
		Delta: 1e-6,
		X:     []float64{1},
		Mem:   singleChunk(1),
		MetaF: func() RHS {
			return func(t float64, x, dxdt []float64) { dxdt[0] = -1 / math.Sqrt(x[0]) }
		},
	}
	sess.SetDefaults()

	res := Solve(2.0, sess)
	if res != Ok {
		tst.Fatalf("Solve failed: %v", res)
	}
	if !CheckNaN() {
		tst.Errorf("expected CheckNaN() to report true after a NaN retry")
	}
	if sess.StepsTotal <= sess.StepsAccepted {
		tst.Errorf("expected at least one non-accepted attempt from the NaN retry: total=%d accepted=%d",
			sess.StepsTotal, sess.StepsAccepted)
	}
	chk.Scalar(tst, "t_final", 1e-9, sess.T, 2.0)
}

// Test_notInitialised checks Solve refuses to run before Init.
func Test_notInitialised(tst *testing.T) {

	chk.PrintTitle("not_initialised")

	sess := &Session{
		H: 0.1, HMin: 1e-10, Delta: 1e-9,
		X: []float64{1}, Mem: singleChunk(1),
		MetaF: func() RHS { return func(t float64, x, dxdt []float64) { dxdt[0] = -x[0] } },
	}
	sess.SetDefaults()

	res := Solve(1.0, sess)
	if res != NotInitialised {
		tst.Errorf("expected NotInitialised, got %v", res)
	}
}
