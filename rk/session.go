// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import "github.com/radixsorth/PorousFreezeThaw/layout"

// DeltaMode selects how the Merson error estimate is normalised against
// Session.Delta (spec.md §4.2).
type DeltaMode int

// Delta-mode values.
const (
	GlobalError DeltaMode = iota // compare ε directly against Delta
	LocalError                   // compare |h/3|·ε against Delta
)

// RHS evaluates the right-hand side Dx/dt = f(t,x) of the ODE system. It
// may read x anywhere but must only write within the chunks described by
// the session's MemDist, and it must be collectively callable: every rank
// must enter the same f on the same virtual step (spec.md §3).
type RHS func(t float64, x []float64, dxdt []float64)

// MetaSelector picks the right-hand side to use for the next step. It is
// invoked after every accepted step and immediately before the first one,
// and must return identically on every rank for a given step ordinal
// (spec.md §3).
type MetaSelector func() RHS

// ServiceCallback is an optional post-step hook, invoked on every rank
// after an accepted step. Only the master's return value decides whether
// the integration breaks (spec.md §4.3): a nonzero return requests
// Interrupted.
type ServiceCallback func(tFinal float64, sess *Session) int

// RearrangeHook is the optional load-balancing extension point named in
// spec.md's Non-goals: its implementation is the driver's concern. When
// set, Solve invokes it between accepted steps, outside any collective,
// and replaces the session's MemDist with the layout it returns; a nil
// return keeps the current layout.
type RearrangeHook func(sess *Session) *layout.MemDist

// Session is the client-owned handle describing one integration (spec.md
// §3). The solver mutates T, H and the step counters during Solve; the
// caller may invoke Solve repeatedly on the same Session to chain
// integrations.
type Session struct {
	T     float64 // current time
	H     float64 // current proposed step; 0 means "auto" on first Solve call
	HMin  float64 // force-accept threshold; 0 disables force-accept
	Delta float64 // tolerance; must be > 0 on the master

	DeltaMode DeltaMode

	X   []float64      // state buffer
	Mem *layout.MemDist // chunk layout describing the live part of X

	MetaF   MetaSelector
	Service ServiceCallback
	Rebalance RearrangeHook

	StepsAccepted int
	StepsTotal    int
}

// SetDefaults fills in the package defaults for fields a caller commonly
// leaves zero, following the SetDefault idiom of inp.Data in the teacher
// tree. DeltaMode defaults to GlobalError, matching historical behaviour
// (spec.md §4.2).
func (s *Session) SetDefaults() {
	if s.DeltaMode != LocalError {
		s.DeltaMode = GlobalError
	}
}

// valid reports whether the locally-visible parts of the session are
// well-formed enough to attempt a solve (spec.md §4.3 step 1). isMaster
// additionally gates the Delta > 0 requirement, which only the master
// must satisfy.
func (s *Session) valid(isMaster bool) bool {
	if s == nil || s.X == nil || s.Mem == nil || s.MetaF == nil {
		return false
	}
	if isMaster && s.Delta <= 0 {
		return false
	}
	return true
}
