// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"

	"github.com/radixsorth/PorousFreezeThaw/cluster"
	"github.com/radixsorth/PorousFreezeThaw/layout"
	"github.com/radixsorth/PorousFreezeThaw/rk"
	"github.com/radixsorth/PorousFreezeThaw/rklog"
)

// main wires one demonstration integration end to end: a scalar harmonic
// oscillator advanced from t=0 to t=tFinal with adaptive step control.
// Grounded on the teacher's main.go: same mpi.Start/Stop bracketing and
// recover-and-report pattern, adapted from "load a .sim file and run a FEM
// simulation" to "build a Session and call rk.Solve".
func main() {
	utl.Tsilent = false
	defer func() {
		if mpi.Rank() == 0 {
			if err := recover(); err != nil {
				utl.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	dirout := flag.String("dirout", "/tmp", "directory for the per-rank log file")
	tFinal := flag.Float64("tfinal", 10.0, "final integration time")
	flag.Parse()

	fnkey := io.FnKey("integrate.session")
	io.RemoveAll(io.Sf("%s/%s_p*.log", *dirout, fnkey))

	if err := rklog.InitLogFile(*dirout, fnkey); err != nil {
		utl.Panic("cannot start log file: %v\n", err)
	}
	defer rklog.FlushLog()

	const n = 2 // [position, velocity]
	mem := layout.NewMemDist([]int{0}, []int{n}, []float64{1})
	if res := mem.Validate(n); rklog.LogErrCond(res != layout.Ok, "invalid layout: %v", res) {
		utl.Panic("invalid layout: %v\n", res)
	}

	if res := rk.Init(n, cluster.World, 0); res != rk.Ok {
		utl.Panic("rk.Init failed: %v\n", res)
	}
	defer rk.Cleanup()

	sess := &rk.Session{
		H:     0.01,
		HMin:  1e-8,
		Delta: 1e-6,
		X:     []float64{1, 0}, // x(0)=1, x'(0)=0
		Mem:   mem,
		MetaF: func() rk.RHS {
			return func(t float64, x []float64, dxdt []float64) {
				dxdt[0] = x[1]
				dxdt[1] = -x[0]
			}
		},
		Service: func(tFinal float64, s *rk.Session) int {
			rklog.TraceAcceptedStep(s.T, s.H, s.StepsAccepted, s.StepsTotal)
			return 0
		},
	}
	sess.SetDefaults()

	res := rk.Solve(*tFinal, sess)
	if res != rk.Ok {
		utl.Panic("rk.Solve failed: %v\n", res)
	}

	utl.Pf("reached t=%v after %d accepted / %d attempted steps\n", sess.T, sess.StepsAccepted, sess.StepsTotal)
	utl.Pf("x=%v\n", sess.X)
}
