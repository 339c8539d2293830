// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

// cmdWord is the command bitset the master broadcasts once per iteration
// to dictate identical post-step behaviour on every rank (spec.md §4.3,
// "Command word"). It is the direct re-expression of the `command` int
// broadcast in RK_MPI_Asolver.c / RK_MPI_SAsolver_hybrid.c.
type cmdWord int

const (
	cmdNaN        cmdWord = 1 << iota // some rank saw NaN/±Inf; retry with h/10
	cmdNaNFloor                       // h is below the relative floor; return NanBreak
	cmdUpdate                         // step accepted; apply update
	cmdNextFinish                     // the step after this one reaches t_final
	cmdFinished                       // this accepted step was the last
	cmdBreak                          // the service callback asked to stop
)

func (c cmdWord) has(bit cmdWord) bool { return c&bit != 0 }
