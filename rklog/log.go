// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rklog is the driver-level logging helper for programs built on
// top of the rk solver. The solver package itself never logs (spec.md §7:
// "the solver performs no logging or I/O itself"); a driver that wants a
// per-rank trace of what a Session is doing opens one of these files and
// writes to it from its ServiceCallback, which is the only point at which
// the solver hands a Session snapshot back to the caller.
package rklog

import (
	"log"
	"os"

	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"
)

// logFile holds the open handle to the current rank's log file.
var logFile *os.File

// InitLogFile opens "<dirout>/<fnamekey>_p<rank>.log" and redirects the
// standard logger to it, so every rank of a distributed run writes to its
// own file instead of interleaving on a shared stream.
func InitLogFile(dirout, fnamekey string) (err error) {
	var rank int
	if mpi.IsOn() {
		rank = mpi.Rank()
	}
	f, err := os.Create(utl.Sf("%s/%s_p%d.log", dirout, fnamekey, rank))
	if err != nil {
		return
	}
	logFile = f
	log.SetOutput(logFile)
	return
}

// FlushLog closes the log file opened by InitLogFile.
func FlushLog() {
	if logFile != nil {
		logFile.Close()
	}
}

// LogErr logs err, if non-nil, prefixed by msg, and reports whether the
// caller should stop on account of it.
func LogErr(err error, msg string) (stop bool) {
	if err != nil {
		log.Printf("ERROR: %s : %v", msg, err)
		return true
	}
	return false
}

// LogErrCond logs msg (formatted with prm) when condition is true, and
// reports condition back so callers can write `if LogErrCond(...) { return }`.
func LogErrCond(condition bool, msg string, prm ...interface{}) (stop bool) {
	if condition {
		log.Printf("ERROR: %s", utl.Sf(msg, prm...))
		return true
	}
	return false
}

// TraceAcceptedStep records one accepted step: the new time level, the step
// size that reached it, and the running accepted/total step counts.
// Intended to be called from a ServiceCallback, the only point at which the
// solver hands a Session snapshot back to the caller.
func TraceAcceptedStep(t, h float64, accepted, total int) {
	log.Printf("accept t=%g h=%g accepted=%d total=%d", t, h, accepted, total)
}
