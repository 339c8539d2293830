// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

// Result is the stable, cross-process return code of the solver's public
// entry points (spec.md §4.5). Codes are fixed so that every rank can agree
// on the outcome of a collective operation without comparing strings.
type Result int

// Result codes, as specified in spec.md §4.5 and §6.
const (
	Ok               Result = 0
	Interrupted      Result = 1
	InvalidSession   Result = -2
	NotInitialised   Result = -3
	NanBreak         Result = -4
	CapacityExceeded Result = -5
	OtherRankFailed  Result = -6
)

// String gives a short human-readable description of a Result.
func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case Interrupted:
		return "interrupted"
	case InvalidSession:
		return "invalid session"
	case NotInitialised:
		return "not initialised"
	case NanBreak:
		return "NaN floor reached"
	case CapacityExceeded:
		return "capacity exceeded"
	case OtherRankFailed:
		return "a peer rank failed"
	}
	return "unknown result"
}
