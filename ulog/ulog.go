// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ulog defines the logging sink the core writes diagnostics to.
//
// The core never calls a package-global logger: every component that needs
// to report progress or a recoverable warning is handed a Sink at
// construction time, the way fem.Domain is handed a *Summary rather than
// reaching for a global. This keeps the core embeddable inside an MPI rank
// that may want to silence all but rank 0, or inside a test that wants to
// capture output.
package ulog

import (
	"fmt"
	"os"

	"github.com/cpmech/gosl/io"
)

// Sink receives structured progress and warning lines from the core.
type Sink interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Nop discards everything; useful in tests and library callers that don't
// want diagnostics.
type Nop struct{}

func (Nop) Infof(format string, args ...interface{}) {}
func (Nop) Warnf(format string, args ...interface{}) {}

// Std writes to stderr using gosl/io's formatter, prefixed with the owning
// MPI rank so multi-process runs stay attributable.
type Std struct {
	Rank int
}

func (o Std) Infof(format string, args ...interface{}) {
	fmt.Fprint(os.Stderr, io.Sf("[rank %d] "+format+"\n", append([]interface{}{o.Rank}, args...)...))
}

func (o Std) Warnf(format string, args ...interface{}) {
	fmt.Fprint(os.Stderr, io.Sf("[rank %d] WARNING: "+format+"\n", append([]interface{}{o.Rank}, args...)...))
}
