package core

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// NewLogger returns a structured, uncolored text logger for the given
// component name. The simplifier never shells out to a colored terminal
// writer (spec.md marks "colored logging" explicitly out of scope); funcr's
// plain key=value text sink is the closest equivalent already present in
// the retrieval pack.
func NewLogger(name string) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
		} else {
			fmt.Fprintln(os.Stderr, args)
		}
	}, funcr.Options{LogCaller: funcr.None}).WithName(name)
}

// Discard returns a logger that drops everything, for callers (mostly
// tests) that don't want phase-boundary chatter.
func Discard() logr.Logger {
	return logr.Discard()
}
