package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pgnc/pgnc-upload/internal/cli"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pgnc.ExitPanic)
		}
	}()

	if os.Getenv("PGNC_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(pgnc.ExitCodeForError(err))
	}
}
