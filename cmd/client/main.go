package main

import (
	"fmt"
	"os"
)

// OsExit is a function that can be mocked in tests.
var OsExit = os.Exit

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		OsExit(1)
	}
}
