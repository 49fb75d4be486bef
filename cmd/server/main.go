package main

import (
	"context"
	"fmt"
	"os"
)

// main hands off to the cobra command tree. Business logic lives in the
// internal service packages.
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
