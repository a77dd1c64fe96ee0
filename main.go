package main

import (
	"fmt"
	"os"

	"github.com/phenomwatch/analytics/internal/bootstrap"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := bootstrap.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start analytics service: %v\n", err)
		return 1
	}
	return 0
}
