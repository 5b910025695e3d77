package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/blimu-dev/tsclientgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
