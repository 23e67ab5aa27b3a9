package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ougirez/certzone/internal/pkg/logger"
)

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	logger.Sync()

	if err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
