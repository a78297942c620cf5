package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

func main() {
	err := NewRootCmd().Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	shutdownErr := shutdownTelemetry(ctx)
	cancel()
	if shutdownErr != nil && err == nil {
		err = shutdownErr
	}

	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(os.Stderr, "\naborted")

		os.Exit(1)
	}

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
