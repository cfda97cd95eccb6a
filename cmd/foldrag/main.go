// Command foldrag indexes a folder of documents and answers questions about it.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/foldrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/foldrag/internal/logger"
)

func main() {
	// A missing .env is normal; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("reading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
