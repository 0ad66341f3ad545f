// Package main implements showroomctl.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/WessleyAI/showroom/cmd/showroomctl/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(commands.ExecuteContext(ctx))
}
