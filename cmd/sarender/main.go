package main

import (
	"fmt"
	"os"

	"github.com/yungbote/situacio-backend/internal/cli"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

func main() {
	// Quiet unless LOG_MODE asks for logs.
	log := logger.Nop()
	if mode := os.Getenv("LOG_MODE"); mode != "" {
		l, err := logger.New(mode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
			os.Exit(1)
		}
		log = l
	}
	defer log.Sync()

	if err := cli.NewRootCmd(cli.Deps{Log: log}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Sync()
		os.Exit(1)
	}
}
