package main

import (
	"os"

	"github.com/joho/godotenv"

	"zvgcli/cmd/zvgctl/commands"
)

func main() {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
