package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file

	"breakreminder/internal/interfaces/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.BuildCLI(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "breakreminder: %v\n", err)
		os.Exit(1)
	}
}
