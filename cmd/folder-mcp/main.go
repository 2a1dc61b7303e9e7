package main

import (
	"os"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driving/cli"
)

// version is overridden by the linker on release builds.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
