// Command ragets answers questions about a local document collection with
// cited sources.
package main

import (
	"os"

	"github.com/manwithbarba/rag-ets/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
