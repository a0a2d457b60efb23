package main

import (
	"fmt"
	"os"

	"github.com/winops-io/opsreport/internal/cli"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := cli.NewCmdRoot(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "opsreport: %s\n", err)
		os.Exit(1)
	}
}
