// cmd/analyzer/main.go
package main

import (
	"fmt"
	"os"

	"dialog-analyzer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
