package main

import (
	"os"

	"github.com/wonny/fscore/cmd/fscore/commands"
)

// main is the entry point for the fscore CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fscore [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
