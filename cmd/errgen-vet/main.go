// Command errgen-vet runs the errgen analyzer as a standalone vet tool:
//
//	go vet -vettool=$(which errgen-vet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"errgen/internal/lint"
)

func main() {
	singlechecker.Main(lint.Analyzer)
}
