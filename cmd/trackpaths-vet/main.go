// Command trackpaths-vet reports how a target line of annotated Go functions
// is reached.
//
//	trackpaths-vet -file parse.go -line 42 ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/sirkon/trackpaths/internal/gossa"
)

func main() {
	singlechecker.Main(gossa.Analyzer)
}
