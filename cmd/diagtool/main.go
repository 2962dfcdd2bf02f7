package main

import (
	"github.com/mark/erd-diagram-tool/cmd/diagtool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.ExitWithError("%v", err)
	}
}
