package main

import (
	"fmt"
	"os"

	"github.com/cogtask/digitspan/cmd/cli/auth"
	"github.com/cogtask/digitspan/cmd/cli/results"
	"github.com/cogtask/digitspan/cmd/cli/root"
)

func main() {
	auth.Init(root.GetRoot())
	results.Init(root.GetRoot())

	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
