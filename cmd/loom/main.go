package main

import (
	"fmt"
	"os"

	"github.com/loomui/loom/cmd"
)

var (
	version   = "v0.1.0"
	buildType = "dev"
	date      = "unknown"
	commit    = "unknown"
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version:   version,
		BuildType: buildType,
		Date:      date,
		Commit:    commit,
	})
	if err != nil {
		fmt.Printf("loom: %s\n", err.Error())
		os.Exit(1)
	}
}
