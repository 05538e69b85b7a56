package main

import (
	"fmt"
	"os"

	"github.com/turtacn/riskboard/cmd/cli"
)

func main() {
	cmd := cli.NewServeCommand()
	cmd.Use = "riskboard-server"
	cli.AddConfigFlags(cmd)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
