package main

import (
	"fmt"
	"os"

	"github.com/joacominatel/theseus/internal/transport"
	"github.com/joacominatel/theseus/internal/transport/flightsql"
	"go.uber.org/zap"
)

func main() {
	cli := &cli{
		connector: func(logger *zap.Logger) transport.Connector {
			return flightsql.NewConnector(logger)
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	if err := cli.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
