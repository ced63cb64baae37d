// Package main is the entry point for the midi2abc API server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/james-see/midi2abc/pkg/api"
	"github.com/james-see/midi2abc/pkg/converter"
	"github.com/james-see/midi2abc/pkg/smf"
)

func main() {
	port := pflag.IntP("port", "p", 8080, "Server port")
	pflag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	smf.SetLogger(logger)
	converter.SetLogger(logger)
	api.SetLogger(logger)

	logger.Info("starting midi2abc API server",
		zap.Int("port", *port),
		zap.String("swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", *port)),
	)

	if err := api.StartServer(*port); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
