// Package main provides the MCP server entry point for snpscope.
// The server speaks the Model Context Protocol over stdio, so assistants can
// look up RSIDs in the user's loaded DNA data.
package main

import (
	"context"
	"fmt"
	"os"

	"snpscope/src/config"
	"snpscope/src/logger"
	"snpscope/src/mcp"
	"snpscope/src/pipeline"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// stdout carries the protocol, so logs go to a file or nowhere.
	log, err := logger.New(cfg.LogFile, logger.NewSilentLogger())
	if err != nil {
		return err
	}
	if fl, ok := log.(*logger.FileLogger); ok {
		defer fl.Close()
	}

	rt, err := pipeline.Start(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	server := mcp.NewServer(rt.Coordinator, version,
		mcp.WithStats(rt.Client),
		mcp.WithHistory(rt.Store),
	)

	log.Info("[MCP] Serving on stdio (%s mode, service %s)", rt.Mode, cfg.ServiceURL)
	return server.Run()
}
