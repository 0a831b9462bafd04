package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/JagminasJ/AutoTaskMCP/internal/autotask"
	"github.com/JagminasJ/AutoTaskMCP/internal/config"
	"github.com/JagminasJ/AutoTaskMCP/internal/logbuf"
	"github.com/JagminasJ/AutoTaskMCP/internal/mcpserver"
	"github.com/JagminasJ/AutoTaskMCP/internal/pipeline"
	"github.com/JagminasJ/AutoTaskMCP/internal/resolver"
	"github.com/JagminasJ/AutoTaskMCP/internal/tool"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	// stdout carries the MCP transport, so all logging goes to stderr.
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logBuf := logbuf.New(2000)
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logbuf.NewHandler(jsonHandler, logBuf))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Info("autotask-mcp starting", "base_url", cfg.BaseURL)

	client := autotask.New(cfg, logger)

	reg := tool.NewRegistry()
	tool.RegisterPassthroughs(reg, client, logger)
	reg.Register(tool.NewCompanyTickets(
		resolver.New(client, logger),
		pipeline.New(client, cfg.DefaultCutoff, logger),
		logger,
	))

	srv := mcpserver.New(reg, logBuf, logger)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
