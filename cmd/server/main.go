package main

import (
	"log"
	"os"

	"netops_helper/internal/bus"
	"netops_helper/internal/config"
	"netops_helper/internal/handler"
	"netops_helper/internal/logger"
	mcpserver "netops_helper/internal/service/mcp-server"
)

func main() {
	cfg, err := config.Load(os.Getenv("NETOPS_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// stdout carries the MCP protocol, so logs only go to the file
	if err := logger.InitFile(cfg.LogLevel, logger.FileOptions{Path: cfg.LogFile, MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 28}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	slackHandler, err := handler.NewSlackHandler(bus.NewLogPublisher(), handler.Options{
		ProvisionSubject: cfg.ProvisionSubject,
		ApprovalSubject:  cfg.ApprovalSubject,
		Segments:         cfg.Segments,
	})
	if err != nil {
		log.Fatalf("Failed to create command handler: %v", err)
	}

	// Create new MCP server
	server, err := mcpserver.NewServer(slackHandler, handler.Commands)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Start server
	log.Println("Starting netops helper MCP server...")
	if err := mcpserver.Serve(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
