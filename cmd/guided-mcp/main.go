package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ironsheep/guided-filter-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const logLevelEnv = "GUIDED_MCP_LOG_LEVEL"

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "guided-filter-mcp %s - edge-preserving smoothing over MCP (stdio)\n\n", Version)
	fmt.Fprintln(w, "Usage: guided-filter-mcp [--version | --help]")
	fmt.Fprintf(w, "\nSet %s=debug to log every request and tool timing to stderr.\n", logLevelEnv)
	fmt.Fprintln(w, "\nTools:")
	for _, tool := range server.GetToolDefinitions() {
		desc, _, _ := strings.Cut(tool.Description, ". ")
		fmt.Fprintf(w, "  %-22s %s\n", tool.Name, strings.TrimSuffix(desc, "."))
	}
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("guided-filter-mcp %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
			return
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			return
		default:
			printUsage(os.Stderr)
			os.Exit(2)
		}
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	srv := server.New()
	if strings.EqualFold(os.Getenv(logLevelEnv), "debug") {
		srv.Debug = true
		log.Printf("guided-filter-mcp %s starting with debug logging", Version)
	}

	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
