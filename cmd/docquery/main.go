// Package main implements the docquery CLI: ingest documentation,
// query it from the command line, and serve the MCP interface.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/docquery-mcp/internal/catalog"
	"github.com/dshills/docquery-mcp/internal/config"
	"github.com/dshills/docquery-mcp/internal/ingest"
	"github.com/dshills/docquery-mcp/internal/mcp"
	"github.com/dshills/docquery-mcp/internal/provider"
	"github.com/dshills/docquery-mcp/internal/query"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docquery",
	Short: "Documentation question answering over MCP",
	Long: `docquery ingests a documentation corpus into a local vector index
and answers natural-language questions against it, either directly from
the command line or as an MCP server for AI coding assistants.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds a console logger on stderr. Stdout stays clean for
// command output and, under serve, the MCP protocol.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [roots...]",
	Short: "Ingest documentation into the local index",
	Long: `Discover documentation files under the configured roots (or the roots
given as arguments), chunk and embed them, and persist a fresh vector
index. Re-running ingest replaces the prior index wholesale.

Examples:
  # Ingest the roots from the config file
  docquery ingest

  # Ingest explicit directories
  docquery ingest ./docs ./guides`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Roots = args
	}

	pipeline, err := ingest.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = pipeline.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d documents (%d chunks) in %s\n",
		result.Documents, result.Chunks, result.Duration.Round(time.Millisecond))
	return nil
}

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a question from the ingested documentation",
	Long: `Answer a natural-language question using the persisted index.

Examples:
  docquery query "How do I configure the UART baud rate?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prov, err := provider.New(provider.Config{
		Name:       cfg.Provider.Name,
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		EmbedModel: cfg.Provider.EmbedModel,
		ChatModel:  cfg.Provider.ChatModel,
		Timeout:    cfg.Provider.Timeout,
	})
	if err != nil {
		return fmt.Errorf("configuring provider: %w", err)
	}
	defer func() { _ = prov.Close() }()

	svc, err := query.New(cfg, prov, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	answer, err := svc.Query(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, source := range answer.Sources {
			fmt.Printf("  %s\n", source)
		}
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP interface on stdio",
	Long: `Start the MCP server on stdio. All logging goes to stderr; stdout is
reserved for the MCP protocol.

Configure in an MCP client:
  {
    "mcpServers": {
      "docquery": {
        "command": "docquery",
        "args": ["serve"],
        "env": { "OPENAI_API_KEY": "your-api-key" }
      }
    }
  }`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("starting MCP server: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	return server.Serve(ctx)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ingestion status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalogPath := cfg.CatalogPath()
	if _, err := os.Stat(catalogPath); err != nil {
		fmt.Println("No documentation ingested. Run docquery ingest first.")
		return nil
	}

	cat, err := catalog.Open(catalogPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer func() { _ = cat.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	status, err := cat.GetStatus(ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]interface{}{
		"ingested":   status.Ingested,
		"total_runs": status.TotalRuns,
		"documents":  status.DocumentCount,
		"chunks":     status.ChunkCount,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docquery\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", catalog.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", catalog.DriverName)
	},
}
