// Command skel generates skeleton-screen specs from HTML, live pages,
// or serves the generation API over HTTP and MCP.
//
// Usage:
//
//	skel -name card -html card.html              # generate from a file, print spec
//	skel -name feed -url https://example.com \
//	     -selector "#feed"                       # generate from a live page
//	skel -validate spec.json                     # validate a serialized spec
//	skel -serve                                  # HTTP API on the configured addr
//	skel -mcp                                    # MCP tools over stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	_ "modernc.org/sqlite"

	"github.com/shimware/skel"
	"github.com/shimware/skel/livedom"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to skel.yaml config file")
	name := flag.String("name", "", "component name (cache key)")
	htmlPath := flag.String("html", "", "HTML file to generate from, - for stdin")
	pageURL := flag.String("url", "", "page URL to generate from (live mode)")
	selector := flag.String("selector", "body", "CSS selector of the live subtree root")
	maxDepth := flag.Int("max-depth", 0, "live snapshot depth limit (0 = default)")
	stealthMode := flag.Bool("stealth", false, "open live pages with stealth patches")
	validatePath := flag.String("validate", "", "spec JSON file to validate, - for stdin")
	importPath := flag.String("import", "", "exported entries to load into the cache at startup")
	exportPath := flag.String("export", "", "write the cache export here before exit")
	rulesPath := flag.String("rules", "", "YAML file of custom classification rules")
	serve := flag.Bool("serve", false, "serve the HTTP API")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, options{
		configPath:   *configPath,
		name:         *name,
		htmlPath:     *htmlPath,
		pageURL:      *pageURL,
		selector:     *selector,
		maxDepth:     *maxDepth,
		stealth:      *stealthMode,
		validatePath: *validatePath,
		importPath:   *importPath,
		exportPath:   *exportPath,
		rulesPath:    *rulesPath,
		serve:        *serve,
		serveMCP:     *mcpMode,
	}); err != nil {
		logger.Error("skel: fatal", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	name         string
	htmlPath     string
	pageURL      string
	selector     string
	maxDepth     int
	stealth      bool
	validatePath string
	importPath   string
	exportPath   string
	rulesPath    string
	serve        bool
	serveMCP     bool
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := resolveConfig(opts.configPath, opts.rulesPath)
	if err != nil {
		return err
	}

	svc, err := skel.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer svc.Close()

	if opts.importPath != "" {
		data, err := os.ReadFile(opts.importPath)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		n, err := svc.Registry().Import(data)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		logger.Info("skel: cache imported", "entries", n)
	}

	switch {
	case opts.validatePath != "":
		err = validateFile(svc, opts.validatePath)
	case opts.htmlPath != "":
		err = generateStatic(ctx, svc, opts)
	case opts.pageURL != "":
		err = generateLive(ctx, svc, logger, opts)
	case opts.serveMCP:
		return serveMCP(ctx, svc)
	case opts.serve:
		return serveHTTP(ctx, svc, logger, cfg.HTTPAddr)
	default:
		fmt.Fprintln(os.Stderr, "usage: skel -name <component> -html <file> | -url <url> | -validate <file> | -serve | -mcp")
		os.Exit(1)
	}
	if err != nil {
		return err
	}

	if opts.exportPath != "" {
		data, err := svc.Registry().Export()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(opts.exportPath, data, 0o644); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("skel: cache exported", "path", opts.exportPath)
	}
	return nil
}

func resolveConfig(configPath, rulesPath string) (*skel.Config, error) {
	var cfg *skel.Config
	if configPath != "" {
		loaded, err := skel.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &skel.Config{}
	}
	if rulesPath != "" {
		cfg.RulesFile = rulesPath
	}
	return cfg, nil
}

func generateStatic(ctx context.Context, svc *skel.Service, opts options) error {
	if opts.name == "" {
		return errors.New("generate: -name is required")
	}
	var data []byte
	var err error
	if opts.htmlPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(opts.htmlPath)
	}
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	result, err := svc.Generate(ctx, opts.name, data, nil)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	return printJSON(result)
}

func generateLive(ctx context.Context, svc *skel.Service, logger *slog.Logger, opts options) error {
	if opts.name == "" {
		return errors.New("generate: -name is required")
	}

	u, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return fmt.Errorf("browser: launch: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	defer browser.Close()

	var pageOpts []livedom.OpenOption
	if opts.stealth {
		pageOpts = append(pageOpts, livedom.WithStealth())
	}
	page, err := livedom.Open(ctx, browser, opts.pageURL, logger, pageOpts...)
	if err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	defer page.Close()

	source := page.Source(opts.name, opts.selector, opts.maxDepth)
	result, err := svc.GenerateFrom(ctx, source, nil, "live")
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	return printJSON(result)
}

func validateFile(svc *skel.Service, path string) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	result := svc.ValidateJSON(data)
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Valid {
		os.Exit(2)
	}
	return nil
}

func serveMCP(ctx context.Context, svc *skel.Service) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "skel",
		Version: "1.0.0",
	}, nil)
	svc.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func serveHTTP(ctx context.Context, svc *skel.Service, logger *slog.Logger, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("skel: server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("skel: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("skel: server stopped")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
