// Package main is the shlrec CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/catalog"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/cli"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/config"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/embedding"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/harvest"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/indexer"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/recommend"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/server"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/storage"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/watcher"
	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/shlrec/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present; when neither exists the built-in defaults are used.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "recommend":
		runRecommend()
	case "search":
		runSearch()
	case "embed":
		runEmbed()
	case "harvest":
		runHarvest()
	case "status":
		runStatus()
	case "reload":
		runReload()
	case "version", "--version", "-v":
		fmt.Printf("shlrec version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// mustSetup loads config and builds the logger, exiting on failure.
func mustSetup(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolved == "" {
		resolved = "(built-in defaults)"
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	watch := fs.Bool("watch", false, "reload the catalog when its files change (overrides config)")
	port := fs.Int("port", 0, "listen port (overrides config and PORT)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()
	if *port > 0 {
		cfg.Server.Port = *port
	}

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Catalog.Watch || *watch {
		src := sourceFor(cfg)
		holder := components.Holder
		w := watcher.NewWatcher(
			[]string{src.CatalogPath, src.EmbeddingsPath},
			func() {
				if _, err := holder.Reload(context.Background(), src); err != nil {
					logger.Warn("watch reload failed", zap.Error(err))
				}
			},
			watcher.WithDebounce(cfg.Catalog.Debounce),
			watcher.WithLogger(logger),
		)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		logger.Info("watching catalog files", zap.Strings("files", w.Files()))
	}

	srv := server.NewServer(
		components.Service,
		components.Holder,
		cfg,
		logger,
		server.WithStorage(components.Storage),
		server.WithVersion(version),
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printRecommendUsage prints recommend subcommand usage.
func printRecommendUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: shlrec recommend [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  shlrec recommend java developer who collaborates with business teams
  shlrec recommend --top-k 10 "leadership assessment"
  shlrec recommend --server "" --output json sales manager   # run locally, no server
`)
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (used when --server is empty)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = load the catalog and embed locally)")
	topK := fs.Int("top-k", -1, "number of results (default from config)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printRecommendUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	if query == "" {
		printRecommendUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response *models.RecommendResponse
	if *serverURL != "" {
		response, err = recommendViaHTTP(*serverURL, query, *topK)
	} else {
		response, err = recommendLocal(*configPath, *debug, query, *topK)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func recommendLocal(configPath string, debug bool, query string, topK int) (*models.RecommendResponse, error) {
	cfg, logger := mustSetup(configPath, debug)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, false)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	if topK < 0 {
		topK = components.Service.DefaultTopK()
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout)
	defer cancel()
	return components.Service.Recommend(ctx, query, topK)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	limit := fs.Int("limit", 10, "maximum number of matches")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: shlrec search [--limit n] [--fuzzy] <name or keywords>")
		os.Exit(1)
	}
	resp, err := searchViaHTTP(*serverURL, query, *limit, *fuzzy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteCatalogMatches(os.Stdout, resp); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runEmbed() {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	catalogPath := fs.String("catalog", "", "catalog file (default from config)")
	outPath := fs.String("out", "", "embeddings output file, .npy or .vec (default from config)")
	batchSize := fs.Int("batch-size", 0, "rows per provider request (default from config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()
	if *catalogPath == "" {
		*catalogPath = cfg.Catalog.Path
	}
	if *outPath == "" {
		*outPath = cfg.Catalog.EmbeddingsPath
	}
	if *batchSize <= 0 {
		*batchSize = cfg.Embedding.BatchSize
	}

	emb, err := embedding.New(&cfg.Embedding, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	defer emb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	b := indexer.NewBuilder(emb, indexer.WithBatchSize(*batchSize), indexer.WithLogger(logger))
	store, err := b.BuildFile(ctx, *catalogPath, *outPath)
	if err != nil {
		logger.Fatal("Embedding failed", zap.Error(err))
	}
	fmt.Printf("Wrote %d x %d embeddings to %s\n", store.Size(), store.Dimension(), *outPath)
}

func runHarvest() {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outPath := fs.String("out", "", "output catalog file, .csv or .xlsx (default from config)")
	noDB := fs.Bool("no-db", false, "do not record the run in the harvest database")
	fromDB := fs.Bool("from-db", false, "write every item ever harvested instead of this run's items")
	history := fs.Int("history", 0, "list the last N recorded runs and exit")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()
	if *outPath == "" {
		*outPath = cfg.Harvest.OutputPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *history > 0 {
		st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to open harvest database", zap.Error(err))
		}
		defer st.Close()
		runs, err := st.ListRuns(ctx, *history)
		if err != nil {
			logger.Fatal("Failed to list harvest runs", zap.Error(err))
		}
		writeRunHistory(os.Stdout, runs)
		return
	}

	h := harvest.New(&cfg.Harvest, harvest.WithLogger(logger))

	if *noDB {
		items, err := h.Run(ctx)
		if err != nil {
			logger.Fatal("Harvest failed", zap.Error(err))
		}
		writeCatalog(logger, *outPath, items)
		return
	}

	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open harvest database", zap.Error(err))
	}
	defer st.Close()
	run, items, err := h.RunAndRecord(ctx, st)
	if err != nil {
		logger.Fatal("Harvest failed", zap.Error(err))
	}
	if *fromDB {
		if items, err = st.ListItems(ctx); err != nil {
			logger.Fatal("Failed to list harvested items", zap.Error(err))
		}
	}
	writeCatalog(logger, *outPath, items)
	fmt.Printf("Run %s: %d items, %d new\n", run.ID, run.ItemCount, run.NewItems)
}

func writeCatalog(logger *zap.Logger, path string, items []models.CatalogItem) {
	if len(items) == 0 {
		logger.Fatal("Harvest produced no items; keeping the existing catalog", zap.String("path", path))
	}
	if err := catalog.Save(path, items); err != nil {
		logger.Fatal("Failed to write catalog", zap.String("path", path), zap.Error(err))
	}
	fmt.Printf("Wrote %d unique items to %s\n", len(items), path)
}

func writeRunHistory(w io.Writer, runs []*models.HarvestRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No harvest runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tITEMS\tNEW\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Status, r.ItemCount, r.NewItems, r.Error)
	}
	_ = tw.Flush()
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	status, err := statusViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if *outputFormat == "json" {
		if err := writeJSON(os.Stdout, status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, status)
}

func runReload() {
	fs := flag.NewFlagSet("reload", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := reloadViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reloaded: snapshot %d, %d items, %d dimensions\n",
		resp.Snapshot.Version, resp.Snapshot.Items, resp.Snapshot.Dimensions)
}

// Components holds the long-lived objects shared by server and local commands.
type Components struct {
	Embedder embedding.Embedder
	Holder   *catalog.Holder
	Service  *recommend.Service
	Storage  storage.Storage
}

func (c *Components) Close() {
	if c.Holder != nil {
		c.Holder.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func sourceFor(cfg *config.Config) catalog.Source {
	return catalog.Source{
		CatalogPath:    cfg.Catalog.Path,
		EmbeddingsPath: cfg.Catalog.EmbeddingsPath,
	}
}

// initializeComponents loads the catalog snapshot and builds the query service.
// A catalog that fails to load is fatal to the caller. withStorage opens the
// harvest database for status reporting.
func initializeComponents(cfg *config.Config, logger *zap.Logger, withStorage bool) (*Components, error) {
	c := &Components{}

	emb, err := embedding.New(&cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = emb

	c.Holder = catalog.NewHolder(nil, logger)
	snap, err := c.Holder.Reload(context.Background(), sourceFor(cfg))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if d := emb.Dimensions(); d > 0 && d != snap.Dimension() {
		logger.Warn("embedding provider dimension differs from catalog embeddings; queries will fail",
			zap.Int("provider", d), zap.Int("catalog", snap.Dimension()))
	}

	if withStorage {
		st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Warn("harvest database unavailable; status will omit harvest counts", zap.Error(err))
		} else {
			c.Storage = st
		}
	}

	c.Service = recommend.NewService(c.Holder, emb, &cfg.Recommend,
		recommend.WithEmbedTimeout(cfg.Embedding.Timeout),
		recommend.WithLogger(logger),
	)
	return c, nil
}

func printUsage() {
	fmt.Println(`shlrec - SHL assessment recommender

Usage:
  shlrec server [flags]              Start the HTTP server
  shlrec recommend [flags] <query>   Recommend assessments for a free-text query
  shlrec search [flags] <keywords>   Look up catalog items by name or description
  shlrec embed [flags]               Embed the catalog into an .npy/.vec matrix
  shlrec harvest [flags]             Crawl the public product catalog into a CSV/XLSX file
  shlrec status [flags]              Show the running server's catalog snapshot
  shlrec reload [flags]              Ask the running server to reload its catalog
  shlrec version                     Show version
  shlrec help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/shlrec/config.yaml, then ./config.yaml)
  --debug            Enable debug logging
  --watch            Reload when the catalog or embeddings file changes
  --port int         Listen port (overrides config and PORT)

Recommend Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to run locally.
  --top-k int        Number of results (default from config, 5)
  --output string    Output format: text, compact, or json (default: text)

Embed Flags:
  --catalog string   Catalog file (.csv, .xlsx, or harvest .db)
  --out string       Output matrix (.npy or .vec)
  --batch-size int   Rows per provider request

Harvest Flags:
  --out string       Output catalog (.csv or .xlsx)
  --no-db            Skip the harvest database
  --from-db          Write every item ever harvested
  --history int      List the last N recorded runs and exit

Examples:
  shlrec harvest
  shlrec embed
  shlrec server --watch
  shlrec recommend "java developer who can collaborate with business teams"
  shlrec recommend --top-k 3 --output json leadership assessment
  shlrec search --fuzzy verfy numerical
  shlrec status --output json`)
}
