// Package main is the predictimed CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/cli"
	"github.com/hyperjump/predictimed/internal/config"
	"github.com/hyperjump/predictimed/internal/console"
	"github.com/hyperjump/predictimed/internal/indexer"
	"github.com/hyperjump/predictimed/internal/lexicon"
	"github.com/hyperjump/predictimed/internal/llm"
	"github.com/hyperjump/predictimed/internal/metrics"
	"github.com/hyperjump/predictimed/internal/rag"
	"github.com/hyperjump/predictimed/internal/retrieval"
	"github.com/hyperjump/predictimed/internal/server"
	"github.com/hyperjump/predictimed/internal/simplify"
	"github.com/hyperjump/predictimed/internal/storage"
	"github.com/hyperjump/predictimed/internal/watcher"
	"github.com/hyperjump/predictimed/pkg/utils"
)

var version = "dev"

// loadConfig resolves and loads the config file. With no explicit path and no
// config.yaml in the working directory or the system location, defaults are
// used. The returned path is empty in that case.
func loadConfig(explicit string) (*config.Config, string, error) {
	path, found := config.FindConfigFile(explicit)
	if !found {
		if explicit != "" {
			return nil, "", fmt.Errorf("config file not found: %s", explicit)
		}
		return config.Defaults(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads config and builds the logger shared by every subcommand.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolved == "" {
		logger.Debug("no config file found; using defaults")
	} else {
		logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	}
	return cfg, logger
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	switch command {
	case "server":
		runServer(args)
	case "index":
		runIndex(args)
	case "ask":
		runAsk(args)
	case "chat":
		runChat(args)
	case "simplify":
		runSimplify(args)
	case "lexicon":
		runLexicon(args)
	case "documents":
		runDocuments(args)
	case "status":
		runStatus(args)
	case "models":
		runModels()
	case "version", "--version", "-v":
		fmt.Printf("predictimed version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// enabledServices maps the -service flag to the services to run.
func enabledServices(s string) (answer, simplifier bool, err error) {
	switch strings.ToLower(s) {
	case "all", "":
		return true, true, nil
	case server.ServiceAnswer:
		return true, false, nil
	case server.ServiceSimplify:
		return false, true, nil
	default:
		return false, false, fmt.Errorf("unknown service %q (want answer, simplify or all)", s)
	}
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	service := fs.String("service", "all", "services to run: answer, simplify or all")
	_ = fs.Parse(args)

	withAnswer, withSimplify, err := enabledServices(*service)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := newComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	var opts []server.Option
	if withAnswer {
		opts = append(opts, server.WithAnswerer(comps.answerService(ctx, cfg)))
	}
	if withSimplify {
		simp, err := comps.simplifier(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize simplifier", zap.Error(err))
		}
		opts = append(opts, server.WithAnnotator(simp))
	}

	srv := server.NewServer(&cfg.Server, logger, opts...)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	<-errCh
	logger.Info("Server stopped gracefully")
}

func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	dataset := fs.String("dataset", "", "condition records JSON file (default: index.dataset from config)")
	force := fs.Bool("force", false, "replace an existing index")
	watch := fs.Bool("watch", false, "rebuild the index whenever the dataset file changes")
	_ = fs.Parse(args)

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	path := cfg.Index.Dataset
	if *dataset != "" {
		path = *dataset
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := newComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()
	emb, err := comps.embedder(&cfg.Embedding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create embedder: %v\n", err)
		os.Exit(1)
	}

	idx := indexer.NewIndexer(emb, &cfg.Index, indexer.WithLogger(logger), indexer.WithModel(cfg.Embedding.Model))
	res, err := idx.IndexDataset(ctx, path, *force)
	if err != nil {
		if errors.Is(err, retrieval.ErrIndexExists) {
			fmt.Fprintf(os.Stderr, "Index already exists at %s; use -force to rebuild\n", cfg.Index.Path)
		} else {
			fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		}
		os.Exit(1)
	}
	reportIndex(res, path, cfg.Index.Path)
	if !*watch {
		return
	}

	var rebuild sync.Mutex
	w, err := watcher.New([]string{path}, func(changed string) {
		rebuild.Lock()
		defer rebuild.Unlock()
		res, err := idx.IndexDataset(ctx, changed, true)
		if err != nil {
			logger.Error("rebuild failed", zap.String("dataset", changed), zap.Error(err))
			return
		}
		reportIndex(res, changed, cfg.Index.Path)
	}, watcher.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to watch dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", path)
	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		os.Exit(1)
	}
}

func reportIndex(res *indexer.Result, dataset, index string) {
	fmt.Printf("Indexed %d documents from %s into %s in %s\n",
		res.Manifest.Count, dataset, index, res.Elapsed.Round(time.Millisecond))
	cli.WriteManifest(os.Stdout, res.Manifest)
}

// joinArgs joins positional args with spaces so multi-word input works with
// or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags that follow the positional words to the front so
// flag.Parse sees them.
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

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: predictimed ask [flags] <question>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(args))

	question := joinArgs(fs.Args())
	if question == "" {
		fs.Usage()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := newComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	ans := comps.answerService(ctx, cfg).Answer(ctx, question)
	if err := cli.WriteAnswer(os.Stdout, ans, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if ans.Status == rag.StatusFailed || ans.Status == rag.StatusUnavailable {
		os.Exit(1)
	}
}

func runDocuments(args []string) {
	fs := flag.NewFlagSet("documents", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	output := fs.String("output", "text", "output format: text or json")
	offset := fs.Int("offset", 0, "skip this many documents")
	limit := fs.Int("limit", 20, "maximum number of documents to list")
	id := fs.String("id", "", "show the full text of one document")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	if err := writeDocuments(context.Background(), os.Stdout, cfg.Index.Path, *id, *offset, *limit, format); err != nil {
		if errors.Is(err, retrieval.ErrIndexNotFound) {
			fmt.Fprintf(os.Stderr, "No index at %s; run 'predictimed index' first\n", cfg.Index.Path)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read documents: %v\n", err)
		}
		os.Exit(1)
	}
}

// writeDocuments prints one document when id is set, otherwise a page of the
// document listing.
func writeDocuments(ctx context.Context, w io.Writer, dir, id string, offset, limit int, format cli.OutputFormat) error {
	ix, err := retrieval.Open(dir)
	if err != nil {
		return err
	}
	defer ix.Close()

	if id != "" {
		doc, err := ix.Document(ctx, id)
		if err != nil {
			return err
		}
		return cli.WriteDocument(w, doc, format)
	}
	docs, err := ix.Documents(ctx, offset, limit)
	if err != nil {
		return err
	}
	return cli.WriteDocuments(w, docs, format)
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	_ = fs.Parse(args)

	cfg, _ := setup(*configPath, false)
	// Log lines would corrupt the terminal UI; only the console writes to it.
	logger := zap.NewNop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := newComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	svc := comps.answerService(ctx, cfg)
	if !svc.Ready() {
		fmt.Fprintf(os.Stderr, "❌ System initialization error: %v\n", svc.Cause())
		fmt.Fprintln(os.Stderr, "Please ensure all required models and data are available.")
		os.Exit(1)
	}
	info := console.Info{GeneratorModel: cfg.Generator.Model, EmbeddingModel: cfg.Embedding.Model}
	if err := console.Run(ctx, svc, info); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Console failed: %v\n", err)
		os.Exit(1)
	}
}

func runSimplify(args []string) {
	fs := flag.NewFlagSet("simplify", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: predictimed simplify [flags] [text]\n\nReads stdin when no text is given.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(args))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	text := joinArgs(fs.Args())
	if text == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read stdin: %v\n", err)
			os.Exit(1)
		}
		text = string(b)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	comps, err := newComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()
	simp, err := comps.simplifier(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize simplifier: %v\n", err)
		os.Exit(1)
	}

	res, err := simp.Annotate(context.Background(), text)
	if err != nil {
		if errors.Is(err, simplify.ErrEmptyText) {
			fmt.Fprintln(os.Stderr, "Please enter some text")
		} else {
			fmt.Fprintf(os.Stderr, "Simplify failed: %v\n", err)
		}
		os.Exit(1)
	}
	if err := cli.WriteAnnotation(os.Stdout, res, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runLexicon(args []string) {
	if len(args) < 1 {
		printLexiconUsage()
		os.Exit(1)
	}
	switch args[0] {
	case "import":
		runLexiconImport(args[1:])
	case "lookup":
		runLexiconLookup(args[1:])
	default:
		printLexiconUsage()
		os.Exit(1)
	}
}

func printLexiconUsage() {
	fmt.Println("Usage: predictimed lexicon <import|lookup> [flags]")
	fmt.Println("  predictimed lexicon import [-force] [wordnet-dict-dir]  Build the lexicon from WordNet data files")
	fmt.Println("  predictimed lexicon lookup <term>                       Show the senses of a term")
}

func runLexiconImport(args []string) {
	fs := flag.NewFlagSet("lexicon import", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	force := fs.Bool("force", false, "replace an existing lexicon")
	_ = fs.Parse(argsReorder(args))

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	dictDir := cfg.Simplifier.WordNetDir
	if fs.NArg() > 0 {
		dictDir = fs.Arg(0)
	}
	if dictDir == "" {
		fmt.Fprintln(os.Stderr, "WordNet dict directory required (argument or simplifier.wordnet_dir)")
		os.Exit(1)
	}

	path := cfg.Simplifier.LexiconPath
	if _, err := os.Stat(path); err == nil {
		if !*force {
			fmt.Fprintf(os.Stderr, "Lexicon already exists at %s; use -force to rebuild\n", path)
			os.Exit(1)
		}
		if err := os.RemoveAll(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove lexicon: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lex, err := lexicon.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create lexicon: %v\n", err)
		os.Exit(1)
	}
	defer lex.Close()
	logger.Info("importing WordNet", zap.String("dict_dir", dictDir), zap.String("lexicon", path))
	stats, err := lexicon.ImportWordNet(ctx, lex, dictDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d synsets (%d senses, %d exceptions) into %s\n", stats.Synsets, stats.Senses, stats.Exceptions, path)
}

func runLexiconLookup(args []string) {
	fs := flag.NewFlagSet("lexicon lookup", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(args))

	term := joinArgs(fs.Args())
	if term == "" {
		printLexiconUsage()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	lex, err := lexicon.Open(cfg.Simplifier.LexiconPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open lexicon: %v\n", err)
		os.Exit(1)
	}
	defer lex.Close()

	senses, err := lex.Senses(context.Background(), term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
		os.Exit(1)
	}

	var suggestions []lexicon.Suggestion
	if len(senses) == 0 {
		counts, err := lex.LemmaCounts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
		suggestions = lexicon.NewSuggester(counts).Suggest(term)
	}

	if format == cli.OutputJSON {
		out := struct {
			Term        string               `json:"term"`
			Senses      []lexicon.Sense      `json:"senses"`
			Suggestions []lexicon.Suggestion `json:"suggestions,omitempty"`
		}{Term: term, Senses: senses, Suggestions: suggestions}
		if out.Senses == nil {
			out.Senses = []lexicon.Sense{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	writeSenses(os.Stdout, term, senses, suggestions)
}

func writeSenses(w io.Writer, term string, senses []lexicon.Sense, suggestions []lexicon.Suggestion) {
	if len(senses) == 0 {
		fmt.Fprintf(w, "No senses found for %q.\n", term)
		if len(suggestions) > 0 {
			names := make([]string, len(suggestions))
			for i, s := range suggestions {
				names[i] = s.Lemma
			}
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(names, ", "))
		}
		return
	}
	for i, s := range senses {
		medical := ""
		if isMedicalCategory(s.Lexname) {
			medical = " [medical]"
		}
		fmt.Fprintf(w, "%d. %s (%s, %s)%s\n   %s\n", i+1, s.Lemma, s.POS, s.Lexname, medical, s.Definition)
	}
}

func isMedicalCategory(lexname string) bool {
	for _, cat := range simplify.MedicalCategories {
		if strings.Contains(lexname, cat) {
			return true
		}
	}
	return false
}

type indexStatus struct {
	Path     string              `json:"path"`
	Ready    bool                `json:"ready"`
	Error    string              `json:"error,omitempty"`
	Manifest *retrieval.Manifest `json:"manifest,omitempty"`
}

type lexiconStatus struct {
	Path  string `json:"path"`
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
	Terms uint64 `json:"terms,omitempty"`
}

type statusResponse struct {
	Index          indexStatus   `json:"index"`
	Lexicon        lexiconStatus `json:"lexicon"`
	Generator      string        `json:"generator"`
	Embedding      string        `json:"embedding"`
	DiskUsageBytes *int64        `json:"disk_usage_bytes,omitempty"`
}

func collectStatus(cfg *config.Config) statusResponse {
	st := statusResponse{
		Index:     indexStatus{Path: cfg.Index.Path},
		Lexicon:   lexiconStatus{Path: cfg.Simplifier.LexiconPath},
		Generator: cfg.Generator.Provider + "/" + cfg.Generator.Model,
		Embedding: cfg.Embedding.Provider + "/" + cfg.Embedding.Model,
	}
	if idx, err := retrieval.Open(cfg.Index.Path); err != nil {
		st.Index.Error = err.Error()
	} else {
		m := idx.Manifest()
		st.Index.Ready = true
		st.Index.Manifest = &m
		_ = idx.Close()
	}
	if lex, err := lexicon.Open(cfg.Simplifier.LexiconPath); err != nil {
		st.Lexicon.Error = err.Error()
	} else {
		st.Lexicon.Ready = true
		if n, err := lex.Count(); err == nil {
			st.Lexicon.Terms = n
		}
		_ = lex.Close()
	}
	if n, err := storage.DiskUsageBytes(cfg.Index.Path, cfg.Simplifier.LexiconPath); err == nil {
		st.DiskUsageBytes = &n
	}
	return st
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, logger := setup(*configPath, false)
	defer logger.Sync()

	st := collectStatus(cfg)
	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatus(os.Stdout, st)
}

func writeStatus(w io.Writer, st statusResponse) {
	fmt.Fprintf(w, "index:      %s\n", st.Index.Path)
	if st.Index.Ready {
		cli.WriteManifest(w, st.Index.Manifest)
	} else {
		fmt.Fprintf(w, "  not ready: %s\n", st.Index.Error)
	}
	fmt.Fprintf(w, "\nlexicon:    %s\n", st.Lexicon.Path)
	if st.Lexicon.Ready {
		fmt.Fprintf(w, "Senses:     %d\n", st.Lexicon.Terms)
	} else {
		fmt.Fprintf(w, "  not ready: %s\n", st.Lexicon.Error)
	}
	fmt.Fprintf(w, "\ngenerator:  %s\n", st.Generator)
	fmt.Fprintf(w, "embedding:  %s\n", st.Embedding)
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk usage: %s\n", cli.FormatBytes(*st.DiskUsageBytes))
	}
}

func runModels() {
	fmt.Println("Generator models (groq):")
	for _, m := range llm.GeneratorModels {
		fmt.Printf("  %s\n", m)
	}
	fmt.Println("\nEmbedding models (huggingface):")
	for _, m := range llm.EmbeddingModels {
		fmt.Printf("  %-40s %d dims\n", m.Name, m.Dimensions)
	}
}

func printUsage() {
	fmt.Println(`predictimed - medical question answering and text simplification

Usage:
  predictimed server [-service answer|simplify|all]  Start the HTTP services
  predictimed index [-dataset file] [-force] [-watch] Build the similarity index from condition records
  predictimed ask <question>                         Answer one question
  predictimed chat                                   Interactive question console
  predictimed simplify [text]                        Annotate medical terms (stdin when no text)
  predictimed lexicon import [dict-dir]              Build the lexicon from WordNet
  predictimed lexicon lookup <term>                  Show the senses of a term
  predictimed documents [-id id] [-offset n] [-limit n] List indexed documents or show one
  predictimed status                                 Show index and lexicon status
  predictimed models                                 List known generator and embedding models
  predictimed version                                Show version
  predictimed help                                   Show this help

Every command accepts -config <path>. Without it, ./config.yaml and then
/usr/local/etc/predictimed/config.yaml are tried; defaults apply otherwise.`)
}
