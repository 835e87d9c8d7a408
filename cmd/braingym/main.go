package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akvasu/braingym/internal/classify"
	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/daily"
	"github.com/akvasu/braingym/internal/database"
	"github.com/akvasu/braingym/internal/extract"
	"github.com/akvasu/braingym/internal/generate"
	"github.com/akvasu/braingym/internal/llm"
	"github.com/akvasu/braingym/internal/pipeline"
	"github.com/akvasu/braingym/internal/search"
	"github.com/akvasu/braingym/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "braingym",
	Short:   "Daily practice over your own captured insights",
	Long:    "Brain Gym turns chat exports and saved links into a searchable insight library, serves a few each day to respond to, and drafts content from what you have collected.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if strings.EqualFold(cfg.Logging.Level, "debug") {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(feedsCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("braingym", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/braingym/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds and the LLM provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and library status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Today: %s\n\n", database.GetToday())
		fmt.Println("Insights:")
		fmt.Printf("  Total: %d\n", stats.TotalInsights)
		fmt.Printf("  Pending: %d\n", stats.PendingInsights)
		fmt.Printf("  Responded: %d\n", stats.Responded)
		fmt.Printf("  Archived: %d\n", stats.Archived)
		fmt.Printf("  Duplicates: %d\n", stats.Duplicates)
		fmt.Printf("  In daily pool: %d\n", stats.UsefulForDaily)

		if len(stats.ByCategory) > 0 {
			fmt.Println("\nBy category:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range stats.ByCategory {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}

		fmt.Println("\nOutput:")
		fmt.Printf("  Responses written: %d\n", stats.Responses)
		fmt.Printf("  Draft sets generated: %d\n", stats.Generations)
		return nil
	},
}

// --- import command ---

var importCmd = &cobra.Command{
	Use:   "import <chat export file>...",
	Short: "Import chat export files: parse, classify, dedupe, extract",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)
		for _, path := range args {
			fmt.Printf("Importing %s\n", path)
			printSteps(pipe.ImportFile(path))
		}
		return nil
	},
}

// --- feeds command ---

var feedsDaysBack int

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Pull configured RSS/Atom feeds into the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Ingest.Feeds) == 0 {
			return fmt.Errorf("no feeds configured; add some under ingest.feeds in the config")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		printSteps(pipeline.New(cfg, db).ImportFeeds(feedsDaysBack))
		return nil
	},
}

func init() {
	feedsCmd.Flags().IntVar(&feedsDaysBack, "days-back", 7, "Only keep entries published in the last N days")
}

// --- extract command ---

var extractLimit int

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch article text for link insights still awaiting extraction",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		classifier := classify.New(cfg.Classifier)
		result := extract.New(db, classifier, 15*time.Second).ExtractPending(extractLimit)
		fmt.Printf("Extracted %d, %d failed\n", result.Extracted, result.Failed)
		return nil
	},
}

func init() {
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "Maximum insights to process (0 = all)")
}

// --- daily command ---

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's insights and respond, skip, or archive each",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		insights, err := daily.New(db, cfg.Daily).Select()
		if err != nil {
			return err
		}
		if len(insights) == 0 {
			fmt.Println("Nothing to review. Import a chat export to refill the pool.")
			return nil
		}

		reader := bufio.NewReader(os.Stdin)
		for i, in := range insights {
			fmt.Printf("\n[%d/%d] %s (quality %d", i+1, len(insights), in.Category, in.QualityScore)
			if len(in.Tags) > 0 {
				fmt.Printf(", %s", strings.Join(in.Tags, ", "))
			}
			fmt.Println(")")
			fmt.Println(indent(in.Content))
			if in.SourceURL != nil {
				fmt.Printf("  source: %s\n", *in.SourceURL)
			}

			if err := promptAction(reader, db, in.ID); err != nil {
				return err
			}
		}

		if err := db.MarkSessionComplete(database.GetToday()); err != nil {
			return err
		}
		fmt.Println("\nSession complete.")
		return nil
	},
}

// promptAction asks what to do with one insight and applies it.
func promptAction(reader *bufio.Reader, db *database.DB, insightID int64) error {
	for {
		fmt.Print("\n(r)espond, (s)kip, (a)rchive, (q)uit: ")
		answer, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		switch strings.TrimSpace(strings.ToLower(answer)) {
		case "r", "respond":
			fmt.Println("Your response (end with an empty line):")
			var lines []string
			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				line = strings.TrimRight(line, "\n")
				if line == "" {
					break
				}
				lines = append(lines, line)
			}
			text := strings.TrimSpace(strings.Join(lines, "\n"))
			if text == "" {
				fmt.Println("Empty response, skipping instead.")
				return db.SkipInsight(insightID)
			}
			_, err = db.AddResponse(insightID, text)
			return err
		case "s", "skip":
			return db.SkipInsight(insightID)
		case "a", "archive":
			return db.ArchiveInsight(insightID)
		case "q", "quit":
			return fmt.Errorf("session aborted")
		default:
			fmt.Println("Please answer r, s, a, or q.")
		}
	}
}

// --- search command ---

var searchCmd = &cobra.Command{
	Use:   "search <topic>",
	Short: "Search the library for insights relevant to a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		topic := strings.Join(args, " ")
		matches, err := rankTopic(db, topic)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Printf("No insights match %q.\n", topic)
			return nil
		}

		for i, m := range matches {
			fmt.Printf("\n%d. [%d] %s (score %.1f, quality %d)\n",
				i+1, m.Insight.ID, m.Insight.Category, m.Score, m.Insight.QualityScore)
			fmt.Println(indent(snippet(m.Insight.Content, 200)))
			if m.Insight.SourceURL != nil {
				fmt.Printf("  source: %s\n", *m.Insight.SourceURL)
			}
		}
		return nil
	},
}

// --- generate / regenerate commands ---

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Draft a LinkedIn post, Twitter thread, and blog outline for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		topic := strings.Join(args, " ")
		matches, err := rankTopic(db, topic)
		if err != nil {
			return err
		}

		orch := generate.New(db, llm.CreateProvider(cfg.Generation), cfg.Generation)
		gen, err := orch.Generate(context.Background(), topic, matches)
		if err != nil {
			return err
		}

		printGeneration(gen)
		return nil
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <generation id> [feedback]",
	Short: "Redo a draft set, steering with feedback",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid generation ID: %s", args[0])
		}
		feedback := "try a different angle"
		if len(args) > 1 {
			feedback = args[1]
		}

		orch := generate.New(db, llm.CreateProvider(cfg.Generation), cfg.Generation)
		gen, err := orch.Regenerate(context.Background(), id, feedback)
		if err != nil {
			return err
		}

		printGeneration(gen)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port > 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg, db, llm.CreateProvider(cfg.Generation), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// --- helpers ---

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(filepath.Join(dataDir, "braingym.db"))
}

func rankTopic(db *database.DB, topic string) ([]search.Match, error) {
	candidates, err := db.GetSearchCandidates()
	if err != nil {
		return nil, err
	}
	return search.New(cfg.Search).Rank(topic, candidates), nil
}

func printSteps(result *pipeline.Result) {
	for i, step := range result.Steps {
		fmt.Printf("Step %d/%d: %s\n", i+1, len(result.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}
}

func printGeneration(gen *database.Generation) {
	fmt.Printf("Draft set %d for %q (%d sources)\n", gen.ID, gen.Topic, len(gen.SourceIDs))

	fmt.Println("\n## LinkedIn post")
	fmt.Println(gen.LinkedInPost)

	if len(gen.TwitterThread) > 0 {
		fmt.Println("\n## Twitter thread")
		for _, tweet := range gen.TwitterThread {
			fmt.Println(tweet)
		}
	}

	if gen.BlogOutline != "" {
		fmt.Println("\n## Blog outline")
		fmt.Println(gen.BlogOutline)
	}
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

func snippet(text string, limit int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
