package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kindlingnews/kindling/internal/aggregate"
	"github.com/kindlingnews/kindling/internal/config"
	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/digest"
	"github.com/kindlingnews/kindling/internal/fetchtext"
	"github.com/kindlingnews/kindling/internal/history"
	"github.com/kindlingnews/kindling/internal/insights"
	"github.com/kindlingnews/kindling/internal/news"
	"github.com/kindlingnews/kindling/internal/recommend"
	"github.com/kindlingnews/kindling/internal/server"
	"github.com/kindlingnews/kindling/internal/summarize"
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
	Use:     "kindling",
	Short:   "Your daily dose of good news",
	Long:    "Kindling collects, filters, and personalizes positive news into a local daily feed.",
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
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("kindling", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/kindling/",
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
		fmt.Println("Edit it to configure feeds, API keys, and the summarization provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache and system status",
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

		fmt.Printf("Today: %s\n\n", history.DateOf(time.Now()))
		fmt.Println("Articles:")
		fmt.Printf("  Cached: %d\n", stats.TotalArticles)
		fmt.Printf("  With full text: %d\n", stats.WithContent)
		fmt.Printf("  With summary: %d\n", stats.WithSummary)
		fmt.Printf("  Liked: %d\n", stats.LikedArticles)
		fmt.Println("\nOutput:")
		fmt.Printf("  Digests: %d\n", stats.Digests)
		if stats.LatestCollected != "" {
			fmt.Printf("  Last collected: %s\n", stats.LatestCollected)
		}

		entries := openTracker().All()
		fmt.Println("\nReading:")
		fmt.Printf("  Articles read: %d\n", len(entries))
		return nil
	},
}

// --- collect command ---

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect articles from configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting good news from sources...")
		result := aggregate.New(cfg, db).Collect()
		printCollectResult(result)
		return nil
	},
}

func printCollectResult(result *aggregate.Result) {
	fmt.Println("\nCollection complete:")
	fmt.Printf("  Total found: %d\n", result.TotalFound)
	fmt.Printf("  New articles: %d\n", result.NewArticles)
	fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

	if len(result.Sources) > 0 {
		fmt.Println("\nArticles by source:")
		// Sort sources by count descending
		type kv struct {
			key string
			val int
		}
		var sorted []kv
		for k, v := range result.Sources {
			sorted = append(sorted, kv{k, v})
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
		for _, s := range sorted {
			fmt.Printf("  %s: %d\n", s.key, s.val)
		}
	}
}

// --- fetch command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch full text for cached articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Fetching article content...")
		result := fetchtext.NewContentFetcher(db, 0).FetchMissing()
		fmt.Printf("\nFetched: %d, failed: %d\n", result.Fetched, result.Failed)
		return nil
	},
}

// --- daily command ---

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's daily pick",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := db.GetArticles(0)
		if err != nil {
			return err
		}

		pick := news.DailyPick(articles)
		if pick == nil {
			fmt.Println("No articles cached. Run 'kindling collect' first.")
			return nil
		}

		fmt.Println("Today's pick:")
		fmt.Printf("  %s\n", pick.Title)
		fmt.Printf("  %s\n", pick.Source)
		if summary, err := db.GetArticleSummary(pick.ID); err == nil && summary != "" {
			fmt.Printf("\n%s\n", summary)
		} else if pick.Description != "" {
			fmt.Printf("\n%s\n", pick.Description)
		}
		fmt.Printf("\n%s\n", pick.URL)
		return nil
	},
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily pipeline: collect, fetch, summarize, digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()

		fmt.Println("Step 1/4: Collecting articles")
		collected := aggregate.New(cfg, db).Collect()
		fmt.Printf("  %d new, %d duplicates\n", collected.NewArticles, collected.Duplicates)

		fmt.Println("Step 2/4: Fetching content")
		fetched := fetchtext.NewContentFetcher(db, 0).FetchMissing()
		fmt.Printf("  %d fetched, %d failed\n", fetched.Fetched, fetched.Failed)

		provider := createProvider()

		fmt.Println("Step 3/4: Summarizing")
		if provider != nil {
			summarized := summarize.NewSummarizer(db, provider, cfg.Summarization.MaxTokens).
				SummarizeMissing(ctx, 0)
			fmt.Printf("  %d summarized, %d failed\n", summarized.Summarized, summarized.Failed)
		} else {
			fmt.Println("  Skipped: no provider available")
		}

		fmt.Println("Step 4/4: Composing digest")
		d, err := digest.NewBuilder(db, provider).
			BuildDaily(ctx, openTracker().All(), cfg.Recommendations.Limit)
		if err != nil {
			return fmt.Errorf("composing digest: %w", err)
		}
		fmt.Printf("  Digest ready for %s (%d articles)\n", d.Date, d.ArticleCount)

		fmt.Println("\nDone! Run 'kindling serve' to read today's good news.")
		return nil
	},
}

// --- read command ---

var readCmd = &cobra.Command{
	Use:   "read [article-id]",
	Short: "Mark an article as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		article, err := db.GetArticle(args[0])
		if err != nil {
			return err
		}
		if article == nil {
			return fmt.Errorf("article not found: %s", args[0])
		}

		tracker := openTracker()
		if err := tracker.TrackRead(article.ID, article.Title, article.Source, article.Categories); err != nil {
			log.Printf("History save failed: %v", err)
		}
		fmt.Printf("Marked as read: %s\n", article.Title)
		return nil
	},
}

// --- recommend command ---

var recommendLimit int

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show personalized recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := db.GetArticles(0)
		if err != nil {
			return err
		}

		limit := recommendLimit
		if limit == 0 {
			limit = cfg.Recommendations.Limit
		}

		scorer := recommend.NewScorer(openTracker().All(), time.Now())
		scores := scorer.Recommendations(articles, limit)

		if len(scores) == 0 {
			fmt.Println("Nothing to recommend. Run 'kindling collect' first.")
			return nil
		}

		fmt.Println("Recommended for you:")
		fmt.Println()
		for i, s := range scores {
			fmt.Printf("%2d. %s (%s)\n", i+1, s.Article.Title, s.Article.Source)
			for _, reason := range s.Reasons {
				fmt.Printf("      %s\n", reason)
			}
			fmt.Printf("      id: %s\n", s.Article.ID)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "Number of recommendations (default from config)")
}

// --- stats command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your reading insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker := openTracker()
		stats := insights.Compute(tracker.All(), time.Now())

		fmt.Println("Reading insights:")
		fmt.Printf("  Articles read: %d\n", stats.TotalArticlesRead)
		fmt.Printf("  Current streak: %d day(s)\n", stats.CurrentStreak)
		fmt.Printf("  Longest streak: %d day(s)\n", stats.LongestStreak)
		fmt.Printf("  This week: %d\n", stats.ArticlesThisWeek)
		fmt.Printf("  This month: %d\n", stats.ArticlesThisMonth)

		if len(stats.TopCategories) > 0 {
			fmt.Println("\nTop categories:")
			for _, c := range stats.TopCategories {
				fmt.Printf("  %s: %d\n", c.Category, c.Count)
			}
		}

		fmt.Println("\nBadges:")
		for _, b := range stats.Badges {
			mark := " "
			if b.Earned {
				mark = "*"
			}
			fmt.Printf("  [%s] %s: %s\n", mark, b.Name, b.Description)
		}

		fmt.Println("\nLast 7 days:")
		calendar := tracker.Calendar(7)
		for i := 6; i >= 0; i-- {
			date := history.DateOf(time.Now().AddDate(0, 0, -i))
			fmt.Printf("  %s: %d\n", date, calendar[date])
		}
		return nil
	},
}

// --- digest command ---

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Compose and print today's digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		d, err := digest.NewBuilder(db, createProvider()).
			BuildDaily(context.Background(), openTracker().All(), cfg.Recommendations.Limit)
		if err != nil {
			return fmt.Errorf("composing digest: %w", err)
		}

		fmt.Println(d.BodyMarkdown)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, openTracker(), cfg.Recommendations.Limit, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "kindling.db")
	return database.Open(dbPath)
}

func openTracker() *history.Tracker {
	path := filepath.Join(cfg.GetDataDir(), "history.json")
	return history.NewTracker(history.NewFileStore(path))
}

func createProvider() summarize.Provider {
	s := cfg.Summarization
	return summarize.CreateProvider(s.Provider, s.Model, s.OllamaURL, s.OpenAIModel, s.APIKeyEnv)
}
