package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wikifetch/wikifetch-go/wiki"
	"github.com/wikifetch/wikifetch-go/wikitext"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagSummary  bool
	flagVerbose  bool
	flagRaw      bool
	flagMarkdown bool
	flagConfig   string
)

var rootCmd = &cobra.Command{
	Use:   "wikifetch <base-url> <query>",
	Short: "Fetch an article from a MediaWiki site",
	Long: "Wikifetch locates the MediaWiki API for a wiki, resolves a free-text\n" +
		"query to an article, and prints it as plain text, Markdown, or raw wikitext.",
	Args:          cobra.ExactArgs(2),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&flagSummary, "summary", "s", false, "fetch only the first paragraph of a page")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "show verbose debug info")
	rootCmd.Flags().BoolVarP(&flagRaw, "raw", "r", false, "print raw wikitext instead of formatting (overrides -s and -m)")
	rootCmd.Flags().BoolVarP(&flagMarkdown, "markdown", "m", false, "show results in Markdown instead of plain text")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to a yaml config file")
	rootCmd.Flags().BoolP("version", "V", false, "print the version and exit")
	rootCmd.Version = version
}

func run(cmd *cobra.Command, args []string) error {
	baseURL, query := args[0], args[1]

	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}

	opts := []wiki.Option{wiki.WithLogger(log)}
	if cfg.UserAgent != "" {
		opts = append(opts, wiki.WithUserAgent(cfg.UserAgent))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, wiki.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	if len(cfg.APIPathCandidates) > 0 {
		opts = append(opts, wiki.WithAPIPathCandidates(cfg.APIPathCandidates))
	}

	client, err := wiki.NewClient(baseURL, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	ep, err := client.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolving endpoint for %s: %w", baseURL, err)
	}

	ref, err := client.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("locating page: %w", err)
	}

	article, err := client.Fetch(ctx, ref)
	if err != nil {
		return fmt.Errorf("fetching %q: %w", ref.Title, err)
	}

	mode := wikitext.ResolveMode(flagRaw, flagMarkdown)
	out := wikitext.Render(article.Wikitext, wikitext.Options{
		Mode:        mode,
		SummaryOnly: flagSummary,
		LinkBase:    ep.APIBaseURL,
		SourceURL:   article.CanonicalURL,
	})

	fmt.Fprintln(cmd.OutOrStdout(), out.Body)
	if mode == wikitext.ModeRaw && out.SourceURL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out.SourceURL)
	}
	return nil
}
