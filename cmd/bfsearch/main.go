package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gabriel/bigfinish-metadata/internal/config"
	"github.com/gabriel/bigfinish-metadata/internal/connectors/native/bigfinish"
	"github.com/gabriel/bigfinish-metadata/internal/connectors/profile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cliOptions struct {
	profilePath string
	stripTitle  bool
	verbose     bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:          "bfsearch",
		Short:        "Query BigFinish release metadata from the command line",
		Long:         "Runs the same search and detail extraction as the API and prints the JSON result.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.profilePath, "profile", "", "Site profile YAML override (defaults to SITE_PROFILE_PATH, then the built-in profile)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log extraction warnings to stderr")

	root.AddCommand(newSearchCommand(opts), newDetailCommand(opts))
	return root
}

func newSearchCommand(opts *cliOptions) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search releases and enrich every candidate from its detail page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := buildConnector(cmd, opts)
			if err != nil {
				return err
			}

			matches, err := connector.Search(cmd.Context(), args[0], author)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"matches": matches})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "Author hint, logged but not used for filtering")
	cmd.Flags().BoolVar(&opts.stripTitle, "strip-title", false, "Drop everything up to the first colon in result titles")
	return cmd
}

func newDetailCommand(opts *cliOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "detail <url>",
		Short: "Extract metadata from a single release page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			connector, err := buildConnector(cmd, opts)
			if err != nil {
				return err
			}

			record, err := connector.Detail(cmd.Context(), args[0], query)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Story title to look for among the bundled stories")
	return cmd
}

func buildConnector(cmd *cobra.Command, opts *cliOptions) (*bigfinish.Connector, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	profilePath := opts.profilePath
	if profilePath == "" {
		profilePath = cfg.SiteProfilePath
	}
	siteProfile, err := profile.Load(profilePath)
	if err != nil {
		return nil, fmt.Errorf("load site profile: %w", err)
	}

	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	fetcher := bigfinish.NewHTTPFetcher(&http.Client{Timeout: cfg.HTTPTimeout})
	return bigfinish.NewConnector(siteProfile, fetcher, bigfinish.Options{
		StripTitle:     opts.stripTitle || cfg.StripTitle,
		DetailTimeout:  cfg.DetailTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
		Logger:         logger,
	}), nil
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
