package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"github.com/spiffcs/eipboard/config"
	"github.com/spiffcs/eipboard/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long: `Display the GitHub API quota left for GITHUB_TOKEN. A board run spends
roughly six core requests per open pull request.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Args:  cobra.NoArgs,
		RunE:  runRateLimitStatus,
	}
}

func runRateLimitStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	token, err := cfg.GetGitHubToken()
	if err != nil {
		return err
	}

	client, err := ghclient.NewClient(cmd.Context(), token)
	if err != nil {
		return err
	}
	limits, err := client.RateLimits(cmd.Context())
	if err != nil {
		return err
	}

	printRateLimits(cmd.OutOrStdout(), limits, time.Now())
	return nil
}

func printRateLimits(w io.Writer, limits *gh.RateLimits, now time.Time) {
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintln(w)

	rows := []struct {
		label string
		rate  *gh.Rate
	}{
		{"Core API:  ", limits.Core},
		{"Search API:", limits.Search},
		{"GraphQL:   ", limits.GraphQL},
	}
	for _, row := range rows {
		if row.rate == nil {
			continue
		}
		resetIn := max(row.rate.Reset.Time.Sub(now).Round(time.Second), 0)
		fmt.Fprintf(w, "%s %d/%d remaining (resets in %s)\n",
			row.label, row.rate.Remaining, row.rate.Limit, resetIn)
	}
}
