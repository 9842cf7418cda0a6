package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/truemediaorg/mediaresolver/config"
	"golang.org/x/exp/maps"
)

var (
	historyLimit  int
	historyWindow time.Duration
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of recent resolutions to show")
	historyCmd.Flags().DurationVar(&historyWindow, "window", 24*time.Hour, "how far back to count provider wins")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows recent resolutions from the audit log",
	Long:  `Shows recent resolutions from the audit log and which providers have been answering`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()
		cfg.ConfigureLogging()

		ctx := context.Background()
		db := connectDatabase(ctx, cfg, &secretsSource{})
		if db == nil {
			log.Fatal("postgres not configured")
		}
		defer db.Disconnect()

		resolutions, err := db.RecentResolutions(ctx, historyLimit)
		if err != nil {
			log.Fatalf("error reading resolutions: %v", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RESOLVED\tPLATFORM\tOUTCOME\tPROVIDER\tURL")
		for _, r := range resolutions {
			provider := r.Provider
			if provider == "" {
				provider = strings.Join(r.TestedProviders, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Resolved.Local().Format(time.DateTime), r.Platform, r.Outcome, provider, r.OriginalURL)
		}
		w.Flush()

		wins, err := db.ProviderWins(ctx, time.Now().Add(-historyWindow))
		if err != nil {
			log.Fatalf("error counting provider wins: %v", err)
		}
		providers := rankProviders(wins)
		fmt.Printf("\nSuccessful resolutions in the last %s:\n", historyWindow)
		for _, name := range providers {
			fmt.Printf("  %s: %d\n", name, wins[name])
		}
	},
}

// rankProviders orders providers by wins, most first, with ties broken by name.
func rankProviders(wins map[string]int) []string {
	providers := maps.Keys(wins)
	sort.Slice(providers, func(i, j int) bool {
		if wins[providers[i]] != wins[providers[j]] {
			return wins[providers[i]] > wins[providers[j]]
		}
		return providers[i] < providers[j]
	})
	return providers
}
