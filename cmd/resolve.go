package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/truemediaorg/mediaresolver/config"
	"github.com/truemediaorg/mediaresolver/responder"
)

var showFullResponse bool

func init() {
	resolveCmd.Flags().BoolVar(&showFullResponse, "full", false, "also print the full JSON response for each link")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve URL...",
	Short: "Resolves one or more links from the command line",
	Long: `Resolves each link with the configured providers and prints what was found.
Useful for checking which providers still work for a given platform.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnvfile()
		cfg.ConfigureLogging()

		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer done()

		secrets := &secretsSource{}
		registry := loadRegistry(ctx, cfg, secrets)
		db := connectDatabase(ctx, cfg, secrets)
		if db != nil {
			defer db.Disconnect()
		}
		r := newResolver(cfg, registry, db)

		failed := 0
		for i, rawURL := range args {
			if i > 0 {
				fmt.Println("---")
			}
			outcome := r.Resolve(ctx, rawURL)
			if !outcome.Succeeded() {
				failed++
			}
			fmt.Print(responder.Summarize(outcome))

			if showFullResponse {
				_, body := responder.Encode(outcome)
				encoded, err := json.MarshalIndent(body, "", "  ")
				if err != nil {
					log.Errorf("error encoding response: %v", err)
					continue
				}
				fmt.Fprintf(os.Stdout, "Full API Response:\n%s\n", encoded)
			}
		}

		if failed > 0 {
			cmd.SilenceUsage = true
			return fmt.Errorf("%d of %d links could not be resolved", failed, len(args))
		}
		return nil
	},
}
