package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/truemediaorg/mediaresolver/config"
	"github.com/truemediaorg/mediaresolver/service"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Runs the media resolver HTTP API",
	Long:  `Runs the media resolver HTTP API`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := config.FromEnvfile()
		cfg.ConfigureLogging()

		/*
			Graceful shutdown is possible with errgroup + signal.NotifyContext
			NotifyContext returns a context that will close on OS signals to terminate the process
			errgroup uses that context, and also closes it in case a goroutine errors out
		*/
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer done()
		g, gCtx := errgroup.WithContext(ctx)

		secrets := &secretsSource{}
		registry := loadRegistry(gCtx, cfg, secrets)

		db := connectDatabase(gCtx, cfg, secrets)
		var pinger service.Pinger
		if db != nil {
			defer db.Disconnect()
			pinger = db
			log.Info("resolution audit log enabled")
		}

		api := service.NewAPI(cfg.Port, newResolver(cfg, registry, db), pinger)

		g.Go(func() error {
			log.WithField("addr", api.Server.Addr).Info("API server listening")
			if err := api.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		// ...and shut down the server when the process needs to terminate
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return api.Server.Shutdown(shutdownCtx)
		})

		err := g.Wait()
		if err != nil {
			log.Errorf("caught error: %v", err)
		}
	},
}
