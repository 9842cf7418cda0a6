package cmd

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/mediaresolver/config"
	"github.com/truemediaorg/mediaresolver/database"
	"github.com/truemediaorg/mediaresolver/platform"
	"github.com/truemediaorg/mediaresolver/provider"
	"github.com/truemediaorg/mediaresolver/resolver"
	"github.com/truemediaorg/mediaresolver/service"
)

// secretsSource creates the Secrets Manager client on first use, so setups
// without any secret paths never need AWS credentials.
type secretsSource struct {
	client service.SecretGetter
}

func (s *secretsSource) get(ctx context.Context) service.SecretGetter {
	if s.client == nil {
		client, err := service.NewSecretsManagerClient(ctx)
		if err != nil {
			log.Fatalf("error creating secrets manager client: %v", err)
		}
		s.client = client
	}
	return s.client
}

func loadRegistry(ctx context.Context, cfg config.Config, secrets *secretsSource) *provider.Registry {
	specs := provider.DefaultSpecs()
	if cfg.Resolver.ProvidersFile != "" {
		var err error
		specs, err = provider.LoadFile(cfg.Resolver.ProvidersFile)
		if err != nil {
			log.Fatalf("error loading providers: %v", err)
		}
		log.WithField("file", cfg.Resolver.ProvidersFile).Info("using provider table from file")
	}

	if cfg.Resolver.ProviderSecretPath != "" {
		creds, err := service.ProviderCredentials(ctx, secrets.get(ctx), cfg.Resolver.ProviderSecretPath)
		if err != nil {
			log.Fatalf("error loading provider credentials: %v", err)
		}
		specs = provider.WithCredentials(specs, creds)
	}

	registry, err := provider.NewRegistry(specs)
	if err != nil {
		log.Fatalf("invalid provider table: %v", err)
	}
	log.WithField("providers", registry.Names()).Infof("%d providers registered", registry.Len())
	return registry
}

// connectDatabase returns nil when no database is configured.
func connectDatabase(ctx context.Context, cfg config.Config, secrets *secretsSource) *database.Database {
	if !cfg.DatabaseEnabled() {
		return nil
	}

	databaseURL := cfg.PostgresURL
	if databaseURL == "" {
		connString, err := service.PostgresConnectionString(ctx, secrets.get(ctx), cfg.PostgresSecretPath)
		if err != nil {
			log.Fatal(err.Error())
		}
		databaseURL = connString
	}

	db := database.NewDatabase(databaseURL)
	if err := db.Connect(ctx); err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Disconnect()
		log.Fatalf("error migrating database: %v", err)
	}
	return db
}

func newResolver(cfg config.Config, registry *provider.Registry, db *database.Database) *resolver.Resolver {
	unknownPolicy := platform.UnknownPlatformAllowUniversal
	if cfg.Resolver.UnknownPlatformPolicy != "" {
		var err error
		unknownPolicy, err = platform.ParseUnknownPlatformPolicy(cfg.Resolver.UnknownPlatformPolicy)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	exhaustionPolicy, err := resolver.ParseExhaustionPolicy(cfg.Resolver.ExhaustionPolicy)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// A nil *Database must not become a non-nil interface
	var recorder resolver.OutcomeRecorder
	if db != nil {
		recorder = db
	}

	r, err := resolver.NewResolver(
		platform.NewCanonicalizer(platform.DefaultShorteners, cfg.Resolver.CanonicalizeTimeout),
		registry,
		provider.NewExecutor(),
		provider.DefaultValidator(),
		recorder,
		resolver.Options{
			UnknownPlatformPolicy: unknownPolicy,
			ExhaustionPolicy:      exhaustionPolicy,
			ProviderBudget:        cfg.Resolver.ProviderTimeout,
			Deadline:              cfg.Resolver.Deadline,
		},
	)
	if err != nil {
		log.Fatalf("error creating resolver: %v", err)
	}
	log.WithField("unknownPlatformPolicy", unknownPolicy).WithField("exhaustionPolicy", exhaustionPolicy).Info("resolver ready")
	return r
}
