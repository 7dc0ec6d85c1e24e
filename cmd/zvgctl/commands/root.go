package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"zvgcli/internal/config"
	"zvgcli/internal/contacts"
	"zvgcli/internal/infrastructure"
	"zvgcli/internal/portal"
	"zvgcli/internal/services"
	"zvgcli/pkg/contracts"
)

var (
	verbose bool

	cfg        *config.Config
	logger     *slog.Logger
	store      contacts.Store
	searchSvc  *services.SearchService
	exportSvc  *services.ExportService
	historySvc *services.ContactService
)

// Execute runs the zvgctl root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.ContextWithTraceID(ctx)

	root := &cobra.Command{
		Use:     "zvgctl",
		Short:   "Search and export German foreclosure auctions from the terminal",
		Version: contracts.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			// Stdout carries command output; logs go to the file unless
			// asked for.
			logCfg := cfg.Logging
			if !verbose {
				logCfg.Output = "file"
			}
			if logCfg.FilePath != "" && !filepath.IsAbs(logCfg.FilePath) {
				logCfg.FilePath = filepath.Join(cfg.Paths.ExecutableDir, logCfg.FilePath)
			}
			logger, err = infrastructure.InitializeLogger(logCfg)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}

			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			store, err = openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open contact store: %w", err)
			}

			client := portal.NewClient(portal.ClientOptions{
				BaseURL:           cfg.Portal.BaseURL,
				UserAgent:         cfg.Portal.UserAgent,
				Timeout:           cfg.Portal.Timeout,
				RequestsPerSecond: cfg.Portal.RequestsPerSecond,
				Logger:            logger,
			})
			cache := portal.NewCache(cfg.Portal.CacheTTL)

			// No hub and no metrics here; progress events and instruments
			// only exist in the server.
			searchSvc = services.NewSearchService(client, cache, store, nil, nil, logger)
			exportSvc = services.NewExportService(store, nil, nil, logger)
			historySvc = services.NewContactService(store, logger)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to the console as well as the log file")

	root.AddCommand(searchCmd(), exportCmd(), historyCmd())

	err := root.ExecuteContext(ctx)
	if store != nil {
		_ = store.Close()
	}
	return err
}

// openStore builds the history store selected by the contacts backend
// setting, mirroring the server wiring. The redis backend is verified with
// a ping so a bad address fails before the first command touches it.
func openStore(ctx context.Context, cfg *config.Config) (contacts.Store, error) {
	switch cfg.Contacts.Backend {
	case "memory":
		return contacts.NewMemoryStore(), nil
	case "file":
		return contacts.NewFileStore(cfg.ContactsFilePath()), nil
	case "sqlite":
		return contacts.NewSQLiteStore(ctx, cfg.ContactsSQLitePath())
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Contacts.Redis.Addr,
			Password: cfg.Contacts.Redis.Password,
			DB:       cfg.Contacts.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Contacts.Redis.Addr, err)
		}
		return contacts.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown contacts backend %q", cfg.Contacts.Backend)
	}
}
