package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/bridge-api/internal/config"
	"github.com/deppfellow/bridge-api/internal/database"
	"github.com/deppfellow/bridge-api/internal/handler"
	"github.com/deppfellow/bridge-api/internal/lib/utils"
	"github.com/deppfellow/bridge-api/internal/logger"
	"github.com/deppfellow/bridge-api/internal/repository"
	"github.com/deppfellow/bridge-api/internal/router"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/deppfellow/bridge-api/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var listQueries bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "bridgeapi",
		Short:         "Bridge API - bridge survey record service",
		Long:          `Bridge API serves bridge survey records from PostgreSQL over HTTP.`,
		RunE:          serve,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (default)",
		RunE:  serve,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "check-schema",
		Short: "Verify the bridge table against the column registry",
		Args:  cobra.NoArgs,
		RunE:  checkSchema,
	})

	queryCmd := &cobra.Command{
		Use:   "query <name> [args...]",
		Short: "Run an allow-listed named query and print the rows as JSON",
		RunE:  runQuery,
	}
	queryCmd.Flags().BoolVarP(&listQueries, "list", "l", false, "List the available queries")
	rootCmd.AddCommand(queryCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bridgeapi %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	repos := repository.NewRepositories(srv)
	srv.Monitor.Register("schema", repos.Bridge.VerifySchema)

	if cfg.Database.VerifySchema {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.QueryTimeout)*time.Second)
		err := repos.Bridge.VerifySchema(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("bridge table does not match the column registry")
			_ = srv.Shutdown(context.Background())
			return err
		}
	}

	services, err := service.NewService(srv, repos)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("could not create services: %w", err)
	}

	handlers, err := handler.NewHandlers(srv, services)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("could not create handlers: %w", err)
	}
	r := router.NewRouter(srv, handlers)
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err = <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("server forced to shutdown")
		err = errors.Join(err, shutdownErr)
	}

	log.Info().Msg("server exited")
	return err
}

// openRepository connects to the database without the HTTP stack. Logs go
// to stderr so stdout carries only command output.
func openRepository() (*repository.BridgeRepository, *database.Database, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.NewLogger(cfg.Observability).Output(zerolog.ConsoleWriter{Out: os.Stderr})

	db, err := database.New(cfg, &log, nil, database.WithTraceOutput(os.Stderr))
	if err != nil {
		return nil, nil, nil, err
	}

	repos := repository.NewRepositories(&server.Server{Config: cfg, Logger: &log, DB: db})
	return repos.Bridge, db, cfg, nil
}

func checkSchema(cmd *cobra.Command, args []string) error {
	repo, db, cfg, err := openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := repo.VerifySchema(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s.%s matches the column registry\n", cfg.Database.Schema, cfg.Database.Table)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	if listQueries {
		for _, q := range repository.NamedQueries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", q.Usage(), q.Description)
		}
		return nil
	}

	if len(args) == 0 {
		return errors.New("query name required, see --list")
	}

	repo, db, _, err := openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := repo.FetchCustom(cmd.Context(), args[0], args[1:]...)
	if err != nil {
		return err
	}

	return utils.PrintJSON(cmd.OutOrStdout(), result)
}
