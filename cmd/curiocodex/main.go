package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/curiocodex/curiocodex/internal/profile"
	"github.com/curiocodex/curiocodex/server"
	"github.com/curiocodex/curiocodex/store"
	"github.com/curiocodex/curiocodex/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "curiocodex",
	Short: "A personal collection catalog with AI-assisted organization and discovery",
	RunE: func(_ *cobra.Command, _ []string) error {
		serverProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version,
		}
		serverProfile.FromEnv()
		if err := serverProfile.Validate(); err != nil {
			return errors.Wrap(err, "invalid configuration")
		}

		setupLogger(serverProfile)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(serverProfile)
		if err != nil {
			return errors.Wrap(err, "failed to create database driver")
		}
		storeInstance := store.New(dbDriver, serverProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return errors.Wrap(err, "failed to migrate database")
		}

		s, err := server.NewServer(ctx, serverProfile, storeInstance)
		if err != nil {
			return errors.Wrap(err, "failed to create server")
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case sig := <-stop:
			slog.Info("received signal, shutting down", "signal", sig.String())
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("server stopped unexpectedly", "error", err)
			}
		}

		cancel()
		s.Shutdown(context.Background())
		return nil
	},
}

var version = "dev"

func setupLogger(serverProfile *profile.Profile) {
	level := slog.LevelInfo
	if serverProfile.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("curiocodex")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
