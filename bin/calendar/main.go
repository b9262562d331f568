package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/stan0424/calendar-app/internal/profile"
	"github.com/stan0424/calendar-app/internal/version"
	"github.com/stan0424/calendar-app/server"
	"github.com/stan0424/calendar-app/store"
	"github.com/stan0424/calendar-app/store/db"
)

const greetingBanner = `
日曆行程服務 calendar-app %s
`

var rootCmd = &cobra.Command{
	Use:   "calendar",
	Short: "An airport-transfer scheduling service with an AI assistant",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			InstanceURL: viper.GetString("instance-url"),
			Version:     version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("invalid profile: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		printGreetings(instanceProfile)

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Start(gCtx)
		})
		g.Go(func() error {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sig:
				slog.Info("shutdown signal received")
			case <-gCtx.Done():
			}
			s.Shutdown(context.Background())
			cancel()
			return nil
		})

		return g.Wait()
	},
}

func printGreetings(p *profile.Profile) {
	fmt.Printf(greetingBanner, p.Version)
	fmt.Printf("mode=%s driver=%s addr=%s:%d data=%s\n", p.Mode, p.Driver, p.Addr, p.Port, p.Data)
	if !p.IsAIEnabled() {
		slog.Warn("AI assistant disabled: no provider API key configured")
	}
	if !p.IsFlightEnabled() {
		slog.Warn("flight lookups disabled: no AeroAPI key configured")
	}
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("driver", "sqlite")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your calendar instance")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("calendar")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
