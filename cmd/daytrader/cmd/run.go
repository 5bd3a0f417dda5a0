package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/api"
	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/broker/das"
	"github.com/rustyeddy/daytrader/broker/sim"
	"github.com/rustyeddy/daytrader/config"
	"github.com/rustyeddy/daytrader/controller"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/profiles"
	"github.com/rustyeddy/daytrader/state"
	"github.com/rustyeddy/daytrader/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading daemon",
	Long: `Start the trading daemon: the monitor loop and the HTTP control API.

The daemon recovers its state from the snapshot file on startup, so a
restart mid-position resumes guarding the position.

Example:
  daytrader run --config config.yaml`,
	RunE: runDaemon,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	jrnl, err := journal.NewFile(cfg.Storage.AuditLog)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer jrnl.Close()

	profs, err := profiles.NewSQLite(cfg.Storage.ProfilesDB)
	if err != nil {
		return fmt.Errorf("open profiles db: %w", err)
	}
	defer profs.Close()

	st, err := state.Open(state.Options{
		Path:           cfg.Storage.StateFile,
		Journal:        jrnl,
		Profiles:       profs,
		DefaultProfile: cfg.Strategy.DefaultProfile,
		InitialEquity:  cfg.Account.InitialEquity,
	})
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}

	var brk broker.Broker
	switch cfg.Account.Mode {
	case config.ModeLive:
		brk = das.New(das.Config{BaseURL: cfg.DAS.BaseURL, Token: cfg.DAS.Token})
	default:
		brk = sim.NewEngine(cfg.Account.InitialEquity)
	}

	rules := strategies.Default()
	if cfg.Strategy.RulesFile != "" {
		rules, err = strategies.LoadRules(cfg.Strategy.RulesFile)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
	}

	interval, err := cfg.Strategy.Interval()
	if err != nil {
		return fmt.Errorf("monitor interval: %w", err)
	}

	feed := market.NewSimFeed(time.Now().UnixNano())
	ctrl := controller.New(controller.Options{
		State:    st,
		Broker:   brk,
		Feed:     feed,
		Profiles: profs,
		Rules:    rules,
		Interval: interval,
	})

	srv := api.NewServer(api.Options{
		Addr:       cfg.API.Addr,
		Controller: ctrl,
		State:      st,
		Journal:    jrnl,
		Profiles:   profs,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("mode", cfg.Account.Mode).
		Str("broker", brk.Name()).
		Str("rules", rules.Name).
		Dur("interval", interval).
		Msg("daytrader starting")

	go ctrl.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		stop()
		log.Error().Err(err).Msg("control API failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API shutdown incomplete")
	}
	if err := st.Save(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	log.Info().Msg("daytrader stopped")
	return nil
}
