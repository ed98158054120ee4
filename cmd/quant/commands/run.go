package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"QuantEngine/internal/api"
	"QuantEngine/internal/notifier"
	"QuantEngine/internal/scheduler"
)

var runOnStart bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the refresh scheduler, HTTP API and Telegram bot",
	Long: `Starts the engine: re-evaluates the universe on the refresh cron,
serves the HTTP API and, when telegram.bot_token and telegram.chat_id are set,
answers chat commands and announces selection changes.

Endpoints:
  GET  /health
  GET  /api/ranking
  POST /api/cycle
  GET  /api/cycles
  GET  /api/portfolio
  POST /api/portfolio/{gain|loss}
  POST /api/portfolio/reset
  GET  /api/risk`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOnStart, "run-on-start", true, "evaluate the universe immediately")
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Msg("quant engine starting")

	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	rec := newRecorder(cfg)
	defer rec.Close()

	sess := newSession(cfg)
	log.Info().Str("session_id", sess.ID).Msg("session created")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, col, cfg.Universe, sess, n, rec, cfg.Engine.MoveFactor)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := api.NewServer(cfg.HTTP.Addr, api.NewRouter(api.NewHandler(sess, sched, rec, cfg.Engine.MoveFactor)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
		log.Info().Msg("telegram polling started")
	}
	if runOnStart {
		g.Go(func() error {
			if _, err := sched.RunCycle(gctx); err != nil && !errors.Is(err, scheduler.ErrNothingScored) && gctx.Err() == nil {
				log.Error().Err(err).Msg("initial cycle")
			}
			return nil
		})
	}

	log.Info().Msg("quant engine is running, press Ctrl+C to stop")
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("quant engine stopped")
	return nil
}

