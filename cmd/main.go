// Command libra runs bilateral balance feedback sessions. It reads per-side
// force readings from a simulated or device-backed sensor, classifies balance
// quality on every tick and accumulates a per-exercise history.
//
// Usage:
//
//	libra --config config.yaml
//	libra --setup (interactive wizard, then starts with the generated config)
//	libra (uses CLI arguments)
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/libra/config"
	"github.com/vadiminshakov/libra/internal"
	"github.com/vadiminshakov/libra/internal/setup"
	"github.com/vadiminshakov/libra/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	balancedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	slightStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	significantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--setup" || arg == "-setup" {
			if err := setup.RunTUI(); err != nil {
				log.Fatal(err)
			}
			// continue with the config the wizard just wrote
			os.Args = []string{os.Args[0], "--config", "config.gen.yaml"}
			break
		}
	}

	configs, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	var webStarted bool
	for _, conf := range configs {
		session, err := internal.NewWorkoutSession(conf, logger, nil)
		if err != nil {
			logger.Fatal("failed to create workout session", zap.Error(err))
		}

		g.Go(func() error {
			return session.Run(ctx)
		})
		g.Go(func() error {
			return printFeedback(ctx, session)
		})

		// one listener for the whole process, fed by the first session that wants it
		if conf.WebAddr != "" && !webStarted {
			webStarted = true
			server := web.NewServer(conf.WebAddr, session.History(), session.Feed(), session.Thresholds())
			g.Go(func() error {
				return server.Start(ctx)
			})
			logger.Info("web dashboard started", zap.String("addr", conf.WebAddr))
		}

		logger.Info("session started", zap.String("exercise", conf.Exercise), zap.String("session_id", session.ID))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err.Error())
	}
}

// printFeedback renders live feedback lines until the context is cancelled.
func printFeedback(ctx context.Context, session *internal.WorkoutSession) error {
	feed := session.Feed().Subscribe()
	defer session.Feed().Unsubscribe(feed)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-feed:
			style := balancedStyle
			switch event.Tier {
			case "slight_imbalance":
				style = slightStyle
			case "significant_imbalance":
				style = significantStyle
			}
			fmt.Printf("%s  %s  L %s%%  R %s%%  %s\n",
				event.Timestamp.Format("15:04:05"),
				event.Exercise,
				event.Left,
				event.Right,
				style.Render(event.Message))
		}
	}
}
