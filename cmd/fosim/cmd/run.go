package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marketsim/fosim/config"
	"github.com/marketsim/fosim/internal/metrics"
	"github.com/marketsim/fosim/journal"
	"github.com/marketsim/fosim/market"
	"github.com/marketsim/fosim/sim"
	"github.com/marketsim/fosim/yahoo"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live paper-trading simulation",
	Long: `Run a paper-trading simulation driven by a fixed-interval ticker.

The config file selects the price source (synthetic random walk or
historical data replayed from Yahoo Finance), the scripted trades to open,
and the journal sink. Without -f the built-in synthetic default is used.

Example:
  fosim run -f examples/configs/synthetic.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runLogLevel   string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger(runLogLevel)

	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	j, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	if cfg.Run.MetricsAddr != "" {
		metrics.Serve(cfg.Run.MetricsAddr)
		log.Info().Str("addr", cfg.Run.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session := sim.NewSession(cfg.Session.Balance, j)
	if err := buildFeeds(ctx, cfg, session, log); err != nil {
		return err
	}

	if err := openScriptedTrades(cfg, session, log); err != nil {
		return err
	}

	tickInterval, _ := cfg.TickInterval()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	log.Info().
		Float64("balance", session.Balance()).
		Int("ticks", cfg.Run.Ticks).
		Dur("interval", tickInterval).
		Msg("simulation started")

loop:
	for i := 0; i < cfg.Run.Ticks; i++ {
		select {
		case <-ctx.Done():
			log.Info().Msg("interrupted")
			break loop
		case <-ticker.C:
			if err := session.Tick(time.Now().UTC()); err != nil {
				return fmt.Errorf("tick: %w", err)
			}
			for _, symbol := range cfg.Session.Symbols {
				metrics.TicksTotal.WithLabelValues(symbol).Inc()
				spot, err := session.Spot(symbol)
				if err != nil {
					continue
				}
				log.Info().
					Str("symbol", symbol).
					Float64("spot", spot).
					Float64("pnl", session.Book().AggregatePnL(spot)).
					Float64("equity", session.Equity()).
					Msg("tick")
			}
			metrics.Equity.Set(session.Equity())
		}
	}

	// Curve extremes must be read while trades are still open; closed
	// trades value to zero.
	curves := curveExtremes(cfg, session)

	closed := session.SquareOff(time.Now().UTC())
	metrics.TradesClosed.Add(float64(closed))
	log.Info().Int("closed", closed).Float64("balance", session.Balance()).Msg("squared off")

	printSummary(cfg, session, curves)
	return nil
}

func newJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.MarksFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.NewMemory(), nil
	}
}

// buildFeeds registers one price series per configured symbol, either
// generated or fetched through the Yahoo provider.
func buildFeeds(ctx context.Context, cfg *config.Config, session *sim.Session, log zerolog.Logger) error {
	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	if cfg.Feed.Source == "synthetic" {
		for _, symbol := range cfg.Session.Symbols {
			series, err := market.Generate(market.WalkConfig{
				Start:      cfg.Feed.Start,
				Length:     cfg.Feed.Length,
				StepStdDev: cfg.Feed.StepStdDev,
				Floor:      cfg.Feed.Floor,
				Seed:       cfg.Feed.Seed,
			}, mode)
			if err != nil {
				return fmt.Errorf("generate series for %s: %w", symbol, err)
			}
			session.AddSeries(symbol, series)
			log.Debug().Str("symbol", symbol).Int("samples", series.Len()).Msg("synthetic series ready")
		}
		return nil
	}

	provider := yahoo.NewClient(cfg.Provider.BaseURL, log)
	lookback, _ := cfg.Lookback()
	interval, _ := cfg.Interval()

	for _, symbol := range cfg.Session.Symbols {
		series, err := session.LoadSeries(ctx, provider, symbol, lookback, interval, mode)
		if err != nil {
			return fmt.Errorf("load series for %s: %w", symbol, err)
		}
		log.Debug().Str("symbol", symbol).Int("samples", series.Len()).Msg("historical series ready")
	}
	return nil
}

func openScriptedTrades(cfg *config.Config, session *sim.Session, log zerolog.Logger) error {
	for i, tc := range cfg.Trades {
		instrument, err := sim.ParseInstrument(tc.Instrument)
		if err != nil {
			return fmt.Errorf("trades[%d]: %w", i, err)
		}
		side, err := sim.ParseSide(tc.Side)
		if err != nil {
			return fmt.Errorf("trades[%d]: %w", i, err)
		}

		var expiry time.Time
		if tc.ExpiryDays > 0 {
			expiry = time.Now().UTC().AddDate(0, 0, tc.ExpiryDays)
		}

		t, err := session.OpenTrade(sim.TradeRequest{
			Symbol:     tc.Symbol,
			Instrument: instrument,
			Side:       side,
			Quantity:   tc.Quantity,
			Strike:     tc.Strike,
			Premium:    tc.Premium,
			Expiry:     expiry,
		})
		if err != nil {
			return fmt.Errorf("trades[%d] %s %s %s: %w", i, tc.Side, tc.Instrument, tc.Symbol, err)
		}

		metrics.TradesOpened.WithLabelValues(t.Symbol, t.Side.String()).Inc()
		log.Info().
			Str("id", t.ID).
			Str("symbol", t.Symbol).
			Str("instrument", t.Instrument.String()).
			Str("side", t.Side.String()).
			Float64("quantity", t.Quantity).
			Float64("entry", t.EntryPrice).
			Msg("trade opened")
	}
	return nil
}

type extremes struct {
	lo, hi float64
	n      int
}

// curveExtremes walks the P&L-vs-time curve of each symbol's series.
func curveExtremes(cfg *config.Config, session *sim.Session) map[string]extremes {
	out := make(map[string]extremes)
	for _, symbol := range cfg.Session.Symbols {
		series, ok := session.Series(symbol)
		if !ok {
			continue
		}
		ext := extremes{lo: math.Inf(1), hi: math.Inf(-1), n: series.Len()}
		for _, pnl := range session.Book().PnLCurve(series) {
			ext.lo = math.Min(ext.lo, pnl)
			ext.hi = math.Max(ext.hi, pnl)
		}
		out[symbol] = ext
	}
	return out
}

func printSummary(cfg *config.Config, session *sim.Session, curves map[string]extremes) {
	fmt.Println("\nTrades:")
	for _, t := range session.Book().Trades() {
		// Valuate ignores closed trades, so mark a reopened copy at its exit.
		marked := *t
		marked.Open = true
		realized := sim.Valuate(marked, t.ClosePrice)
		fmt.Printf("  %s  %-4s %-6s %-10s qty=%.0f entry=%.2f exit=%.2f pl=%.2f\n",
			t.ID, t.Side, t.Instrument, t.Symbol, t.Quantity, t.EntryPrice, t.ClosePrice, realized)
	}

	fmt.Printf("\nFinal balance: %.2f\n", session.Balance())
	for _, symbol := range cfg.Session.Symbols {
		ext, ok := curves[symbol]
		if !ok {
			continue
		}
		fmt.Printf("%s: P&L curve over %d samples: min %.2f, max %.2f\n",
			symbol, ext.n, ext.lo, ext.hi)
	}
}
