package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fosim_ticks_total", Help: "Price-feed steps advanced"},
		[]string{"symbol"},
	)
	TradesOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fosim_trades_opened_total", Help: "Trades appended to the book"},
		[]string{"symbol", "side"},
	)
	TradesClosed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fosim_trades_closed_total", Help: "Trades squared off"},
	)
	Equity = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "fosim_equity", Help: "Session balance plus open mark-to-market P&L"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, TradesOpened, TradesClosed, Equity)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
