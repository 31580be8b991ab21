package cmd

import (
	"context"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Yates-Labs/compujudge/internal/server"
)

var (
	listenAddr string
	debugHTTP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the grading API for the editor integration",
	Long: `Serve the grading API on a local address.

Routes:
  POST   /v1/grade                 grade a draft ({"path", "text", "inspiration", "target"})
  GET    /v1/results?path=<file>   last stored result for a draft
  DELETE /v1/results?confirm=true  delete every stored result
  GET    /v1/status                latest progress message
  GET    /metrics                  Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config: 127.0.0.1:8420)")
	serveCmd.Flags().BoolVar(&debugHTTP, "debug", false, "Run gin in debug mode")
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := openSession(nil)
	if err != nil {
		return err
	}

	cfg := server.DefaultConfig()
	cfg.Addr = sess.settings.ListenAddr
	if listenAddr != "" {
		cfg.Addr = listenAddr
	}
	cfg.Debug = debugHTTP
	cfg.Gatherer = prometheus.DefaultGatherer

	ctx, stop := signal.NotifyContext(context.Background(), stopSignals...)
	defer stop()

	return server.New(sess.grader, sess.store, cfg).Run(ctx)
}
