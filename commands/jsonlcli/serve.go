package jsonlcli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signatory-io/jsonlines/demo"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(e *env) *cobra.Command {
	cmd := cobra.Command{
		Use:   "serve",
		Short: "Serve the demo record feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := e.load(cmd)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("listen") {
				if e.conf.ListenAddress, err = f.GetString("listen"); err != nil {
					panic(err)
				}
			}
			if f.Changed("interval") {
				if e.conf.Demo.Interval, err = f.GetDuration("interval"); err != nil {
					panic(err)
				}
			}
			if f.Changed("count") {
				if e.conf.Demo.Count, err = f.GetInt("count"); err != nil {
					panic(err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := demo.Listen(e.conf.ListenAddress, &e.conf.Demo, log, e.conf.StreamOptions(log)...)
			if err != nil {
				return err
			}
			log.Infof("Listening on %s", svc.Addr())
			<-ctx.Done()

			log.Info("Shutting down...")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return svc.Shutdown(sctx)
		},
	}

	f := cmd.Flags()
	f.StringP("listen", "a", e.conf.ListenAddress, "Listen address: transport://[host]:port, where transport is [http, tcp]")
	f.Duration("interval", e.conf.Demo.Interval, "Delay between records")
	f.Int("count", e.conf.Demo.Count, "Number of records between the start and end records")

	return &cmd
}
