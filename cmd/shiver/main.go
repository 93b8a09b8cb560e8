// Command shiver imports story documents into typed collections.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cognicore/shiver/internal/logger"
	"github.com/cognicore/shiver/pkg/shiver"
	"github.com/cognicore/shiver/pkg/shiver/config"
	"github.com/cognicore/shiver/pkg/shiver/notify"
)

func main() {
	_ = godotenv.Load() // loads .env

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the flags shared by every command.
type app struct {
	configPath string
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "shiver",
		Short:         "Extract story content into typed collections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("SHIVER_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		a.importCmd(),
		a.searchCmd(),
		a.exportCmd(),
		a.restoreCmd(),
		a.templateCmd(),
		labelsCmd(),
	)
	return root
}

// open loads the configuration and builds a Shiver handle. Notifications go
// to the log and, formatted, to the command output.
func (a *app) open(ctx context.Context, cmd *cobra.Command) (*shiver.Shiver, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.log == nil {
		a.log = logger.NewWithOptions(logger.Options{
			Environment: cfg.Log.Environment,
			Level:       cfg.Log.Level,
			Output:      cmd.ErrOrStderr(),
		})
	}
	return shiver.Open(ctx, shiver.Options{
		Config:   cfg,
		Logger:   a.log,
		Notifier: notify.Tee(notify.NewLog(a.log), &printer{cmd: cmd}),
	})
}

// printer shows notifications to the operator.
type printer struct {
	cmd *cobra.Command
}

func (p *printer) Success(msg string) { fmt.Fprintf(p.cmd.OutOrStdout(), "ok: %s\n", msg) }
func (p *printer) Error(msg string)   { fmt.Fprintf(p.cmd.ErrOrStderr(), "error: %s\n", msg) }
