// Command leadimport uploads a delimited file into one of the dashboard
// tables, chunk by chunk, either through a running server or straight into
// the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/leaddesk/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "LEADIMPORT"

// errImportFailed marks a run that finished with failed rows or chunks.
// The summary is already printed, so main only sets the exit code.
var errImportFailed = errors.New("import finished with errors")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errImportFailed):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Every flag can also be set through a
// LEADIMPORT_* environment variable, e.g. LEADIMPORT_API_KEY.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "leadimport",
		Short:         "Bulk import CSV files into the lead dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			logging.SetupStderr(v.GetString("log-level"), "text")
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		newImportCmd(v),
		newTablesCmd(),
		newTemplateCmd(),
	)
	return root
}
