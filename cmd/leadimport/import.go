package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/JonMunkholm/leaddesk/internal/driver"
	"github.com/JonMunkholm/leaddesk/internal/importer"
	"github.com/JonMunkholm/leaddesk/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newImportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <table> <file>",
		Short: "Import a CSV file into a table",
		Long: `Import a CSV file into a table, one chunk of rows per importer call.

With --server the chunks are posted to a running leaddesk server. With
--database-url they are written directly, using the same importer the
server runs. A file of "-" reads standard input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, v, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.String("server", "", "Base URL of a leaddesk server, e.g. http://localhost:8080")
	f.String("api-key", "", "API key sent as X-API-Key")
	f.String("database-url", "", "Import in-process into this postgres URL or SQLite path")
	f.Int("chunk-size", driver.DefaultChunkSize, "Data rows per importer call")
	f.Int("batch-size", 0, "Rows per database batch (0 uses the importer default)")
	f.Duration("interval", 0, "Minimum time between chunk calls")
	f.Duration("timeout", 2*time.Minute, "Per-request timeout with --server")
	f.Int("retries", driver.DefaultRetries, "Resends of a throttled (429) chunk with --server, honoring Retry-After")
	f.Bool("json", false, "Print the summary as JSON")
	cmd.MarkFlagsMutuallyExclusive("server", "database-url")
	return cmd
}

func runImport(cmd *cobra.Command, v *viper.Viper, tableArg, path string) error {
	table, ok := core.ParseTable(tableArg)
	if !ok {
		return fmt.Errorf("%w: %q (run 'leadimport tables' for the list)", core.ErrUnknownTable, tableArg)
	}

	payload, err := readPayload(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	imp, closeFn, err := openImporter(cmd, v)
	if err != nil {
		return err
	}
	defer closeFn()

	board := driver.NewBoard()
	board.Watch(func(s driver.Status) {
		if s.Table == table && s.State == driver.StateUploading {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: chunk %d/%d (%d%%) %d ok, %d failed\n",
				s.Table, s.Current, s.Total, s.Percent, s.Success, s.Failed)
		}
	})

	d := driver.New(imp, board, driver.Options{
		ChunkSize:   v.GetInt("chunk-size"),
		BatchSize:   v.GetInt("batch-size"),
		MinInterval: v.GetDuration("interval"),
	})

	ctx := core.ContextWithSource(cmd.Context(), "cli")
	sum, runErr := d.Run(ctx, table, payload)
	if errors.Is(runErr, driver.ErrNoRows) {
		return fmt.Errorf("%s: %w", path, runErr)
	}

	if err := printSummary(cmd.OutOrStdout(), sum, v.GetBool("json")); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if sum.State == driver.StateError {
		return errImportFailed
	}
	return nil
}

// openImporter picks the HTTP client or an in-process importer. The returned
// func releases whatever was opened.
func openImporter(cmd *cobra.Command, v *viper.Viper) (driver.Importer, func(), error) {
	server := strings.TrimSpace(v.GetString("server"))
	dbURL := strings.TrimSpace(v.GetString("database-url"))

	switch {
	case server != "" && dbURL != "":
		return nil, nil, errors.New("set only one of --server and --database-url")
	case server != "":
		c := driver.NewClient(server, v.GetString("api-key"), v.GetDuration("timeout"))
		c.SetRetries(v.GetInt("retries"))
		return c, func() {}, nil
	case dbURL != "":
		st, err := store.Open(cmd.Context(), store.Config{
			Driver:         store.DriverFromURL(dbURL),
			URL:            dbURL,
			MaxConns:       2,
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		return importer.New(st, importer.Options{}, nil), st.Close, nil
	default:
		return nil, nil, fmt.Errorf("one of --server or --database-url is required (or %s_SERVER / %s_DATABASE_URL)", envPrefix, envPrefix)
	}
}

func readPayload(stdin io.Reader, path string) (string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(core.NewPayloadReader(r))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(raw), nil
}

func printSummary(w io.Writer, sum driver.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintf(w, "%s: %s (%d chunks) %d imported, %d failed\n", sum.Table, sum.State, sum.Chunks, sum.Success, sum.Failed)
	for _, msg := range sum.Errors {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	return nil
}
