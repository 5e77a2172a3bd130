package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapedb/shapedb/internal/platform"
)

type RootOptions struct {
	DBPath     string
	ModelsPath string
	Backend    string
	Format     string
	JSONOutput bool
	LogLevel   string
	LogFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{
		DBPath:     envDefault("SHAPEDB_DB", ""),
		ModelsPath: envDefault("SHAPEDB_MODELS", ""),
		Backend:    envDefault("SHAPEDB_BACKEND", "file"),
		Format:     envDefault("SHAPEDB_FORMAT", "json"),
		LogLevel:   envDefault("SHAPEDB_LOG_LEVEL", "info"),
		LogFormat:  envDefault("SHAPEDB_LOG_FORMAT", "text"),
	}
	cmd := &cobra.Command{
		Use:           "shapedb",
		Short:         "ShapeDB CLI",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := platform.ConfigureLogger(opts.LogLevel, opts.LogFormat, cmd.ErrOrStderr())
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", opts.DBPath, "Path to the database snapshot")
	cmd.PersistentFlags().StringVar(&opts.ModelsPath, "models", opts.ModelsPath, "Path to a YAML model declaration file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", opts.Backend, "Persistence backend (file, sqlite, git)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", opts.Format, "Snapshot format (json, proto)")
	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")

	cmd.AddCommand(
		newInitCmd(opts),
		newStatusCmd(opts),
		newInspectCmd(opts),
		newVerifyCmd(opts),
		newModelsCmd(opts),
		newInsertCmd(opts),
		newUpdateCmd(opts),
		newPatchCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newChangesCmd(opts),
		newDumpCmd(opts),
		newPurgeCmd(opts),
		newSchemaCmd(opts),
	)

	return cmd
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
