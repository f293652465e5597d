package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fedutinova/tlexport/internal/config"
	"github.com/fedutinova/tlexport/internal/csvsink"
	"github.com/fedutinova/tlexport/internal/export"
	"github.com/fedutinova/tlexport/internal/models"
	"github.com/fedutinova/tlexport/internal/redis"
	"github.com/fedutinova/tlexport/internal/storage"
	"github.com/fedutinova/tlexport/internal/testlink"
	"github.com/fedutinova/tlexport/internal/ui"
)

// presignTTL is how long a published S3 link stays valid.
const presignTTL = 24 * time.Hour

// Deps are the seams the command needs; tests replace Dial.
type Deps struct {
	LoadConfig func() config.Config
	Dial       func(cfg config.Config) (testlink.API, func() error, error)
	Stdout     io.Writer
	Stderr     io.Writer
}

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		Dial: func(cfg config.Config) (testlink.API, func() error, error) {
			c, err := testlink.NewClient(cfg.ServerURL, cfg.DevKey, cfg.RequestTimeout)
			if err != nil {
				return nil, nil, err
			}
			return c, c.Close, nil
		},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type flags struct {
	project      string
	output       string
	fields       string
	customFields string
	progress     bool
	verbose      bool
}

// NewRootCmd builds the tlexport command. With no flags it exports the
// configured project unconditionally.
func NewRootCmd(deps Deps) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "tlexport",
		Short: "Export TestLink test cases to CSV",
		Long: `tlexport reads every test case of a TestLink project over the XML-RPC API
and appends them to a CSV file that Zephyr can import. Multi-step test
cases become one row per step.

The server is configured with TESTLINK_API_PYTHON_SERVER_URL and
TESTLINK_API_PYTHON_DEVKEY.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(deps.Stderr, f.verbose, f.progress)

			cfg := deps.LoadConfig()
			applyFlags(cmd, &cfg, f)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), deps, cfg, f.progress)
		},
	}

	cmd.Flags().StringVarP(&f.project, "project", "p", "", "TestLink project name (env: TESTLINK_PROJECT)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "CSV file to append to (env: EXPORT_OUTPUT)")
	cmd.Flags().StringVar(&f.fields, "fields", "", "Comma separated test case fields (env: TESTLINK_TESTCASE_FIELDS)")
	cmd.Flags().StringVar(&f.customFields, "custom-fields", "", "Comma separated custom fields (env: TESTLINK_CUSTOM_FIELDS)")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Show a progress bar; per test case log lines are hidden unless --verbose")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	if cmd.Flags().Changed("project") {
		cfg.Project = f.project
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = f.output
	}
	if cmd.Flags().Changed("fields") {
		cfg.Fields = config.SplitList(f.fields)
	}
	if cmd.Flags().Changed("custom-fields") {
		cfg.CustomFields = config.SplitList(f.customFields)
	}
}

func run(ctx context.Context, deps Deps, cfg config.Config, showProgress bool) error {
	schema, err := export.NewSchema(cfg.Fields, cfg.CustomFields)
	if err != nil {
		return err
	}

	if cfg.RedisURL != "" {
		release, err := acquireLock(ctx, cfg)
		if err != nil {
			return err
		}
		defer release()
	}

	api, closeAPI, err := deps.Dial(cfg)
	if err != nil {
		return err
	}
	if closeAPI != nil {
		defer closeAPI()
	}

	opts := []export.Option{
		export.WithTotal(func(_ models.Project, total int) {
			fmt.Fprintf(deps.Stdout, "Project %s. Total test cases in the project are: %d\n", cfg.Project, total)
		}),
	}
	if showProgress {
		opts = append(opts, export.WithProgress(ui.NewProgressBar(deps.Stderr)))
	}

	fmt.Fprintf(deps.Stdout, "Project %s. Exporting to %s\n", cfg.Project, cfg.Output)
	sum, err := export.NewExporter(api, csvsink.New(cfg.Output), schema, cfg.Project, opts...).Run(ctx)
	if err != nil {
		return err
	}
	ui.Summary(deps.Stdout, cfg.Project, sum.Exported, sum.Rows, sum.IgnoredFields)

	return publish(ctx, deps.Stdout, cfg)
}

func acquireLock(ctx context.Context, cfg config.Config) (func(), error) {
	svc, err := redis.New(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	name, err := filepath.Abs(cfg.Output)
	if err != nil {
		name = cfg.Output
	}
	lock, err := svc.AcquireLock(ctx, name, cfg.LockTTL)
	if err != nil {
		svc.Close()
		return nil, err
	}
	slog.Debug("export lock acquired", "key", lock.Key(), "ttl", cfg.LockTTL)

	return func() {
		if err := svc.ReleaseLock(context.Background(), lock); err != nil {
			slog.Warn("failed to release export lock", "key", lock.Key(), "error", err)
		}
		svc.Close()
	}, nil
}

func publish(ctx context.Context, w io.Writer, cfg config.Config) error {
	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	slog.Debug("publishing export", "storage", storage.GetStorageType(cfg))

	res, err := storage.Publish(ctx, store, cfg.Output)
	if err != nil {
		return fmt.Errorf("publish export: %w", err)
	}

	url, err := store.GetPresignedURL(ctx, res.Key, presignTTL)
	if err != nil {
		slog.Warn("failed to presign export url", "key", res.Key, "error", err)
		url = res.URL
	}
	fmt.Fprintf(w, "Published: %s\n", url)
	return nil
}

func setupLogging(w io.Writer, verbose, quiet bool) {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Execute runs tlexport and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd(defaultDeps())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("export failed", "err", err)
		return 1
	}
	return 0
}
