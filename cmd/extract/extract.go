// Package extract implements the extract command, which resolves one
// sitemap from the command line and writes the URLs as CSV, XLSX or a table.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/masoudtahsiri/sitemap-extractor/cmd/common"
	infraconfig "github.com/masoudtahsiri/sitemap-extractor/infrastructure/config"
	"github.com/masoudtahsiri/sitemap-extractor/infrastructure/logger"
	"github.com/masoudtahsiri/sitemap-extractor/internal/export"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
	FormatTable = "table"
)

// envPrefix maps flags to environment variables, e.g. --max-depth to
// SITEMAP_MAX_DEPTH.
const envPrefix = "SITEMAP"

var (
	//nolint:staticcheck // message is shown verbatim to users
	ErrNoURLs = errors.New("No URLs found in sitemap")

	errUnknownFormat = errors.New("unknown format")
	errXLSXNeedsFile = errors.New("xlsx output requires --output")
)

// Command returns the extract command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <sitemap-url>",
		Short: "Extract page URLs from a sitemap",
		Long: `Fetch the sitemap at <sitemap-url>, follow sitemap indexes within the
configured bounds and write the sorted, deduplicated page URLs.

Flags can also be set through SITEMAP_* environment variables, for example
SITEMAP_MAX_DEPTH=2 or SITEMAP_FORMAT=table.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	f := cmd.Flags()
	f.StringP("format", "f", FormatCSV, "output format: csv, xlsx or table")
	f.StringP("output", "o", "", "write to this file instead of stdout")
	f.Int("max-sitemaps", sitemap.DefaultMaxSitemaps, "maximum sitemap documents fetched")
	f.Int("max-depth", sitemap.DefaultMaxDepth, "maximum sitemap index nesting; 0 fetches the root only")
	f.Int("concurrency", sitemap.DefaultConcurrency, "maximum concurrent fetches")
	f.Duration("fetch-timeout", sitemap.DefaultFetchTimeout, "timeout for each sitemap fetch")
	f.String("user-agent", sitemap.DefaultUserAgent, "User-Agent header sent with each fetch")
	f.Bool("report", false, "print a per-sitemap report to stderr")

	return cmd
}

// options are the resolved settings of one extract run.
type options struct {
	format    string
	output    string
	report    bool
	userAgent string
	limits    sitemap.Limits
}

func run(cmd *cobra.Command, args []string) error {
	rootURL, err := sitemap.ValidateRootURL(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	deps, err := common.NewCommandDeps(configPath, debug, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = deps.Logger.Sync() }()

	opts, err := resolveOptions(cmd, deps)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := deps.Config.Resolver
	rc.UserAgent = opts.userAgent
	resolver := common.NewResolver(rc, opts.limits, deps.Logger, nil)

	res, err := resolver.Resolve(ctx, rootURL)
	if opts.report && res != nil {
		export.WriteReport(cmd.ErrOrStderr(), res)
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", rootURL, err)
	}
	if len(res.URLs) == 0 {
		return ErrNoURLs
	}

	if err := writeOutput(cmd, opts, res.URLs); err != nil {
		return err
	}

	deps.Logger.Debug("Extraction written",
		logger.String("format", opts.format),
		logger.String("output", opts.output),
		logger.Int("url_count", len(res.URLs)),
	)
	fmt.Fprintf(cmd.ErrOrStderr(), "Extracted %d URLs from %d sitemaps\n", len(res.URLs), res.Visited)
	return nil
}

// resolveOptions merges flags, SITEMAP_* environment variables and the
// config file, in that order of precedence.
func resolveOptions(cmd *cobra.Command, deps common.CommandDeps) (options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rc := deps.Config.Resolver
	v.SetDefault("max-sitemaps", rc.MaxSitemaps)
	v.SetDefault("max-depth", rc.MaxDepth)
	v.SetDefault("concurrency", rc.Concurrency)
	v.SetDefault("fetch-timeout", rc.FetchTimeout)
	v.SetDefault("user-agent", rc.UserAgent)

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return options{}, fmt.Errorf("bind flags: %w", err)
	}

	opts := options{
		format:    strings.ToLower(v.GetString("format")),
		output:    v.GetString("output"),
		report:    v.GetBool("report"),
		userAgent: v.GetString("user-agent"),
		limits: sitemap.Limits{
			MaxSitemaps:  v.GetInt("max-sitemaps"),
			MaxDepth:     v.GetInt("max-depth"),
			Concurrency:  v.GetInt("concurrency"),
			FetchTimeout: v.GetDuration("fetch-timeout"),
		},
	}

	return opts, opts.validate()
}

func (o options) validate() error {
	switch o.format {
	case FormatCSV, FormatTable:
	case FormatXLSX:
		if o.output == "" || o.output == "-" {
			return errXLSXNeedsFile
		}
	default:
		return fmt.Errorf("%w %q: want csv, xlsx or table", errUnknownFormat, o.format)
	}

	if err := infraconfig.ValidatePositive("max-sitemaps", o.limits.MaxSitemaps); err != nil {
		return err
	}
	if err := infraconfig.ValidateNonNegative("max-depth", o.limits.MaxDepth); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("concurrency", o.limits.Concurrency); err != nil {
		return err
	}
	if o.limits.FetchTimeout <= 0 {
		return &infraconfig.ValidationError{Field: "fetch-timeout", Message: "must be positive"}
	}
	return nil
}

func writeOutput(cmd *cobra.Command, opts options, urls []string) (err error) {
	var w io.Writer = cmd.OutOrStdout()

	if opts.output != "" && opts.output != "-" {
		f, createErr := os.Create(opts.output)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		w = f
	}

	switch opts.format {
	case FormatXLSX:
		return export.WriteXLSX(w, urls)
	case FormatTable:
		export.WriteTable(w, urls)
		return nil
	default:
		return export.WriteCSV(w, urls)
	}
}
