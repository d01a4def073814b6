package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/bobmcallan/nepsewatch/internal/app"
	"github.com/bobmcallan/nepsewatch/internal/clients/merolagani"
	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/models"
	"github.com/bobmcallan/nepsewatch/internal/scraper"
	"github.com/bobmcallan/nepsewatch/internal/services/quote"
	"github.com/bobmcallan/nepsewatch/internal/storage/badger"
)

// configPath is set by the global -config flag.
var configPath string

var commands = []subcommands.Command{
	&quotesCmd{},
	&columnsCmd{},
	&importCmd{},
	&versionCmd{},
}

// loadConfig reads the config the server would use. The CLI logs to stderr at
// warn unless the config asks for something quieter.
func loadConfig() (*common.Config, *common.Logger, error) {
	cfg, err := common.LoadConfig(app.ResolveConfigPath(configPath))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Logging.Level != "disabled" {
		cfg.Logging.Level = "warn"
	}
	return cfg, common.NewLoggerFromConfig(cfg.Logging), nil
}

// newQuoteService builds the pipeline without opening the store, so the CLI
// can run next to a live server holding the database lock.
func newQuoteService(cfg *common.Config, logger *common.Logger) *quote.Service {
	client := merolagani.NewClientFromConfig(cfg.Market, logger)
	return quote.NewService(client, scraper.NewParserFromConfig(cfg.Market), logger)
}

// --- quotes ---

type quotesCmd struct {
	json   bool
	symbol string
}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "fetch the market page once and print the quotes" }
func (*quotesCmd) Usage() string {
	return `nepsewatch quotes [-json] [-symbol <SYM>]

  Runs a single fetch cycle and prints every quote, in page order.
`
}

func (c *quotesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the quotes as a JSON array")
	f.StringVar(&c.symbol, "symbol", "", "only print this symbol")
}

func (c *quotesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithTimeout(ctx, 2*cfg.Market.GetTimeout())
	defer cancel()

	quotes, err := newQuoteService(cfg, logger).GetQuotes(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.symbol != "" {
		quotes = slices.DeleteFunc(quotes, func(q models.Quote) bool { return q.Symbol != c.symbol })
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(quotes); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	writeQuoteTable(os.Stdout, quotes)
	return subcommands.ExitSuccess
}

func writeQuoteTable(out io.Writer, quotes []models.Quote) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tLTP\tPREV\tOPEN\tCHANGE\t%\t")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%+.2f\t%+.2f\t\n",
			q.Symbol, q.CurrentPrice, q.PreviousPrice, q.OpenPrice, q.Change(), q.ChangePct())
	}
	tw.Flush()
	fmt.Fprintf(out, "%d quotes\n", len(quotes))
}

// --- columns ---

type columnsCmd struct{}

func (*columnsCmd) Name() string     { return "columns" }
func (*columnsCmd) Synopsis() string { return "show how the live table headers resolve to quote fields" }
func (*columnsCmd) Usage() string {
	return `nepsewatch columns

  Fetches the market page and prints the header row together with the
  column each quote field resolved to (-1 when unresolved). Use it to tune
  [market.aliases] after a layout change.
`
}

func (*columnsCmd) SetFlags(*flag.FlagSet) {}

func (*columnsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithTimeout(ctx, 2*cfg.Market.GetTimeout())
	defer cancel()

	result, err := newQuoteService(cfg, logger).Scrape(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	writeColumns(os.Stdout, result)
	return subcommands.ExitSuccess
}

func writeColumns(out io.Writer, result *scraper.Result) {
	fmt.Fprintln(out, "Headers:")
	for i, h := range result.Headers {
		fmt.Fprintf(out, "  %2d  %q\n", i, h)
	}

	fmt.Fprintln(out, "Fields:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range scraper.Fields {
		idx := result.Columns.Index(f)
		header := "-"
		if idx >= 0 && idx < len(result.Headers) {
			header = result.Headers[idx]
		}
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", f, idx, header)
	}
	tw.Flush()
	fmt.Fprintf(out, "%d rows, %d skipped, %d quotes\n", result.RowsSeen, result.RowsSkipped, len(result.Quotes))
}

// --- import ---

type importCmd struct {
	dataPath string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "load portfolios from a JSON export into the store" }
func (*importCmd) Usage() string {
	return `nepsewatch import [-data <dir>] <file.json>

  Reads {"portfolios":[{"userId":...,"profiles":[...]}]} and stores every
  user not already present. The server must be stopped first.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataPath, "data", "", "storage directory (defaults to [storage] path)")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.dataPath != "" {
		cfg.Storage.Path = c.dataPath
	}

	store, err := badger.NewStoreFromConfig(cfg.Storage, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	imported, skipped, err := app.ImportPortfoliosFromFile(ctx, badger.NewPortfolioStorage(store, logger), logger, f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("imported %d, skipped %d\n", imported, skipped)
	return subcommands.ExitSuccess
}

// --- version ---

type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print version information" }
func (*versionCmd) Usage() string          { return "nepsewatch version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	fmt.Printf("nepsewatch %s\n", common.GetFullVersion())
	return subcommands.ExitSuccess
}
