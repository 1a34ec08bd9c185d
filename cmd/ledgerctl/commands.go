package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"moneytracker/internal/cli"
	"moneytracker/internal/config"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/services"
)

var commands = []subcommands.Command{
	&addCmd{},
	&editCmd{},
	&rmCmd{},
	&lsCmd{},
	&totalsCmd{},
	&categoriesCmd{},
}

// openLedger opens the configured store. Logs go to stderr so that stdout
// carries only the report.
func openLedger(ctx context.Context) (*services.Ledger, *config.Config, func(), error) {
	cfg, err := cli.LoadConfig((*config.Config).Validate)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := log.New(log.Config{
		Level:     slog.LevelWarn,
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
	store, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	ledger := services.Open(ctx, store.Store, services.WithLogger(logger))
	return ledger, cfg, func() { _ = store.Close() }, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

// entryFlags are the fields shared by add and edit.
type entryFlags struct {
	kind     string
	amount   string
	category string
	note     string
}

func (e *entryFlags) register(f *flag.FlagSet) {
	f.StringVar(&e.kind, "k", "expense", "entry kind (income, expense)")
	f.StringVar(&e.amount, "a", "", "amount, a positive decimal such as 12.50")
	f.StringVar(&e.category, "c", "", "category, e.g. Food or Salary")
	f.StringVar(&e.note, "n", "", "optional free-text note")
}

func (e *entryFlags) input() (core.EntryInput, error) {
	kind, err := core.ParseKind(e.kind)
	if err != nil {
		return core.EntryInput{}, err
	}
	amount, err := core.ParseAmount(e.amount)
	if err != nil {
		return core.EntryInput{}, err
	}
	return core.EntryInput{Kind: kind, Amount: amount, Category: e.category, Note: e.note}, nil
}

func parseIDArg(f *flag.FlagSet) (int64, error) {
	if f.NArg() != 1 {
		return 0, errors.New("expected exactly one entry id")
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", f.Arg(0))
	}
	return id, nil
}

type addCmd struct{ entryFlags }

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new income or expense" }
func (*addCmd) Usage() string {
	return `ledgerctl add -k <kind> -a <amount> -c <category> [-n <note>]

  Records a new entry and prints it.
`
}
func (c *addCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.input()
	if err != nil {
		return fail(err)
	}
	ledger, cfg, closeFn, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	e, err := ledger.Create(ctx, in)
	if err != nil {
		return fail(err)
	}
	printMarkdown(entriesMarkdown([]core.Entry{e}, cfg.Currency))
	return subcommands.ExitSuccess
}

type editCmd struct{ entryFlags }

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "replace the fields of an existing entry" }
func (*editCmd) Usage() string {
	return `ledgerctl edit -k <kind> -a <amount> -c <category> [-n <note>] <id>

  Replaces kind, amount, category and note of the entry. Its id and
  timestamp are kept.
`
}
func (c *editCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := parseIDArg(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	in, err := c.input()
	if err != nil {
		return fail(err)
	}
	ledger, cfg, closeFn, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	e, err := ledger.Update(ctx, id, in)
	if err != nil {
		return fail(err)
	}
	printMarkdown(entriesMarkdown([]core.Entry{e}, cfg.Currency))
	return subcommands.ExitSuccess
}

type rmCmd struct{}

func (*rmCmd) Name() string             { return "rm" }
func (*rmCmd) Synopsis() string         { return "delete an entry" }
func (*rmCmd) Usage() string            { return "ledgerctl rm <id>\n" }
func (*rmCmd) SetFlags(_ *flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := parseIDArg(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	ledger, _, closeFn, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	removed, err := ledger.Delete(ctx, id)
	if err != nil {
		return fail(err)
	}
	if !removed {
		fmt.Fprintf(os.Stderr, "entry %d not found, nothing to delete\n", id)
	}
	return subcommands.ExitSuccess
}

type lsCmd struct {
	filter string
}

func (*lsCmd) Name() string     { return "ls" }
func (*lsCmd) Synopsis() string { return "list entries, newest first" }
func (*lsCmd) Usage() string {
	return `ledgerctl ls [-f all|income|expense]
`
}
func (c *lsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.filter, "f", "all", "show only entries of this kind (all, income, expense)")
}

func (c *lsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter, err := core.ParseFilter(c.filter)
	if err != nil {
		return fail(err)
	}
	ledger, cfg, closeFn, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	printMarkdown(entriesMarkdown(ledger.List(filter), cfg.Currency))
	return subcommands.ExitSuccess
}

type totalsCmd struct{}

func (*totalsCmd) Name() string             { return "totals" }
func (*totalsCmd) Synopsis() string         { return "show total income, total expense and balance" }
func (*totalsCmd) Usage() string            { return "ledgerctl totals\n" }
func (*totalsCmd) SetFlags(_ *flag.FlagSet) {}

func (*totalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, cfg, closeFn, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	printMarkdown(totalsMarkdown(ledger.Totals(), cfg.Currency))
	return subcommands.ExitSuccess
}

type categoriesCmd struct {
	kind string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list suggested categories" }
func (*categoriesCmd) Usage() string {
	return `ledgerctl categories [-k income|expense]
`
}
func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "k", "", "limit to one kind (income, expense)")
}

func (c *categoriesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kinds := []core.Kind{core.Income, core.Expense}
	if c.kind != "" {
		k, err := core.ParseKind(c.kind)
		if err != nil {
			return fail(err)
		}
		kinds = []core.Kind{k}
	}
	printMarkdown(categoriesMarkdown(kinds))
	return subcommands.ExitSuccess
}
