package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/services"
)

const usage = `usage: ledger <command> [flags]

commands:
  import <file.csv>    import transactions from a CSV file and remove it
  create               create one transaction (-title -value -type -category)
  balance              print income, outcome and total
  list                 print every transaction followed by the balance
  delete <id>          delete a transaction
`

var errUsage = errors.New("invalid usage")

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()
	ctx = applog.WithContext(ctx, logger)

	b, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}

	err = run(ctx, b, os.Args[1:], os.Stdout)
	if cerr := b.Close(); cerr != nil {
		logger.Warn("Failed to close backend", "error", cerr)
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		logger.ErrorContext(ctx, "Command failed", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, b *backend.Backend, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "import":
		return runImport(ctx, b, args, out)
	case "create":
		return runCreate(ctx, b, args, out)
	case "balance":
		bal, err := b.Ledger.Balance(ctx)
		if err != nil {
			return err
		}
		printBalance(out, bal)
		return nil
	case "list":
		st, err := b.Ledger.Statement(ctx)
		if err != nil {
			return err
		}
		printTransactions(out, st.Transactions)
		printBalance(out, st.Balance)
		return nil
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("%w: delete takes exactly one id", errUsage)
		}
		if err := b.Ledger.DeleteTransaction(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", args[0])
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runImport(ctx context.Context, b *backend.Backend, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import takes exactly one file", errUsage)
	}
	res, err := b.Import.Import(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d transactions, %d new categories, %d rows skipped\n",
		len(res.Transactions), len(res.CreatedCategories), res.Skipped)
	if !res.SourceRemoved {
		fmt.Fprintf(out, "warning: %s was not removed\n", args[0])
	}
	return nil
}

func runCreate(ctx context.Context, b *backend.Backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "transaction title")
	value := fs.String("value", "", "non-negative amount, e.g. 12.50")
	typ := fs.String("type", "", "income or outcome")
	category := fs.String("category", "", "category title")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	amount, err := core.ParseMoney(*value)
	if err != nil {
		return err
	}
	tt, err := core.ParseTransactionType(*typ)
	if err != nil {
		return err
	}

	tx, err := b.Ledger.CreateTransaction(ctx, services.CreateTransactionRequest{
		Title:    *title,
		Value:    amount,
		Type:     tt,
		Category: *category,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s\n", tx.ID)
	return nil
}

func printTransactions(out io.Writer, txs []core.Transaction) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tVALUE\tCATEGORY\tCREATED")
	for _, tx := range txs {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Title
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Title, tx.Type, tx.Value, category, tx.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func printBalance(out io.Writer, bal core.Balance) {
	fmt.Fprintf(out, "income: %s\noutcome: %s\ntotal: %s\n", bal.Income, bal.Outcome, bal.Total)
}
