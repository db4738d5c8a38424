package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/miniledger/internal/client"
	"github.com/efreitasn/miniledger/internal/domain"
)

var serverURL = flag.String("server", envOr("LEDGER_URL", "http://localhost:8080"), "Base URL of the miniledger server")

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newClient() *client.Client {
	return client.New(*serverURL, nil)
}

// fail reports err on stderr and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// --- Stocks Command ---

type stocksCmd struct{}

func (*stocksCmd) Name() string     { return "stocks" }
func (*stocksCmd) Synopsis() string { return "list the stock catalog" }
func (*stocksCmd) Usage() string {
	return `stocks

  Lists every stock with its current price.
`
}
func (*stocksCmd) SetFlags(*flag.FlagSet) {}

func (*stocksCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stocks, err := newClient().ListStocks(ctx)
	if err != nil {
		return fail(err)
	}
	for _, s := range stocks {
		fmt.Fprintf(stdout, "%d\t%s\t%s\n", s.StockID, s.Name, domain.FormatUSD(s.Price))
	}
	return subcommands.ExitSuccess
}

// --- User Command ---

type userCmd struct {
	userID int64
}

func (*userCmd) Name() string     { return "user" }
func (*userCmd) Synopsis() string { return "show a user's balance and holdings" }
func (*userCmd) Usage() string {
	return `user -u <user id>

  Shows the cash balance and every holding of a user.
`
}
func (c *userCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.userID, "u", 0, "User id")
}

func (c *userCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.userID <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	u, err := newClient().GetUser(ctx, c.userID)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "User %d balance %s\n", u.UserID, domain.FormatUSD(u.Balance))
	for _, h := range u.Holdings {
		fmt.Fprintf(stdout, "  stock %d: %s\n", h.StockID, h.Quantity)
	}
	return subcommands.ExitSuccess
}

// --- Portfolio Command ---

type portfolioCmd struct {
	userID int64
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "value a user's holdings at current prices" }
func (*portfolioCmd) Usage() string {
	return `portfolio -u <user id>

  Prints one line per holding and the total market value.
`
}
func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.userID, "u", 0, "User id")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.userID <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	p, err := newClient().GetPortfolio(ctx, c.userID)
	if err != nil {
		return fail(err)
	}
	for _, line := range p.Report {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintf(stdout, "Total %s, cash %s\n", domain.FormatUSD(p.Total), domain.FormatUSD(p.Balance))
	return subcommands.ExitSuccess
}

// --- Trades Command ---

type tradesCmd struct {
	userID int64
	side   string
	page   int
	limit  int
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "list a user's trades, newest first" }
func (*tradesCmd) Usage() string {
	return `trades -u <user id> [-side buy|sell] [-page n] [-limit n]

  Lists the trade journal of a user.
`
}
func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.userID, "u", 0, "User id")
	f.StringVar(&c.side, "side", "", "Only list trades of this side")
	f.IntVar(&c.page, "page", 1, "Page number")
	f.IntVar(&c.limit, "limit", 20, "Trades per page")
}

func (c *tradesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.userID <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	tp, err := newClient().ListTrades(ctx, c.userID, c.side, c.page, c.limit)
	if err != nil {
		return fail(err)
	}
	for _, t := range tp.Trades {
		fmt.Fprintf(stdout, "%s\t%s\t%d\t%s @ %s\t%s\n",
			t.ExecutedAt.Format("2006-01-02 15:04:05"), t.Side, t.StockID,
			t.Quantity, domain.FormatUSD(t.Price), domain.FormatUSD(t.Amount))
	}
	fmt.Fprintf(stdout, "page %d, %d of %d trades\n", tp.Page, len(tp.Trades), tp.Total)
	return subcommands.ExitSuccess
}

// --- Buy and Sell Commands ---

type tradeFlags struct {
	userID   int64
	stockID  int64
	quantity string
}

func (c *tradeFlags) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.userID, "u", 0, "User id")
	f.Int64Var(&c.stockID, "s", 0, "Stock id")
	f.StringVar(&c.quantity, "q", "", "Number of units, fractional allowed")
}

// parse validates the flags, returning ok=false on a usage error.
func (c *tradeFlags) parse() (decimal.Decimal, bool) {
	if c.userID <= 0 || c.stockID <= 0 || c.quantity == "" {
		return decimal.Zero, false
	}
	q, err := decimal.NewFromString(c.quantity)
	if err != nil {
		return decimal.Zero, false
	}
	return q, true
}

func printTrade(t *client.Trade) {
	fmt.Fprintf(stdout, "%s %s of stock %d for %s, balance %s, holding %s\n",
		t.Side, t.Quantity, t.StockID, domain.FormatUSD(t.Amount), domain.FormatUSD(t.Balance), t.Holding)
}

type buyCmd struct{ tradeFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy units of a stock at the current price" }
func (*buyCmd) Usage() string {
	return `buy -u <user id> -s <stock id> -q <quantity>

  Debits quantity times the current price from the user's balance.
`
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, ok := c.parse()
	if !ok {
		f.Usage()
		return subcommands.ExitUsageError
	}
	t, err := newClient().Buy(ctx, c.userID, c.stockID, q)
	if err != nil {
		return fail(err)
	}
	printTrade(t)
	return subcommands.ExitSuccess
}

type sellCmd struct{ tradeFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell units of a stock at the current price" }
func (*sellCmd) Usage() string {
	return `sell -u <user id> -s <stock id> -q <quantity>

  Credits quantity times the current price to the user's balance.
`
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, ok := c.parse()
	if !ok {
		f.Usage()
		return subcommands.ExitUsageError
	}
	t, err := newClient().Sell(ctx, c.userID, c.stockID, q)
	if err != nil {
		return fail(err)
	}
	printTrade(t)
	return subcommands.ExitSuccess
}
