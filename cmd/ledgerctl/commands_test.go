package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"

	"github.com/efreitasn/miniledger/internal/engine"
	"github.com/efreitasn/miniledger/internal/handler"
	"github.com/efreitasn/miniledger/internal/service"
	"github.com/efreitasn/miniledger/internal/store"
)

// startServer points the commands at a seeded in-process server and captures
// their output.
func startServer(t *testing.T) *bytes.Buffer {
	t.Helper()
	ss := store.NewStockStore()
	us := store.NewUserStore()
	ts := store.NewTradeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userSvc := service.NewUserService(us, ss)
	if err := service.NewSeeder(ss, userSvc, service.DefaultSeed()).SeedInitialState(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	webhookSvc := service.NewWebhookService(store.NewWebhookStore(), us, time.Second, logger)
	tradeSvc := service.NewTradeService(engine.NewTrader(ss, us, ts), us, ts, webhookSvc, logger)
	srv := httptest.NewServer(handler.NewRouter(service.NewStockService(ss), userSvc, tradeSvc, webhookSvc, nil, logger))
	t.Cleanup(srv.Close)

	prevURL, prevOut := *serverURL, stdout
	var out bytes.Buffer
	*serverURL, stdout = srv.URL, &out
	t.Cleanup(func() { *serverURL, stdout = prevURL, prevOut })
	return &out
}

// run parses args into cmd's flags and executes it.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	f.SetOutput(io.Discard)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd.Execute(context.Background(), f)
}

func TestStocksCmd(t *testing.T) {
	out := startServer(t)

	if got := run(t, &stocksCmd{}); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v", got)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "2\tB\t") {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestBuyCmd_ThenPortfolio(t *testing.T) {
	out := startServer(t)

	if got := run(t, &buyCmd{}, "-u", "1", "-s", "2", "-q", "10"); got != subcommands.ExitSuccess {
		t.Fatalf("buy exit = %v", got)
	}
	if !strings.HasPrefix(out.String(), "buy 10 of stock 2") {
		t.Errorf("buy output = %q", out.String())
	}

	out.Reset()
	if got := run(t, &portfolioCmd{}, "-u", "1"); got != subcommands.ExitSuccess {
		t.Fatalf("portfolio exit = %v", got)
	}
	if !strings.Contains(out.String(), "Total ") {
		t.Errorf("portfolio output = %q", out.String())
	}
}

func TestTradeCmds_UsageErrors(t *testing.T) {
	startServer(t)

	tests := []struct {
		name string
		cmd  subcommands.Command
		args []string
	}{
		{"buy without user", &buyCmd{}, []string{"-s", "1", "-q", "1"}},
		{"sell bad quantity", &sellCmd{}, []string{"-u", "1", "-s", "1", "-q", "lots"}},
		{"portfolio without user", &portfolioCmd{}, nil},
		{"trades without user", &tradesCmd{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.cmd, tt.args...); got != subcommands.ExitUsageError {
				t.Errorf("exit = %v, want usage error", got)
			}
		})
	}
}

func TestSellCmd_Rejected(t *testing.T) {
	startServer(t)

	if got := run(t, &sellCmd{}, "-u", "1", "-s", "1", "-q", "1000"); got != subcommands.ExitFailure {
		t.Errorf("exit = %v, want failure", got)
	}
}
