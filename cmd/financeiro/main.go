package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"financeiro/internal/amqp"
	"financeiro/internal/cli"
	"financeiro/internal/config"
	"financeiro/internal/core"
	"financeiro/internal/report"
	"financeiro/internal/services"
	"financeiro/internal/storage"
)

const usage = `Usage: financeiro [flags] <command> [args...]

Commands:
  add <text>               record an income or expense from free text
  meta <text>              register a savings goal ("name value [date]")
  del <entry-id>           delete an entry and reconcile the balance
  limite <category> <value>  set a monthly spending limit
  fixo <category> <value> <months>  schedule a fixed monthly expense
  resumo [YYYY-MM]         month summary (totals, categories, balance)
  metas                    list goals with progress
  saldo                    shared balance across all owners
  relatorios               list closed period reports
  fechar [YYYY-MM]         close a period now (default: current month)
  reset                    wipe everything recorded for this owner

Flags:
  -owner string   owner id (default "default")
  -name string    display name used as responsible party (default: owner id)
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	ownerFlag := flag.String("owner", "default", "owner id")
	nameFlag := flag.String("name", "", "display name used as responsible party")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ownerID := *ownerFlag
	callerName := *nameFlag
	if callerName == "" {
		callerName = ownerID
	}

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg.SQLiteDBPath)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		}
	}

	svc := services.NewLedgerService(store, amqpClient)
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := store.EnsureOwner(ctx, ownerID, callerName); err != nil {
		fatal(err)
	}
	if err := store.SeedDefaultMethods(ctx, ownerID); err != nil {
		fatal(err)
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "add":
		runAdd(ctx, svc, ownerID, callerName, strings.Join(rest, " "))
	case "meta":
		runMeta(ctx, svc, ownerID, strings.Join(rest, " "))
	case "del":
		runDelete(ctx, svc, ownerID, rest)
	case "limite":
		runLimit(ctx, svc, ownerID, rest)
	case "fixo":
		runFixed(ctx, svc, ownerID, rest)
	case "resumo":
		runSummary(ctx, svc, ownerID, rest)
	case "metas":
		runGoals(ctx, svc, ownerID)
	case "saldo":
		runSharedBalance(ctx, svc)
	case "relatorios":
		runReports(ctx, store, ownerID)
	case "fechar":
		runClose(ctx, cfg, store, svc, amqpClient, ownerID, rest)
	case "reset":
		if err := svc.Reset(ctx, ownerID); err != nil {
			fatal(err)
		}
		fmt.Printf("Dados de %s apagados.\n", ownerID)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runAdd(ctx context.Context, svc *services.LedgerService, ownerID, callerName, text string) {
	result, err := svc.InterpretCommand(ctx, ownerID, callerName, text)
	if err != nil {
		fatal(err)
	}
	if result.Goal != nil {
		printGoal(*result.Goal)
		return
	}

	e := result.Entry
	label := "Despesa"
	if e.Entry.Kind == core.Income {
		label = "Receita"
	}
	fmt.Printf("%s registrada: R$ %s (%s", label, e.Entry.Amount.String(), e.CategoryName)
	if e.Entry.Description != "" {
		fmt.Printf(", %s", e.Entry.Description)
	}
	fmt.Printf(") via %s\n", e.MethodName)
	fmt.Printf("Saldo atual: R$ %s\n", e.NewBalance.String())

	for _, ex := range result.Exceeded {
		fmt.Printf("Limite de %s estourado: gasto R$ %s de R$ %s (excesso R$ %s)\n",
			ex.Category, ex.Spent.String(), ex.Limit.String(), ex.Excess.String())
	}
}

func runMeta(ctx context.Context, svc *services.LedgerService, ownerID, text string) {
	if !strings.HasPrefix(strings.TrimSpace(text), "/meta") {
		text = "/meta " + text
	}
	goal, err := svc.RecordGoal(ctx, ownerID, text)
	if err != nil {
		fatal(err)
	}
	printGoal(*goal)
}

func runDelete(ctx context.Context, svc *services.LedgerService, ownerID string, args []string) {
	if len(args) != 1 {
		fatal(errors.New("del: expected one entry id"))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fatal(fmt.Errorf("del: invalid entry id %q", args[0]))
	}
	deleted, err := svc.DeleteEntry(ctx, ownerID, id)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Entrada %d removida: R$ %s (%s)\n", deleted.ID, deleted.Amount.String(), deleted.CategoryName)
}

func runLimit(ctx context.Context, svc *services.LedgerService, ownerID string, args []string) {
	if len(args) != 2 {
		fatal(errors.New("limite: expected <category> <value>"))
	}
	limit, err := core.ParseMoney(args[1])
	if err != nil {
		fatal(err)
	}
	if _, err := svc.SetLimit(ctx, ownerID, args[0], limit); err != nil {
		fatal(err)
	}
	fmt.Printf("Limite de %s definido: R$ %s por mês\n", args[0], limit.String())
}

func runFixed(ctx context.Context, svc *services.LedgerService, ownerID string, args []string) {
	if len(args) != 3 {
		fatal(errors.New("fixo: expected <category> <value> <months>"))
	}
	amount, err := core.ParseMoney(args[1])
	if err != nil {
		fatal(err)
	}
	months, err := strconv.Atoi(args[2])
	if err != nil {
		fatal(fmt.Errorf("fixo: invalid month count %q", args[2]))
	}
	entries, err := svc.GenerateFixed(ctx, ownerID, args[0], amount, months, time.Now())
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%d parcelas fixas de R$ %s em %s:\n", len(entries), amount.String(), args[0])
	for _, e := range entries {
		fmt.Printf("  [%d/%d] %s — %s\n", e.InstallmentIndex, e.InstallmentTotal,
			e.ReferenceDate.Format("02/01/2006"), e.Description)
	}
}

func runSummary(ctx context.Context, svc *services.LedgerService, ownerID string, args []string) {
	p := core.PeriodOf(time.Now())
	if len(args) == 1 {
		var err error
		p, err = core.ParsePeriod(args[0])
		if err != nil {
			fatal(err)
		}
	}
	summary, err := svc.Summarize(ctx, ownerID, p)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Resumo %s\n", summary.Period.String())
	fmt.Printf("  Receitas: R$ %s\n", summary.Totals.Income.String())
	fmt.Printf("  Despesas: R$ %s\n", summary.Totals.Expense.String())
	fmt.Printf("  Saldo do mês: R$ %s\n", summary.Totals.Net.String())
	fmt.Printf("  Saldo da conta: R$ %s\n", summary.Balance.String())
	if len(summary.Categories) > 0 {
		fmt.Println("  Despesas por categoria:")
		for _, c := range summary.Categories {
			fmt.Printf("    %s: R$ %s\n", c.Category, c.Total.String())
		}
	}
}

func runGoals(ctx context.Context, svc *services.LedgerService, ownerID string) {
	goals, err := svc.Goals(ctx, ownerID)
	if err != nil {
		fatal(err)
	}
	if len(goals) == 0 {
		fmt.Println("Nenhuma meta registrada.")
		return
	}
	for _, g := range goals {
		printGoal(g)
	}
}

func runSharedBalance(ctx context.Context, svc *services.LedgerService) {
	balance, err := svc.SharedBalance(ctx)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Saldo compartilhado: R$ %s\n", balance.String())
}

func runClose(ctx context.Context, cfg *config.Config, store *storage.Store, svc *services.LedgerService, amqpClient *amqp.Client, ownerID string, args []string) {
	p := core.PeriodOf(time.Now())
	if len(args) == 1 {
		var err error
		p, err = core.ParsePeriod(args[0])
		if err != nil {
			fatal(err)
		}
	}

	sink, err := report.NewSink(ctx, cfg.ReportBackend, cfg.ReportsDir, nil)
	if err != nil {
		fatal(err)
	}
	engine := services.NewRolloverEngine(store, sink, amqpClient, 1)

	closed, err := engine.ClosePeriodFor(ctx, ownerID, p, time.Now())
	if err != nil {
		fatal(err)
	}
	if closed == nil {
		fmt.Printf("Nada a fechar em %s.\n", p.String())
		return
	}
	fmt.Printf("Período %s fechado. Relatório: %s\n", closed.Period.String(), closed.Artifact)
	if closed.Carry != nil {
		fmt.Printf("Saldo transferido: R$ %s\n", closed.Carry.Amount.String())
	}
}

func runReports(ctx context.Context, store *storage.Store, ownerID string) {
	reports, err := store.ListPeriodReports(ctx, ownerID)
	if err != nil {
		fatal(err)
	}
	if len(reports) == 0 {
		fmt.Println("Nenhum relatório fechado.")
		return
	}
	for _, r := range reports {
		fmt.Printf("%04d-%02d  %s  (gerado em %s)\n",
			r.Year, r.Month, r.ArtifactPath, r.GeneratedAt.Format("02/01/2006"))
	}
}

func printGoal(g core.Goal) {
	fmt.Printf("Meta: %s — alvo R$ %s", g.Name, g.Target.String())
	if g.Deadline != "" {
		fmt.Printf(" até %s", g.Deadline)
	}
	fmt.Printf(" (%.0f%%)\n", g.Progress()*100)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Erro:", err)
	os.Exit(1)
}
