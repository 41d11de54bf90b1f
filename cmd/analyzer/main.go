/* Copyright (c) 2025 Saif Mahmud <https://github.com/vmsaif>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "errors"
    "flag"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    adminhttp "github.com/vmsaif/clickup-ai-analysis/internal/http"
    "github.com/vmsaif/clickup-ai-analysis/internal/adapters/clickup"
    "github.com/vmsaif/clickup-ai-analysis/internal/adapters/gemini"
    "github.com/vmsaif/clickup-ai-analysis/internal/adapters/openai"
    "github.com/vmsaif/clickup-ai-analysis/internal/adapters/telegram"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
    "github.com/vmsaif/clickup-ai-analysis/internal/jobs"
    "github.com/vmsaif/clickup-ai-analysis/internal/logger"
    "github.com/vmsaif/clickup-ai-analysis/internal/repo"
    "github.com/vmsaif/clickup-ai-analysis/internal/services"
)

func exitCode(err error) int {
    switch {
    case err == nil:
        return 0
    case errors.Is(err, domain.ErrAuth):
        return 2
    case errors.Is(err, domain.ErrNotFound):
        return 3
    case errors.Is(err, domain.ErrAmbiguousMatch):
        return 4
    case errors.Is(err, domain.ErrTransient):
        return 5
    case errors.Is(err, domain.ErrProtocol):
        return 6
    case errors.Is(err, domain.ErrGeneration):
        return 7
    default:
        return 1
    }
}

func main() {
    serve := flag.Bool("serve", false, "run the admin HTTP server with scheduled reports instead of a one-shot analysis")
    flag.Parse()

    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB is optional; without it runs are tracked in memory only
    var repository *repo.Repository
    if cfg.DBDSN != "" {
        db := repo.MustOpen(ctx, cfg, log)
        defer db.Close()
        repository = repo.NewRepository(db, log)
        if err := repository.EnsureSchema(ctx); err != nil { log.Fatal().Err(err).Msg("schema init failed") }
    }

    // Adapters
    cu := clickup.NewClient(cfg, log)
    var llm services.Provider
    switch strings.ToLower(cfg.AIProvider) {
    case "openai":
        llm = openai.NewClient(cfg, log)
    default:
        llm = gemini.NewClient(cfg, log)
    }
    var tg *telegram.Client
    if cfg.TelegramToken != "" { tg = telegram.NewClient(cfg, log) }

    var store services.RunStore
    if repository != nil { store = repository }
    svc := services.New(cfg, log, cu, llm, store, tg)

    if !*serve {
        sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
        defer stop()
        res, err := svc.RunAnalysis(sigCtx)
        if err != nil {
            log.Error().Err(err).Msg("analysis failed")
            os.Exit(exitCode(err))
        }
        log.Info().Int("tasks", res.TaskCount).Str("report", res.ReportPath).Str("data", res.DataPath).Msg("done")
        return
    }

    router := adminhttp.NewRouter(cfg, log, svc)

    cron := jobs.NewCron(cfg, log, svc, repository)
    cron.Start()
    defer cron.Stop()

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
