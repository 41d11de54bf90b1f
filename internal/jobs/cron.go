package jobs

import (
    "context"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/repo"
    "github.com/vmsaif/clickup-ai-analysis/internal/services"
)

type service interface {
    RunAnalysis(ctx context.Context) (*services.RunResult, error)
}

type Cron struct {
    cfg  config.Config
    log  zerolog.Logger
    svc  service
    repo *repo.Repository // may be nil
    c    *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, r *repo.Repository) *Cron {
    loc, _ := time.LoadLocation(cfg.TZ)
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, repo: r, c: c}
    _, _ = c.AddFunc(cfg.ReportCron, cr.scheduled)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) scheduled() {
    ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute); defer cancel()
    if cr.repo != nil {
        const lockKey int64 = 727272
        ok, err := cr.repo.TryAdvisoryLock(ctx, lockKey)
        if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
        if !ok { cr.log.Info().Msg("cron: already running elsewhere"); return }
        defer func(){ _ = cr.repo.AdvisoryUnlock(context.Background(), lockKey) }()
    }
    cr.log.Info().Msg("cron: scheduled analysis")
    if _, err := cr.svc.RunAnalysis(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: analysis failed") }
}
