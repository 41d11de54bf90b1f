/* Copyright (c) 2025 Saif Mahmud <https://github.com/vmsaif>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    "github.com/rs/zerolog"
    "github.com/vmsaif/clickup-ai-analysis/internal/adapters/clickup"
    "github.com/vmsaif/clickup-ai-analysis/internal/adapters/telegram"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

// Provider is the AI completion endpoint behind the report generator.
type Provider interface {
    Generate(ctx context.Context, system []string, prompt string) (string, error)
}

// RunStore persists run history when a database is configured.
type RunStore interface {
    StartRun(ctx context.Context, username string) (int64, error)
    FinishRun(ctx context.Context, id int64, taskCount int, success bool, errMsg, reportPath string) error
}

type RunResult struct {
    StartedAt  time.Time `json:"started_at"`
    FinishedAt time.Time `json:"finished_at"`
    Username   string    `json:"username"`
    TaskCount  int       `json:"task_count"`
    Success    bool      `json:"success"`
    Error      string    `json:"error,omitempty"`
    ReportPath string    `json:"report_path,omitempty"`
    DataPath   string    `json:"data_path,omitempty"`
}

type Service struct {
    cfg   config.Config
    log   zerolog.Logger
    cu    *clickup.Client
    llm   Provider
    store RunStore        // may be nil
    tg    *telegram.Client // may be nil

    mu   sync.Mutex
    last *RunResult

    now func() time.Time
}

func New(cfg config.Config, logger zerolog.Logger, cu *clickup.Client, llm Provider, store RunStore, tg *telegram.Client) *Service {
    return &Service{cfg: cfg, log: logger, cu: cu, llm: llm, store: store, tg: tg, now: time.Now}
}

// RunAnalysis executes one full pipeline pass with the configured username
// and lookback window.
func (s *Service) RunAnalysis(ctx context.Context) (*RunResult, error) {
    return s.RunAnalysisFor(ctx, s.cfg.Username, s.cfg.DaysBack)
}

func (s *Service) RunAnalysisFor(ctx context.Context, username string, daysBack int) (*RunResult, error) {
    if daysBack <= 0 { daysBack = s.cfg.DaysBack }
    res := &RunResult{ StartedAt: s.now().UTC(), Username: username }
    var runID int64
    if s.store != nil {
        id, err := s.store.StartRun(ctx, username)
        if err != nil { s.log.Error().Err(err).Msg("start run record failed") } else { runID = id }
    }
    err := s.run(ctx, username, daysBack, res)
    res.FinishedAt = s.now().UTC()
    res.Success = err == nil
    if err != nil { res.Error = err.Error() }
    s.mu.Lock()
    s.last = res
    s.mu.Unlock()
    if s.store != nil && runID != 0 {
        if ferr := s.store.FinishRun(ctx, runID, res.TaskCount, res.Success, res.Error, res.ReportPath); ferr != nil {
            s.log.Error().Err(ferr).Msg("finish run record failed")
        }
    }
    return res, err
}

func (s *Service) run(ctx context.Context, username string, daysBack int, res *RunResult) error {
    if strings.TrimSpace(username) == "" {
        return fmt.Errorf("%w: empty username fragment", domain.ErrNotFound)
    }
    teamID := s.cfg.ClickUpTeamID
    if teamID == "" {
        teams, err := s.cu.Teams(ctx)
        if err != nil { return err }
        if len(teams) == 0 { return fmt.Errorf("%w: no teams visible to this API key", domain.ErrNotFound) }
        teamID = teams[0].ID
        s.log.Info().Str("team", teams[0].Name).Str("team_id", teamID).Msg("using first team")
    }

    user, err := s.cu.FindUser(ctx, teamID, username)
    if err != nil { return err }
    res.Username = user.Username
    s.log.Info().Str("user", user.Username).Str("email", user.Email).Int64("id", user.ID).Msg("user resolved")

    to := s.now().UTC()
    from := to.AddDate(0, 0, -daysBack)

    filter := clickup.TaskFilter{ Status: s.cfg.StatusFilter, StatusNames: s.cfg.StatusNames }
    tasks, err := s.cu.UserTasks(ctx, teamID, user.ID, from, to, filter)
    if err != nil { return err }
    res.TaskCount = len(tasks)
    if len(tasks) == 0 {
        s.log.Warn().Str("user", user.Username).Int("days", daysBack).Msg("no tasks in window; nothing to analyze")
        return nil
    }

    if s.cfg.FetchActivity { s.enrich(ctx, tasks) }

    summary := summarize(tasks)
    days := buildDays(tasks, from, to, weekendSet(s.cfg.WeekendDays), summary.DailyBreakdown)
    structured := renderStructured(from, to, summary, days)

    llmCtx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
    defer cancel()
    analysis, genErr := s.llm.Generate(llmCtx, systemInstructions(s.now()), buildPrompt(user, daysBack, structured, s.now()))

    // the raw dump is written even when generation fails, for diagnostics
    dataPath, dumpErr := s.writeData(user, from, to, summary, structured, tasks)
    if dumpErr != nil { s.log.Error().Err(dumpErr).Msg("raw data dump failed") } else { res.DataPath = dataPath }

    if genErr != nil { return genErr }
    if dumpErr != nil { return dumpErr }

    reportPath, err := s.writeReport(user, analysis)
    if err != nil { return err }
    res.ReportPath = reportPath
    s.log.Info().Str("report", reportPath).Str("data", dataPath).Msg("analysis complete")

    s.notify(ctx, fmt.Sprintf("Task audit for %s is ready: %d tasks over %d days, report at %s", user.Username, len(tasks), daysBack, reportPath))
    return nil
}

// enrich attaches comments and time entries to each task. Two extra requests
// per task, all paced by the client's rate limiter.
func (s *Service) enrich(ctx context.Context, tasks []domain.Task) {
    for i := range tasks {
        comments, err := s.cu.Comments(ctx, tasks[i].ID)
        if err != nil { s.log.Warn().Err(err).Str("task", tasks[i].ID).Msg("comments fetch failed") } else { tasks[i].Comments = comments }
        entries, err := s.cu.TimeEntries(ctx, tasks[i].ID)
        if err != nil { s.log.Warn().Err(err).Str("task", tasks[i].ID).Msg("time entries fetch failed") } else { tasks[i].TimeEntries = entries }
    }
}

func slugify(username string) string {
    return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(username), " ", "_"))
}

func (s *Service) writeReport(user domain.User, analysis string) (string, error) {
    if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil { return "", err }
    path := filepath.Join(s.cfg.OutputDir, slugify(user.Username)+"_analysis.md")
    if err := os.WriteFile(path, []byte(analysis), 0o644); err != nil { return "", err }
    return path, nil
}

type exportFile struct {
    User      domain.User `json:"user"`
    DateRange struct {
        From string `json:"from"`
        To   string `json:"to"`
    } `json:"date_range"`
    Summary struct {
        TotalTasks         int     `json:"total_tasks"`
        TasksWithEstimates int     `json:"tasks_with_estimates"`
        TotalHours         float64 `json:"total_hours"`
    } `json:"summary"`
    DailyBreakdown  map[string]float64 `json:"daily_breakdown"`
    StructuredInput string             `json:"structured_output_for_llm"`
    Tasks           []domain.Task      `json:"tasks"`
}

func (s *Service) writeData(user domain.User, from, to time.Time, summary domain.TimeSummary, structured string, tasks []domain.Task) (string, error) {
    if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil { return "", err }
    ex := exportFile{ User: user, DailyBreakdown: summary.DailyBreakdown, StructuredInput: structured, Tasks: tasks }
    ex.DateRange.From = from.Format(time.RFC3339)
    ex.DateRange.To = to.Format(time.RFC3339)
    ex.Summary.TotalTasks = summary.TotalTasks
    ex.Summary.TasksWithEstimates = summary.WithEstimates
    ex.Summary.TotalHours = summary.TotalHours
    b, err := json.MarshalIndent(ex, "", "  ")
    if err != nil { return "", err }
    path := filepath.Join(s.cfg.OutputDir, slugify(user.Username)+"_data.json")
    if err := os.WriteFile(path, b, 0o644); err != nil { return "", err }
    return path, nil
}

func (s *Service) notify(ctx context.Context, text string) {
    if s.tg == nil { return }
    for _, chat := range s.cfg.TelegramChatIDs {
        if err := s.tg.SendMessagePlain(ctx, chat, text); err != nil {
            s.log.Warn().Err(err).Int64("chat", chat).Msg("telegram notify failed")
        }
    }
}

// LastRun returns the most recent run's outcome, nil when nothing ran yet.
func (s *Service) LastRun(ctx context.Context) (*RunResult, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.last, nil
}
