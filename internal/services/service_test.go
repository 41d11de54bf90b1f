package services

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "github.com/vmsaif/clickup-ai-analysis/internal/adapters/clickup"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

type fakeProvider struct {
    calls   int
    fail    bool
    prompts []string
}

func (f *fakeProvider) Generate(ctx context.Context, system []string, prompt string) (string, error) {
    f.calls++
    f.prompts = append(f.prompts, prompt)
    if f.fail { return "", domain.ErrGeneration }
    // echo the prompt so assertions can see what the model was shown
    return "# AUDIT\n" + prompt, nil
}

// stubClickUp serves a team with one matching member and three tasks:
// two closed, one open.
func stubClickUp(t *testing.T) *httptest.Server {
    t.Helper()
    now := time.Now().UTC()
    ms := func(ts time.Time) domain.Millis { return domain.Millis(ts.UnixMilli()) }
    two := domain.Millis(2 * 60 * 60 * 1000)
    tasks := []domain.Task{
        {ID: "t1", Name: "Ship billing export", Status: domain.Status{Status: "done", Type: "closed"},
            DateDone: ms(now.AddDate(0, 0, -1)), DateUpdated: ms(now.AddDate(0, 0, -1)), TimeEstimate: &two},
        {ID: "t2", Name: "Patch webhook retries", Status: domain.Status{Status: "complete", Type: "closed"},
            DateClosed: ms(now.AddDate(0, 0, -3)), DateUpdated: ms(now.AddDate(0, 0, -3))},
        {ID: "t3", Name: "Draft Q3 roadmap", Status: domain.Status{Status: "in progress", Type: "open"},
            DateUpdated: ms(now.AddDate(0, 0, -2))},
    }
    mux := http.NewServeMux()
    mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(map[string]any{"teams": []clickup.Team{{ID: "9001", Name: "Acme"}}})
    })
    mux.HandleFunc("/team/9001", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(map[string]any{"team": clickup.Team{ID: "9001", Name: "Acme", Members: []clickup.Member{
            {User: domain.User{ID: 7, Username: "Istiak Ahmed", Email: "istiak@acme.test"}},
            {User: domain.User{ID: 8, Username: "Rahim", Email: "rahim@acme.test"}},
        }}})
    })
    mux.HandleFunc("/team/9001/task", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(clickup.TasksPage{Tasks: tasks, LastPage: true})
    })
    return httptest.NewServer(mux)
}

func testService(t *testing.T, baseURL string, llm Provider) (*Service, config.Config) {
    t.Helper()
    cfg := config.Config{
        ClickUpBaseURL: baseURL,
        ClickUpKey:     "pk_test",
        HTTPTimeout:    5 * time.Second,
        RatePerMinute:  1000,
        Username:       "isti",
        DaysBack:       7,
        StatusFilter:   "completed",
        StatusNames:    []string{"complete", "completed", "done", "closed"},
        WeekendDays:    []string{"FRI", "SAT"},
        LLMTimeout:     5 * time.Second,
        OutputDir:      t.TempDir(),
    }
    cu := clickup.NewClient(cfg, zerolog.Nop())
    return New(cfg, zerolog.Nop(), cu, llm, nil, nil), cfg
}

func TestRunAnalysis_EndToEnd(t *testing.T) {
    srv := stubClickUp(t)
    defer srv.Close()
    llm := &fakeProvider{}
    svc, cfg := testService(t, srv.URL, llm)

    res, err := svc.RunAnalysis(context.Background())
    require.NoError(t, err)
    assert.True(t, res.Success)
    assert.Equal(t, "Istiak Ahmed", res.Username)
    assert.Equal(t, 2, res.TaskCount, "only the two closed tasks pass the completed filter")
    assert.Equal(t, 1, llm.calls, "exactly one prompt per run")

    // markdown report carries both task names
    md, err := os.ReadFile(filepath.Join(cfg.OutputDir, "istiak_ahmed_analysis.md"))
    require.NoError(t, err)
    assert.Contains(t, string(md), "Ship billing export")
    assert.Contains(t, string(md), "Patch webhook retries")
    assert.NotContains(t, string(md), "Draft Q3 roadmap")

    // JSON dump carries exactly the two fetched records
    raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, "istiak_ahmed_data.json"))
    require.NoError(t, err)
    var dump exportFile
    require.NoError(t, json.Unmarshal(raw, &dump))
    require.Len(t, dump.Tasks, 2)
    assert.Equal(t, "t1", dump.Tasks[0].ID)
    assert.Equal(t, "t2", dump.Tasks[1].ID)
    assert.Equal(t, 2, dump.Summary.TotalTasks)
    assert.Equal(t, "istiak@acme.test", dump.User.Email)

    // every returned task falls inside the lookback window
    from := time.Now().UTC().AddDate(0, 0, -cfg.DaysBack)
    for _, task := range dump.Tasks {
        day := task.Day()
        assert.False(t, day.Before(from.Truncate(24*time.Hour)), "task %s outside window", task.ID)
    }
}

func TestRunAnalysis_GenerationFailureStillWritesDump(t *testing.T) {
    srv := stubClickUp(t)
    defer srv.Close()
    llm := &fakeProvider{fail: true}
    svc, cfg := testService(t, srv.URL, llm)

    _, err := svc.RunAnalysis(context.Background())
    require.ErrorIs(t, err, domain.ErrGeneration)

    _, statErr := os.Stat(filepath.Join(cfg.OutputDir, "istiak_ahmed_analysis.md"))
    assert.True(t, errors.Is(statErr, os.ErrNotExist), "no report on generation failure")

    raw, readErr := os.ReadFile(filepath.Join(cfg.OutputDir, "istiak_ahmed_data.json"))
    require.NoError(t, readErr, "raw dump is still written for diagnostics")
    var dump exportFile
    require.NoError(t, json.Unmarshal(raw, &dump))
    assert.Len(t, dump.Tasks, 2)
}

func TestRunAnalysis_FetchFailureWritesNothing(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
    }))
    defer srv.Close()
    llm := &fakeProvider{}
    svc, cfg := testService(t, srv.URL, llm)

    _, err := svc.RunAnalysis(context.Background())
    require.ErrorIs(t, err, domain.ErrAuth)
    assert.Zero(t, llm.calls)

    entries, _ := os.ReadDir(cfg.OutputDir)
    assert.Empty(t, entries)
}

func TestRunAnalysis_NoTasksIsSuccessWithoutAICall(t *testing.T) {
    mux := http.NewServeMux()
    mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(map[string]any{"teams": []clickup.Team{{ID: "9001", Name: "Acme"}}})
    })
    mux.HandleFunc("/team/9001", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(map[string]any{"team": clickup.Team{ID: "9001", Members: []clickup.Member{
            {User: domain.User{ID: 7, Username: "Istiak Ahmed", Email: "istiak@acme.test"}},
        }}})
    })
    mux.HandleFunc("/team/9001/task", func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(clickup.TasksPage{LastPage: true})
    })
    srv := httptest.NewServer(mux)
    defer srv.Close()

    llm := &fakeProvider{}
    svc, _ := testService(t, srv.URL, llm)

    res, err := svc.RunAnalysis(context.Background())
    require.NoError(t, err)
    assert.Zero(t, res.TaskCount)
    assert.Zero(t, llm.calls)
}

func TestRunAnalysis_UnknownUser(t *testing.T) {
    srv := stubClickUp(t)
    defer srv.Close()
    svc, _ := testService(t, srv.URL, &fakeProvider{})

    _, err := svc.RunAnalysisFor(context.Background(), "nosuchperson", 7)
    require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLastRun_TracksOutcome(t *testing.T) {
    srv := stubClickUp(t)
    defer srv.Close()
    svc, _ := testService(t, srv.URL, &fakeProvider{})

    lr, err := svc.LastRun(context.Background())
    require.NoError(t, err)
    assert.Nil(t, lr)

    _, err = svc.RunAnalysis(context.Background())
    require.NoError(t, err)

    lr, err = svc.LastRun(context.Background())
    require.NoError(t, err)
    require.NotNil(t, lr)
    assert.True(t, lr.Success)
    assert.Equal(t, 2, lr.TaskCount)
}
