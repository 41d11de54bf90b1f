package http

import (
    "context"
    "net/http"
    "strconv"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/services"
)

type service interface {
    RunAnalysis(ctx context.Context) (*services.RunResult, error)
    RunAnalysisFor(ctx context.Context, username string, daysBack int) (*services.RunResult, error)
    LastRun(ctx context.Context) (*services.RunResult, error)
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.LastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    if lr == nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "no runs yet"})
        return
    }
    c.JSON(http.StatusOK, lr)
}

// RunNow kicks off an analysis detached from the HTTP request so client
// disconnects don't cancel the fetch. Query params may override the
// configured username and lookback window.
func (h *Handlers) RunNow(c *gin.Context) {
    username := c.Query("user")
    days := 0
    if v := c.Query("days"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n <= 0 {
            c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
            return
        }
        days = n
    }
    go func() {
        var err error
        if username != "" || days > 0 {
            if username == "" { username = h.cfg.Username }
            _, err = h.svc.RunAnalysisFor(context.Background(), username, days)
        } else {
            _, err = h.svc.RunAnalysis(context.Background())
        }
        if err != nil { h.log.Error().Err(err).Msg("queued analysis failed") }
    }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
