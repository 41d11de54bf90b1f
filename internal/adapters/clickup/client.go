/* Copyright (c) 2025 Saif Mahmud <https://github.com/vmsaif>
 * SPDX-License-Identifier: BSD-3-Clause */
package clickup

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/rs/zerolog"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

type Client struct {
    baseURL string
    token   string
    http    *http.Client
    log     zerolog.Logger
    lim     *limiter
    strict  bool
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: cfg.ClickUpBaseURL,
        token:   cfg.ClickUpKey,
        http:    &http.Client{ Timeout: cfg.HTTPTimeout },
        log:     log,
        lim:     newLimiter(cfg.RatePerMinute),
        strict:  cfg.StrictUserMatch,
    }
}

type Team struct {
    ID      string   `json:"id"`
    Name    string   `json:"name"`
    Members []Member `json:"members,omitempty"`
}

type Member struct {
    User domain.User `json:"user"`
}

type TasksPage struct {
    Tasks    []domain.Task `json:"tasks"`
    LastPage bool          `json:"last_page"`
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, u string, out any) error {
    if c.baseURL == "" { return errors.New("clickup: empty baseURL") }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        if attempt > 0 {
            // backoff before retrying a transient failure
            if err := sleepCtx(ctx, time.Duration(300*(1<<(attempt-1)))*time.Millisecond); err != nil { return err }
        }
        if err := c.lim.wait(ctx); err != nil { return err }
        req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
        if err != nil { return err }
        req.Header.Set("Authorization", c.token)
        resp, err := c.http.Do(req)
        if err != nil {
            lastErr = fmt.Errorf("%w: %v", domain.ErrTransient, err)
            continue
        }
        b, readErr := io.ReadAll(resp.Body)
        resp.Body.Close()
        if readErr != nil {
            lastErr = fmt.Errorf("%w: %v", domain.ErrTransient, readErr)
            continue
        }
        switch {
        case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
            return fmt.Errorf("%w: clickup status=%d body=%s", domain.ErrAuth, resp.StatusCode, strings.TrimSpace(string(b)))
        case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
            lastErr = fmt.Errorf("%w: clickup status=%d body=%s", domain.ErrTransient, resp.StatusCode, strings.TrimSpace(string(b)))
            continue
        case resp.StatusCode >= 300:
            return fmt.Errorf("clickup api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
        }
        if err := json.Unmarshal(b, out); err != nil {
            return fmt.Errorf("%w: %v", domain.ErrProtocol, err)
        }
        return nil
    }
    return lastErr
}

func (c *Client) Teams(ctx context.Context) ([]Team, error) {
    var out struct{ Teams []Team `json:"teams"` }
    if err := c.doJSON(ctx, c.apiURL("/team", nil), &out); err != nil { return nil, err }
    return out.Teams, nil
}

func (c *Client) Members(ctx context.Context, teamID string) ([]domain.User, error) {
    if teamID == "" { return nil, errors.New("clickup: empty team id") }
    var out struct{ Team Team `json:"team"` }
    if err := c.doJSON(ctx, c.apiURL("/team/"+url.PathEscape(teamID), nil), &out); err != nil { return nil, err }
    users := make([]domain.User, 0, len(out.Team.Members))
    for _, m := range out.Team.Members { users = append(users, m.User) }
    return users, nil
}

// FindUser resolves a team member by case-insensitive substring match against
// username or email. With multiple matches the first in API response order
// wins unless strict matching is configured.
func (c *Client) FindUser(ctx context.Context, teamID, partial string) (domain.User, error) {
    members, err := c.Members(ctx, teamID)
    if err != nil { return domain.User{}, err }
    needle := strings.ToLower(strings.TrimSpace(partial))
    var matched []domain.User
    for _, u := range members {
        if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(strings.ToLower(u.Email), needle) {
            matched = append(matched, u)
        }
    }
    if len(matched) == 0 {
        return domain.User{}, fmt.Errorf("%w: no member matching %q", domain.ErrNotFound, partial)
    }
    if len(matched) > 1 {
        names := make([]string, 0, len(matched))
        for _, u := range matched { names = append(names, u.Username) }
        if c.strict {
            return domain.User{}, fmt.Errorf("%w: %q matches %s", domain.ErrAmbiguousMatch, partial, strings.Join(names, ", "))
        }
        c.log.Warn().Strs("matches", names).Str("partial", partial).Msg("multiple users matched; using first")
    }
    return matched[0], nil
}

// TaskFilter narrows UserTasks results after the server-side assignee and
// date-range filtering.
type TaskFilter struct {
    Status      string   // "completed", "open" or "all"
    StatusNames []string // extra closed-equivalent status names for "completed"
}

func (f TaskFilter) keep(t domain.Task) bool {
    switch f.Status {
    case "", "all":
        return true
    case "open":
        return !t.Status.Closed()
    default: // completed
        if t.Status.Closed() { return true }
        name := strings.ToLower(t.Status.Status)
        for _, s := range f.StatusNames {
            if name == strings.ToLower(s) { return true }
        }
        return false
    }
}

func (c *Client) tasksPage(ctx context.Context, teamID string, userID int64, from, to time.Time, page int) (TasksPage, error) {
    q := url.Values{}
    q.Set("assignees[]", strconv.FormatInt(userID, 10))
    q.Set("include_closed", "true")
    q.Set("subtasks", "true")
    q.Set("page", strconv.Itoa(page))
    q.Set("date_updated_gt", strconv.FormatInt(from.UnixMilli(), 10))
    q.Set("date_updated_lt", strconv.FormatInt(to.UnixMilli(), 10))
    var out TasksPage
    err := c.doJSON(ctx, c.apiURL("/team/"+url.PathEscape(teamID)+"/task", q), &out)
    return out, err
}

// UserTasks fetches every task assigned to the user in [from, to], following
// the page/last_page pagination convention until exhaustion.
func (c *Client) UserTasks(ctx context.Context, teamID string, userID int64, from, to time.Time, filter TaskFilter) ([]domain.Task, error) {
    var all []domain.Task
    for page := 0; ; page++ {
        p, err := c.tasksPage(ctx, teamID, userID, from, to, page)
        if err != nil { return nil, err }
        if len(p.Tasks) == 0 { break }
        for _, t := range p.Tasks {
            if filter.keep(t) { all = append(all, t) }
        }
        if p.LastPage { break }
    }
    c.log.Info().Int("tasks", len(all)).Str("team", teamID).Int64("user", userID).Msg("clickup tasks fetched")
    return all, nil
}

func (c *Client) Comments(ctx context.Context, taskID string) ([]domain.Comment, error) {
    if taskID == "" { return nil, errors.New("clickup: empty task id") }
    var out struct{ Comments []domain.Comment `json:"comments"` }
    if err := c.doJSON(ctx, c.apiURL("/task/"+url.PathEscape(taskID)+"/comment", nil), &out); err != nil { return nil, err }
    return out.Comments, nil
}

func (c *Client) TimeEntries(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
    if taskID == "" { return nil, errors.New("clickup: empty task id") }
    var out struct{ Data []domain.TimeEntry `json:"data"` }
    if err := c.doJSON(ctx, c.apiURL("/task/"+url.PathEscape(taskID)+"/time", nil), &out); err != nil { return nil, err }
    return out.Data, nil
}
