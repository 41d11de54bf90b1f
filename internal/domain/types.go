package domain

import (
    "bytes"
    "strconv"
    "time"
)

// Millis is an epoch-millisecond value. ClickUp emits dates as strings
// ("1717430400000") but durations like time_estimate as numbers, so the
// decoder accepts both. Zero means the field was absent or null.
type Millis int64

func (m *Millis) UnmarshalJSON(b []byte) error {
    b = bytes.Trim(b, `"`)
    if len(b) == 0 || string(b) == "null" {
        *m = 0
        return nil
    }
    n, err := strconv.ParseInt(string(b), 10, 64)
    if err != nil { return err }
    *m = Millis(n)
    return nil
}

func (m Millis) MarshalJSON() ([]byte, error) {
    if m == 0 { return []byte("null"), nil }
    return []byte(strconv.Quote(strconv.FormatInt(int64(m), 10))), nil
}

func (m Millis) IsZero() bool { return m == 0 }

func (m Millis) Time() time.Time {
    if m == 0 { return time.Time{} }
    return time.UnixMilli(int64(m)).UTC()
}

func (m Millis) Hours() float64 { return float64(m) / (1000 * 60 * 60) }

type User struct {
    ID       int64  `json:"id"`
    Username string `json:"username"`
    Email    string `json:"email"`
    Role     int    `json:"role,omitempty"`
    Initials string `json:"initials,omitempty"`
}

type Status struct {
    Status string `json:"status"`
    Type   string `json:"type"`
    Color  string `json:"color,omitempty"`
}

// Closed reports the coarse open/closed classification of a workflow status.
func (s Status) Closed() bool { return s.Type == "closed" }

type ListRef struct {
    ID   string `json:"id"`
    Name string `json:"name,omitempty"`
}

type SpaceRef struct {
    ID string `json:"id"`
}

type Comment struct {
    ID          string `json:"id"`
    CommentText string `json:"comment_text"`
    User        User   `json:"user"`
    Date        Millis `json:"date,omitempty"`
}

type TimeEntry struct {
    ID       string `json:"id"`
    Duration Millis `json:"duration,omitempty"`
    Start    Millis `json:"start,omitempty"`
    End      Millis `json:"end,omitempty"`
    User     User   `json:"user"`
}

type Task struct {
    ID           string   `json:"id"`
    Name         string   `json:"name"`
    Description  string   `json:"description,omitempty"`
    Status       Status   `json:"status"`
    Assignees    []User   `json:"assignees,omitempty"`
    Creator      *User    `json:"creator,omitempty"`
    DateCreated  Millis   `json:"date_created,omitempty"`
    DateUpdated  Millis   `json:"date_updated,omitempty"`
    DateClosed   Millis   `json:"date_closed,omitempty"`
    DateDone     Millis   `json:"date_done,omitempty"`
    DueDate      Millis   `json:"due_date,omitempty"`
    TimeEstimate *Millis  `json:"time_estimate,omitempty"`
    List         ListRef  `json:"list"`
    Folder       ListRef  `json:"folder"`
    Space        SpaceRef `json:"space"`
    URL          string   `json:"url,omitempty"`

    // enrichment, populated only when activity fetching is on
    Comments    []Comment   `json:"comments,omitempty"`
    TimeEntries []TimeEntry `json:"time_entries,omitempty"`
}

// Day returns the calendar day a task is attributed to, preferring the
// completion timestamp over the close and update timestamps.
func (t Task) Day() time.Time {
    for _, m := range []Millis{t.DateDone, t.DateClosed, t.DateUpdated} {
        if !m.IsZero() {
            y, mo, d := m.Time().Date()
            return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
        }
    }
    return time.Time{}
}

// EstimateHours returns the employee's estimate in hours, 0 when unset.
func (t Task) EstimateHours() float64 {
    if t.TimeEstimate == nil || *t.TimeEstimate <= 0 { return 0 }
    return t.TimeEstimate.Hours()
}

type DayBucket struct {
    Date       time.Time
    Hours      float64
    Tasks      []Task
    Weekend    bool
    WeekendDay string
}

type TimeSummary struct {
    TotalTasks       int                `json:"total_tasks"`
    WithEstimates    int                `json:"tasks_with_estimates"`
    WithoutEstimates int                `json:"tasks_without_estimates"`
    TotalEstimateMs  int64              `json:"total_estimate_ms"`
    TotalHours       float64            `json:"total_estimate_hours"`
    DailyBreakdown   map[string]float64 `json:"daily_breakdown"`
}
