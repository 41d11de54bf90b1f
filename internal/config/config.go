/* Copyright (c) 2025 Saif Mahmud <https://github.com/vmsaif>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "log"
    "os"
    "strconv"
    "strings"
    "time"
)

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string

    DBDSN string

    ClickUpKey     string
    ClickUpBaseURL string
    ClickUpTeamID  string
    RatePerMinute  int

    Username        string
    DaysBack        int
    StatusFilter    string
    StatusNames     []string
    StrictUserMatch bool
    FetchActivity   bool
    WeekendDays     []string

    AIProvider   string
    GeminiKey    string
    GeminiModel  string
    OpenAIKey    string
    OpenAIModel  string
    LLMTimeout   time.Duration

    OutputDir string

    TelegramToken   string
    TelegramChatIDs []int64

    ReportCron  string
    HTTPTimeout time.Duration
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func boolean(key string, def bool) bool {
    v := strings.TrimSpace(os.Getenv(key))
    if v == "" { return def }
    b, err := strconv.ParseBool(v)
    if err != nil { return def }
    return b
}

func parseStrings(csv string) []string {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        out = append(out, p)
    }
    return out
}

func parseInt64s(csv string) []int64 {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]int64, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        n, err := strconv.ParseInt(p, 10, 64)
        if err == nil { out = append(out, n) }
    }
    return out
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "Asia/Dhaka"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),

        DBDSN: getenv("DB_DSN", ""),

        ClickUpKey:     getenv("CLICKUP_API_KEY", ""),
        ClickUpBaseURL: getenv("CLICKUP_BASE_URL", "https://api.clickup.com/api/v2"),
        ClickUpTeamID:  getenv("CLICKUP_TEAM_ID", ""),
        RatePerMinute:  atoi("CLICKUP_RATE_PER_MINUTE", 100),

        Username:        getenv("ANALYZE_USERNAME", ""),
        DaysBack:        atoi("ANALYZE_DAYS_BACK", 25),
        StatusFilter:    getenv("ANALYZE_STATUS_FILTER", "completed"),
        StatusNames:     parseStrings(getenv("ANALYZE_STATUS_NAMES", "complete,completed,done,closed")),
        StrictUserMatch: boolean("ANALYZE_STRICT_USER_MATCH", false),
        FetchActivity:   boolean("ANALYZE_FETCH_ACTIVITY", false),
        WeekendDays:     parseStrings(getenv("ANALYZE_WEEKEND_DAYS", "FRI,SAT")),

        AIProvider:  getenv("AI_PROVIDER", "gemini"),
        GeminiKey:   getenv("GEMINI_API_KEY", ""),
        GeminiModel: getenv("GEMINI_MODEL", "gemini-2.5-pro"),
        OpenAIKey:   getenv("OPENAI_API_KEY", ""),
        OpenAIModel: getenv("OPENAI_MODEL", "gpt-4.1-mini"),
        LLMTimeout:  dur("LLM_TIMEOUT", 120*time.Second),

        OutputDir: getenv("OUTPUT_DIR", "output"),

        TelegramToken:   getenv("TELEGRAM_BOT_TOKEN", ""),
        TelegramChatIDs: parseInt64s(getenv("TELEGRAM_CHAT_IDS", "")),

        ReportCron:  getenv("CRON_SPEC", "0 9 * * SUN"),
        HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
    }

    // set global timezone if available
    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }
    return cfg
}
