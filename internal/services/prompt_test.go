package services

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

func TestPeriodLabel(t *testing.T) {
    cases := []struct {
        days int
        want string
    }{
        {0, "PERIOD"},
        {3, "3-DAY"},
        {7, "7-DAY"},
        {10, "TWO-WEEK"},
        {14, "TWO-WEEK"},
        {25, "MONTHLY"},
        {31, "MONTHLY"},
        {45, "45-DAY"},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, periodLabel(tc.days), "days=%d", tc.days)
    }
}

func TestBuildPrompt(t *testing.T) {
    user := domain.User{Username: "Istiak Ahmed", Email: "istiak@acme.test"}
    now, _ := time.Parse("2006-01-02", "2025-06-10")
    p := buildPrompt(user, 25, "STRUCTURED-DATA-BLOCK", now)

    assert.Contains(t, p, "MONTHLY EMPLOYEE AUDIT REPORT for 'Istiak Ahmed'")
    assert.Contains(t, p, "STRUCTURED-DATA-BLOCK")
    assert.Contains(t, p, "- **Email:** istiak@acme.test")
    assert.Contains(t, p, "- **Report Generated:** 2025-06-10")
    assert.Contains(t, p, "ASK USER:")
    assert.Contains(t, p, "## DAILY ACTIVITY LOG")
    assert.Contains(t, p, "covering 25 days")
}

func TestSystemInstructions_CarryCurrentDate(t *testing.T) {
    now, _ := time.Parse("2006-01-02", "2025-06-10")
    sys := systemInstructions(now)
    assert.NotEmpty(t, sys)
    found := false
    for _, s := range sys {
        if s == "Today's date is 2025-06-10. Use this for any current date references." { found = true }
    }
    assert.True(t, found)
}
