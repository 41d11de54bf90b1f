package services

import (
    "fmt"
    "math"
    "sort"
    "strings"
    "time"

    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func summarize(tasks []domain.Task) domain.TimeSummary {
    s := domain.TimeSummary{ TotalTasks: len(tasks), DailyBreakdown: map[string]float64{} }
    daily := map[string]int64{}
    for _, t := range tasks {
        if t.TimeEstimate == nil || *t.TimeEstimate <= 0 {
            s.WithoutEstimates++
            continue
        }
        s.WithEstimates++
        s.TotalEstimateMs += int64(*t.TimeEstimate)
        if day := t.Day(); !day.IsZero() {
            daily[day.Format("2006-01-02")] += int64(*t.TimeEstimate)
        }
    }
    for d, ms := range daily {
        s.DailyBreakdown[d] = round2(domain.Millis(ms).Hours())
    }
    s.TotalHours = round2(domain.Millis(s.TotalEstimateMs).Hours())
    return s
}

func weekendSet(days []string) map[time.Weekday]bool {
    byName := map[string]time.Weekday{
        "SUN": time.Sunday, "MON": time.Monday, "TUE": time.Tuesday, "WED": time.Wednesday,
        "THU": time.Thursday, "FRI": time.Friday, "SAT": time.Saturday,
    }
    out := map[time.Weekday]bool{}
    for _, d := range days {
        if wd, ok := byName[strings.ToUpper(strings.TrimSpace(d))]; ok { out[wd] = true }
    }
    return out
}

// buildDays buckets tasks onto every calendar day in [from, to], including
// empty days, so the model sees activity gaps as well as activity.
func buildDays(tasks []domain.Task, from, to time.Time, weekend map[time.Weekday]bool, daily map[string]float64) []domain.DayBucket {
    byDay := map[string][]domain.Task{}
    for _, t := range tasks {
        if day := t.Day(); !day.IsZero() {
            key := day.Format("2006-01-02")
            byDay[key] = append(byDay[key], t)
        }
    }
    var out []domain.DayBucket
    start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
    end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
    for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
        key := d.Format("2006-01-02")
        b := domain.DayBucket{ Date: d, Hours: daily[key], Tasks: byDay[key] }
        if weekend[d.Weekday()] {
            b.Weekend = true
            b.WeekendDay = d.Weekday().String()
        }
        out = append(out, b)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
    return out
}

const maxDescriptionChars = 1000

// renderStructured produces the day-by-day text block the prompt embeds.
func renderStructured(from, to time.Time, s domain.TimeSummary, days []domain.DayBucket) string {
    b := &strings.Builder{}
    rule := strings.Repeat("=", 70)
    fmt.Fprintf(b, "%s\nTASK ANALYSIS DATA\n%s\n", rule, rule)
    fmt.Fprintf(b, "\nDate Range: %s to %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
    fmt.Fprintf(b, "   Total Tasks: %d\n", s.TotalTasks)
    fmt.Fprintf(b, "   Tasks with time estimates: %d\n", s.WithEstimates)
    fmt.Fprintf(b, "   Total Estimated Time: %v hours\n", s.TotalHours)
    fmt.Fprintf(b, "\n   Daily Breakdown:\n")
    for _, day := range days {
        marker := ""
        if day.Weekend { marker = fmt.Sprintf(" (weekend-%s)", day.WeekendDay) }
        fmt.Fprintf(b, "\n     %s%s: Total %v hours (%d tasks)\n", day.Date.Format("2006-01-02"), marker, day.Hours, len(day.Tasks))
        for _, t := range day.Tasks {
            name := t.Name
            if name == "" { name = "Unnamed" }
            if h := t.EstimateHours(); h > 0 {
                fmt.Fprintf(b, "        - %s, Estimated time: %v hours\n", name, round2(h))
            } else {
                fmt.Fprintf(b, "        - %s, Estimated time: Not set\n", name)
            }
            if desc := strings.TrimSpace(t.Description); desc != "" {
                desc = strings.ReplaceAll(desc, "\n", " ")
                if len(desc) > maxDescriptionChars { desc = desc[:maxDescriptionChars] + "..." }
                fmt.Fprintf(b, "          Description: %s\n", desc)
            }
        }
    }
    return b.String()
}
