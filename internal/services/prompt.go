package services

import (
    "fmt"
    "strings"
    "time"

    "github.com/vmsaif/clickup-ai-analysis/internal/domain"
)

// periodLabel picks the report heading for a lookback window.
func periodLabel(daysBack int) string {
    switch {
    case daysBack <= 0:
        return "PERIOD"
    case daysBack <= 7:
        return fmt.Sprintf("%d-DAY", daysBack)
    case daysBack <= 14:
        return "TWO-WEEK"
    case daysBack <= 31:
        return "MONTHLY"
    default:
        return fmt.Sprintf("%d-DAY", daysBack)
    }
}

func systemInstructions(now time.Time) []string {
    return []string{
        "You are an expert productivity and time management analyst.",
        fmt.Sprintf("Today's date is %s. Use this for any current date references.", now.Format("2006-01-02")),
        "Your mission is to analyze ClickUp task data for potential time estimation issues, productivity patterns, and signs of dishonesty.",
        "Be direct and specific in identifying problems.",
        "CRITICAL: Calculate and compare Total Estimated Time Allocated (what employee claimed) vs Total Actual Estimated Time (what tasks should realistically take).",
        "IMPORTANT: Always include the date (YYYY-MM-DD format) beside task names when referencing them.",
        `For the "QUESTIONS REQUIRING EMPLOYEE RESPONSE" section, use a single "ASK USER:" header followed by numbered questions.`,
        "Focus on identifying time padding, unrealistic estimates, and tasks that need clarification.",
        "Calculate average daily hours based on both allocated and actual estimates, excluding weekends.",
        "Look for patterns of overestimation, underestimation, and missing descriptions.",
        "Be especially critical of vague task names with high time estimates.",
        `Balance your analysis by highlighting both positive findings ("The Goods") and issues that need attention.`,
        "Identify collaborative tasks (those with multiple assignees or watchers) and note them separately.",
    }
}

func buildPrompt(user domain.User, daysBack int, structured string, now time.Time) string {
    label := periodLabel(daysBack)
    b := &strings.Builder{}
    fmt.Fprintf(b, "Generate a %s EMPLOYEE AUDIT REPORT for '%s' based on their ClickUp task data.\n\n", label, user.Username)
    fmt.Fprintf(b, "IMPORTANT: Task descriptions are limited to %d characters.\n\n", maxDescriptionChars)
    fmt.Fprintf(b, "TASK DATA:\n%s\n\n", structured)
    fmt.Fprintf(b, "Create a professional audit report with the following sections:\n\n")
    fmt.Fprintf(b, "# %s EMPLOYEE PRODUCTIVITY AUDIT REPORT\n\n", label)
    fmt.Fprintf(b, "## EMPLOYEE INFORMATION\n")
    fmt.Fprintf(b, "- **Name:** %s\n", user.Username)
    fmt.Fprintf(b, "- **Email:** %s\n", user.Email)
    fmt.Fprintf(b, "- **Review Period:** [Extract date range from the task data provided]\n")
    fmt.Fprintf(b, "- **Report Generated:** %s\n\n", now.Format("2006-01-02"))
    b.WriteString(`## EXECUTIVE SUMMARY
Provide a professional 3-4 sentence overview of the employee's performance, highlighting key strengths, concerns, and overall productivity assessment for the period.

## PRODUCTIVITY METRICS

### Overall Statistics
- **Total Tasks Completed:** X
- **Total Estimated Time Allocated (Employee):** X hours (sum of all task estimates provided)
- **Total Actual Estimated Time (Auditor Assessment):** X hours (realistic time these tasks should take)
- **Time Allocation Efficiency:** X% (actual/allocated * 100)
- **Average Daily Hours (Based on Actual Estimate):** X hours (actual estimated time / working days)
- **Average Daily Hours (Based on Employee Estimates):** X hours (allocated time / working days)
- **Days with Activity:** X days
- **Working Days (excluding weekends):** X days
- **Tasks with Missing Estimates:** X (X%)

### Performance Indicators
- **Most Productive Day:** [Date] - X hours
- **Least Productive Day:** [Date] - X hours
- **Consistency Score:** [High/Medium/Low] - Explanation
- **Task Completion Rate:** X%

## TIME MANAGEMENT ANALYSIS

### THE GOODS (Positive Findings)
- **Well-Documented Tasks:** List tasks with clear descriptions and appropriate time estimates
- **Efficient Completions:** Tasks completed within reasonable timeframes
- **Collaborative Tasks:** Identify tasks that appear to be team efforts (multiple assignees, watchers, or coordination required)
- **Good Practices:** Positive patterns observed in time management
- **Consistent Work:** Days with steady productivity
- **Proper Planning:** Tasks with realistic time estimates

### THE ISSUES (Areas of Concern)
- **Time Estimation Problems:** overestimated tasks (potential padding), underestimated tasks (poor planning), missing estimates (lack of planning)
- **Task Definition Problems:** vague task descriptions, generic task names, lack of deliverable clarity
- **Productivity Gaps:** days with unusually low activity, unexplained time gaps, holiday work patterns (if any)

## AUDIT FLAGS & COMPLIANCE ISSUES

### Critical Issues
Tasks requiring immediate management review:
- **[Task Name] (Date: YYYY-MM-DD, X hours)** - Reason for concern

### Moderate Concerns
Tasks needing clarification:
- **[Task Name] (Date: YYYY-MM-DD, X hours)** - Issue identified

### Minor Issues
Tasks with minor problems:
- **[Task Name] (Date: YYYY-MM-DD)** - Suggestion for improvement

## QUESTIONS REQUIRING EMPLOYEE RESPONSE

**ASK USER:**

The following items require written explanation from the employee:

1. **[Task Name] (Date: YYYY-MM-DD)** - Please explain why this task required X hours and provide detailed breakdown of work performed
2. **[Task Name] (Date: YYYY-MM-DD)** - Please provide deliverables and clarify the scope of this task
3. **Missing Time Estimates** - The following tasks lack time estimates: [List tasks with dates]. Please add appropriate estimates and explain the omission
4. **Activity Gaps** - No tasks logged for [Date(s)]. Please clarify if these were holidays, days off, or provide explanation for absence

## RECOMMENDATIONS FOR MANAGEMENT

### Immediate Actions Required
- Specific steps management should take

### Process Improvements
- Suggestions for better oversight and training needs identified

### Long-term Considerations
- Pattern-based recommendations and performance improvement plan suggestions

## DAILY ACTIVITY LOG

Detailed breakdown for each day in the period:

**[Date]** | Tasks: X | Hours: X
- Key tasks completed
- Any concerns or anomalies noted

Note: Weekend days are marked accordingly in the data above.

## AUDIT CONCLUSION

### Overall Assessment
[Professional assessment of employee's time tracking and productivity]

### Compliance Score
[Score/Rating] - Explanation of rating

### Follow-up Actions
- Next review date, specific items to monitor, documentation required

---

`)
    fmt.Fprintf(b, "**Auditor Notes:**\n")
    fmt.Fprintf(b, "- This is a %s report covering %d days\n", strings.ToLower(label), daysBack)
    b.WriteString(`- Analysis includes both positive findings ("The Goods") and areas needing improvement ("The Issues")
- Weekend days are marked in the task data

Provide a professional, objective, and BALANCED analysis suitable for HR records and performance reviews.
IMPORTANT: Always highlight both the positive aspects AND the issues. Be specific with examples but maintain a constructive tone focused on improvement.
Remember to acknowledge good work while also identifying areas that need attention.
`)
    return b.String()
}
