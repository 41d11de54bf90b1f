package domain

import (
    "encoding/json"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMillis_DecodesStringAndNumber(t *testing.T) {
    var task Task
    // ClickUp sends dates as strings and time_estimate as a number
    raw := `{"id":"abc","name":"x","status":{"status":"done","type":"closed"},
        "date_updated":"1717430400000","time_estimate":7200000,"list":{"id":"l1"},"folder":{"id":"f1"},"space":{"id":"s1"}}`
    require.NoError(t, json.Unmarshal([]byte(raw), &task))
    assert.Equal(t, int64(1717430400000), int64(task.DateUpdated))
    require.NotNil(t, task.TimeEstimate)
    assert.Equal(t, 2.0, task.TimeEstimate.Hours())

    // null and absent fields decode to zero
    var t2 Task
    require.NoError(t, json.Unmarshal([]byte(`{"id":"d","name":"y","status":{},"date_closed":null,"list":{"id":"l"},"folder":{"id":"f"},"space":{"id":"s"}}`), &t2))
    assert.True(t, t2.DateClosed.IsZero())
    assert.Nil(t, t2.TimeEstimate)
}

func TestMillis_RoundTripsAsString(t *testing.T) {
    m := Millis(1717430400000)
    b, err := json.Marshal(m)
    require.NoError(t, err)
    assert.Equal(t, `"1717430400000"`, string(b))
}

func TestTask_DayPrefersDoneOverClosedOverUpdated(t *testing.T) {
    day := func(s string) Millis {
        ts, _ := time.Parse("2006-01-02", s)
        return Millis(ts.UnixMilli())
    }
    full := Task{DateDone: day("2025-06-01"), DateClosed: day("2025-06-02"), DateUpdated: day("2025-06-03")}
    assert.Equal(t, "2025-06-01", full.Day().Format("2006-01-02"))

    closed := Task{DateClosed: day("2025-06-02"), DateUpdated: day("2025-06-03")}
    assert.Equal(t, "2025-06-02", closed.Day().Format("2006-01-02"))

    updated := Task{DateUpdated: day("2025-06-03")}
    assert.Equal(t, "2025-06-03", updated.Day().Format("2006-01-02"))

    assert.True(t, Task{}.Day().IsZero())
}

func TestStatus_Closed(t *testing.T) {
    assert.True(t, Status{Type: "closed"}.Closed())
    assert.False(t, Status{Type: "open"}.Closed())
    assert.False(t, Status{Type: "custom"}.Closed())
}
