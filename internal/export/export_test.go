package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
	"github.com/sadopc/dayplan/internal/stats"
)

var day = time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

func sampleReport() (*schedule.Report, map[int64]string) {
	tid := int64(10)

	plan := []interval.Interval{
		{
			ID: 1, Kind: interval.KindPlan, Date: day,
			Start: interval.Clock(9, 0), End: interval.Clock(11, 0),
			Label: "Write report", Category: "work", LinkedTaskID: &tid,
		},
		{
			ID: 2, Kind: interval.KindPlan, Date: day,
			Start: interval.Clock(13, 0), End: interval.Clock(13, 30),
			Label: "Lunch walk",
		},
	}
	actual := []interval.Interval{
		{
			ID: 1, Kind: interval.KindActual, Date: day,
			Start: interval.Clock(10, 0), End: interval.Clock(11, 0),
			Label: "Write report", Category: "work", LinkedTaskID: &tid,
		},
	}

	rep := &schedule.Report{
		Date:   day,
		Daily:  stats.ComputeDaily(day, plan, actual),
		Tasks:  stats.ComputeTasks(plan, actual),
		Plan:   plan,
		Actual: actual,
	}
	return rep, map[int64]string{10: "Quarterly report"}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func readJSON(t *testing.T, path string) jsonExport {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return result
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	rep, names := sampleReport()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(rep, names, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, path)

	// header + 2 plan + 1 actual
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"ID", "Kind", "Date", "Start", "End", "Minutes", "Label", "Category", "Task"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	want := []string{"1", "plan", "2024-03-12", "09:00", "11:00", "120", "Write report", "work", "Quarterly report"}
	for i, v := range want {
		if records[1][i] != v {
			t.Fatalf("row 1 col %d = %q, want %q", i, records[1][i], v)
		}
	}

	// Unlinked block has an empty task column
	if records[2][8] != "" {
		t.Fatalf("unlinked block task = %q, want empty", records[2][8])
	}

	if records[3][1] != "actual" || records[3][5] != "60" {
		t.Fatalf("unexpected actual row %v", records[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(&schedule.Report{Date: day}, nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVUnknownTask(t *testing.T) {
	rep, _ := sampleReport()
	path := filepath.Join(t.TempDir(), "unknown.csv")

	if err := ToCSV(rep, map[int64]string{}, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][8] != "Unknown" {
		t.Fatalf("expected 'Unknown' for missing task, got %q", records[1][8])
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(&schedule.Report{}, nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	rep := &schedule.Report{
		Date: day,
		Plan: []interval.Interval{{
			ID: 1, Kind: interval.KindPlan, Date: day,
			Start: interval.Clock(8, 0), End: interval.Clock(9, 0),
			Label: `review "draft", again`,
		}},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(rep, nil, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][6] != `review "draft", again` {
		t.Fatalf("label mangled: %q", records[1][6])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	rep, names := sampleReport()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(rep, names, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	result := readJSON(t, path)

	if result.Date != "2024-03-12" {
		t.Fatalf("date = %q", result.Date)
	}
	if result.Count != 3 || len(result.Intervals) != 3 {
		t.Fatalf("count = %d, intervals = %d, want 3", result.Count, len(result.Intervals))
	}

	st := result.Statistics
	if st.PlannedMinutes != 150 || st.ActualMinutes != 60 || st.OverlapMinutes != 60 {
		t.Fatalf("unexpected statistics %+v", st)
	}
	if st.TemporalAccuracy != 0.4 || st.Anomalous {
		t.Fatalf("unexpected accuracy %+v", st)
	}

	if len(result.Tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(result.Tasks))
	}
	task := result.Tasks[0]
	if task.TaskID != 10 || task.Task != "Quarterly report" {
		t.Fatalf("unexpected task %+v", task)
	}
	if task.PlannedMinutes != 120 || task.ActualMinutes != 60 || task.TemporalAccuracy != 0.5 {
		t.Fatalf("unexpected task figures %+v", task)
	}

	iv := result.Intervals[0]
	if iv.Start != "09:00" || iv.End != "11:00" || iv.Duration != "2h 00m" {
		t.Fatalf("unexpected interval %+v", iv)
	}
	if iv.TaskID == nil || *iv.TaskID != 10 {
		t.Fatalf("expected task_id 10, got %v", iv.TaskID)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(&schedule.Report{Date: day}, nil, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"intervals": []`) {
		t.Fatalf("empty export should carry an empty intervals array: %s", data)
	}
	result := readJSON(t, path)
	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(&schedule.Report{}, nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	rep, names := sampleReport()
	ToJSON(rep, names, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamp(t *testing.T) {
	rep, names := sampleReport()
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(rep, names, path)

	result := readJSON(t, path)
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
}

// ============================================================
// formatMinutes (internal helper)
// ============================================================

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "0h 00m"},
		{5, "0h 05m"},
		{60, "1h 00m"},
		{95, "1h 35m"},
		{1440, "24h 00m"},
	}

	for _, tt := range tests {
		got := formatMinutes(tt.mins)
		if got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
}
