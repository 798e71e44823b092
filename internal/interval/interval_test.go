package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC)

func block(id int64, start, end, label string) Interval {
	return Interval{
		ID:    id,
		Kind:  KindPlan,
		Date:  testDay,
		Start: MustParseTimeOfDay(start),
		End:   MustParseTimeOfDay(end),
		Label: label,
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "9:05", want: 545},
		{in: " 23:59 ", want: 1439},
		{in: "24:00", want: EndOfDay},
		{in: "24:01", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1230", wantErr: true},
		{in: "12:3", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", Clock(9, 5).String())
	assert.Equal(t, "24:00", EndOfDay.String())
	assert.Equal(t, "00:00", Midnight.String())
}

func TestTimeOfDayOn(t *testing.T) {
	got := Clock(10, 30).On(testDay.Add(5 * time.Hour))
	assert.Equal(t, time.Date(2025, 2, 17, 10, 30, 0, 0, time.UTC), got)
}

func TestDayAndDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2025, 2, 17, 23, 45, 0, 0, loc)
	assert.Equal(t, "2025-02-17", DateKey(ts))
	assert.Equal(t, testDay, Day(ts))

	d, err := ParseDate("2025-02-17")
	require.NoError(t, err)
	assert.Equal(t, testDay, d)

	_, err = ParseDate("17/02/2025")
	assert.Error(t, err)
}

func TestIntervalFormatting(t *testing.T) {
	iv := block(1, "09:00", "11:00", "Planned Work")
	assert.Equal(t, 120, iv.Minutes())
	assert.Equal(t, "09:00-11:00", iv.Range())
	assert.Equal(t, "09:00-11:00: Planned Work", iv.Line())
	assert.Equal(t, "Planned Work (09:00 - 11:00)", iv.String())
}

// ============================================================
// Overlap arithmetic
// ============================================================

func TestOverlapMinutes(t *testing.T) {
	tests := []struct {
		name       string
		s1, e1     string
		s2, e2     string
		want       int
		overlapped bool
	}{
		{"disjoint before", "07:00", "08:00", "09:00", "12:00", 0, false},
		{"disjoint after", "13:00", "15:00", "09:00", "12:00", 0, false},
		{"contained", "09:30", "11:00", "09:00", "12:00", 90, true},
		{"containing", "08:00", "14:00", "09:00", "12:00", 180, true},
		{"overlaps start", "08:00", "10:00", "09:00", "12:00", 60, true},
		{"overlaps end", "11:00", "14:00", "09:00", "12:00", 60, true},
		{"identical", "09:00", "12:00", "09:00", "12:00", 180, true},
		{"adjacent before", "08:00", "09:00", "09:00", "12:00", 0, false},
		{"adjacent after", "12:00", "13:00", "09:00", "12:00", 0, false},
		{"single minute", "11:59", "13:00", "09:00", "12:00", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := block(1, tt.s1, tt.e1, "a")
			b := block(2, tt.s2, tt.e2, "b")
			assert.Equal(t, tt.want, OverlapMinutes(a, b))
			assert.Equal(t, tt.want, OverlapMinutes(b, a), "overlap is symmetric")
			assert.Equal(t, tt.overlapped, Overlaps(a, b))
		})
	}
}

// ============================================================
// Shape validation
// ============================================================

func TestValidate(t *testing.T) {
	valid := block(0, "09:00", "10:00", "Write report")
	require.NoError(t, Validate(valid))

	tests := []struct {
		name  string
		edit  func(*Interval)
		field string
	}{
		{"missing date", func(iv *Interval) { iv.Date = time.Time{} }, "date"},
		{"end before start", func(iv *Interval) { iv.End = Clock(8, 0) }, "end"},
		{"zero length", func(iv *Interval) { iv.End = iv.Start }, "end"},
		{"blank label", func(iv *Interval) { iv.Label = "   \t" }, "label"},
		{"empty label", func(iv *Interval) { iv.Label = "" }, "label"},
		{"time past midnight", func(iv *Interval) { iv.End = EndOfDay + 1 }, "time"},
		{"negative start", func(iv *Interval) { iv.Start = -5 }, "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := valid
			tt.edit(&iv)
			err := Validate(iv)
			require.ErrorIs(t, err, ErrShapeInvalid)
			var se *ShapeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestValidateAllowsEndOfDay(t *testing.T) {
	iv := block(0, "23:00", "24:00", "Late")
	assert.NoError(t, Validate(iv))
}
