package availability

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

func windowsString(ws []Window) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}

func assertWindows(t *testing.T, got []Window, want ...string) {
	t.Helper()
	g := windowsString(got)
	if len(g) != len(want) {
		t.Fatalf("expected %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, g)
		}
	}
}

func rule(weekday int, start, end string) models.WorkingHours {
	return models.WorkingHours{ProfessionalID: testProID, Weekday: weekday, StartTime: start, EndTime: end, Active: true}
}

func TestResolveWindows_NoRuleMeansClosed(t *testing.T) {
	got, problems := ResolveWindows(nil, nil, time.Monday, nil)
	if len(got) != 0 || len(problems) != 0 {
		t.Fatalf("expected closed day without problems, got %v %v", got, problems)
	}
}

func TestResolveWindows_UnionsOverlappingRules(t *testing.T) {
	rules := []models.WorkingHours{
		rule(1, "09:00", "13:00"),
		rule(1, "12:00", "18:00"),
		rule(2, "07:00", "08:00"),
		{Weekday: 1, StartTime: "06:00", EndTime: "07:00", Active: false},
	}

	got, _ := ResolveWindows(rules, nil, time.Monday, nil)
	assertWindows(t, got, "09:00-18:00")
}

func TestResolveWindows_LunchBreak(t *testing.T) {
	r := rule(1, "09:00", "18:00")
	r.LunchStart, r.LunchEnd = "12:00", "13:00"

	got, _ := ResolveWindows([]models.WorkingHours{r}, nil, time.Monday, nil)
	assertWindows(t, got, "09:00-12:00", "13:00-18:00")
}

func TestResolveWindows_CrossMidnightFailsClosed(t *testing.T) {
	rules := []models.WorkingHours{rule(5, "22:00", "02:00")}

	got, problems := ResolveWindows(rules, nil, time.Friday, nil)
	if len(got) != 0 {
		t.Fatalf("expected no availability, got %v", windowsString(got))
	}
	if len(problems) != 1 {
		t.Fatalf("expected the rule to be reported, got %v", problems)
	}
}

func TestResolveWindows_WholeDayBlockWins(t *testing.T) {
	rules := []models.WorkingHours{rule(1, "09:00", "17:00")}
	exceptions := []models.ScheduleException{
		{Kind: models.ExceptionExtraHours, StartTime: "18:00", EndTime: "20:00"},
		{Kind: models.ExceptionBlocked},
	}

	got, _ := ResolveWindows(rules, exceptions, time.Monday, nil)
	if len(got) != 0 {
		t.Fatalf("expected blocked day, got %v", windowsString(got))
	}
}

func TestResolveWindows_ExtraHoursEnlarge(t *testing.T) {
	rules := []models.WorkingHours{rule(1, "09:00", "17:00")}

	base, _ := ResolveWindows(rules, nil, time.Monday, nil)
	extended, _ := ResolveWindows(rules, []models.ScheduleException{
		{Kind: models.ExceptionExtraHours, StartTime: "16:00", EndTime: "19:00"},
	}, time.Monday, nil)

	assertWindows(t, base, "09:00-17:00")
	assertWindows(t, extended, "09:00-19:00")

	// Extra hours on a day without rules open the day.
	sunday, _ := ResolveWindows(rules, []models.ScheduleException{
		{Kind: models.ExceptionExtraHours, StartTime: "10:00", EndTime: "12:00"},
	}, time.Sunday, nil)
	assertWindows(t, sunday, "10:00-12:00")
}

func TestResolveWindows_PartialBlock(t *testing.T) {
	rules := []models.WorkingHours{rule(1, "09:00", "17:00")}
	exceptions := []models.ScheduleException{
		{Kind: models.ExceptionBlocked, StartTime: "14:00", EndTime: "15:30"},
	}

	got, _ := ResolveWindows(rules, exceptions, time.Monday, nil)
	assertWindows(t, got, "09:00-14:00", "15:30-17:00")
}

func TestResolveWindows_MalformedExceptions(t *testing.T) {
	rules := []models.WorkingHours{rule(1, "09:00", "17:00")}

	got, problems := ResolveWindows(rules, []models.ScheduleException{
		{Kind: models.ExceptionExtraHours, StartTime: "19:00"},
	}, time.Monday, nil)
	assertWindows(t, got, "09:00-17:00")
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}

	got, _ = ResolveWindows(rules, []models.ScheduleException{
		{Kind: models.ExceptionBlocked, StartTime: "nope", EndTime: "10:00"},
	}, time.Monday, nil)
	if len(got) != 0 {
		t.Fatalf("unreadable block must close the day, got %v", windowsString(got))
	}
}

func TestResolveWindows_Branch(t *testing.T) {
	a, b := uint(1), uint(2)
	r1 := rule(1, "09:00", "12:00")
	r1.BranchID = &a
	r2 := rule(1, "14:00", "18:00")
	r2.BranchID = &b
	shared := rule(1, "18:00", "19:00")

	rules := []models.WorkingHours{r1, r2, shared}

	got, _ := ResolveWindows(rules, nil, time.Monday, &a)
	assertWindows(t, got, "09:00-12:00", "18:00-19:00")

	got, _ = ResolveWindows(rules, nil, time.Monday, nil)
	assertWindows(t, got, "09:00-12:00", "14:00-19:00")
}

func TestWorkingHoursResolver_OpenIntervals(t *testing.T) {
	src := newMemorySource().weekdays("09:00", "17:00")
	src.exceptions = []models.ScheduleException{
		{ProfessionalID: testProID, Date: "2024-06-10", Kind: models.ExceptionBlocked},
	}
	r := NewWorkingHoursResolver(src, zerolog.Nop())

	blocked, err := r.OpenIntervals(context.Background(), testProID, nil, at(2024, 6, 10, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocked) != 0 {
		t.Fatalf("expected blocked Monday, got %v", blocked)
	}

	open, err := r.OpenIntervals(context.Background(), testProID, nil, at(2024, 6, 11, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open) != 1 || !open[0].Start.Equal(at(2024, 6, 11, 9, 0)) || !open[0].End.Equal(at(2024, 6, 11, 17, 0)) {
		t.Fatalf("unexpected open intervals: %v", open)
	}
}
