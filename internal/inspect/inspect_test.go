package inspect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"faultline/internal/journal"
)

type mockReader struct {
	recentFunc func(ctx context.Context, n int) ([]journal.Entry, error)
	countFunc  func(ctx context.Context) (int64, error)
}

func (m *mockReader) Recent(ctx context.Context, n int) ([]journal.Entry, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, n)
	}
	return nil, nil
}

func (m *mockReader) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func strPtr(s string) *string { return &s }

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testEntries() []journal.Entry {
	return []journal.Entry{
		{
			ID:        "intent-3",
			Label:     "PANIC",
			Kind:      1,
			Source:    journal.SourceAPI,
			Principal: strPtr("ops"),
			RawLen:    6,
			Armed:     true,
			CreatedAt: testNow.Add(-3 * time.Hour),
		},
		{
			ID:        "intent-2",
			Label:     "SOFTLOCKUP",
			Kind:      10,
			Source:    journal.SourceCtlFile,
			RawLen:    11,
			Armed:     false,
			CreatedAt: testNow.Add(-5 * time.Hour),
		},
		{
			ID:        "intent-1",
			Label:     "BUG",
			Kind:      2,
			Source:    journal.SourceAPI,
			Principal: strPtr("ci"),
			RawLen:    4,
			Armed:     true,
			CreatedAt: testNow.Add(-2 * 24 * time.Hour),
		},
	}
}

func TestBuildReport_EmptyJournal(t *testing.T) {
	r := &mockReader{}
	rep, err := buildReport(context.Background(), r, 5, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 0 || rep.Last != nil || rep.Prior != nil {
		t.Fatalf("expected empty report, got %+v", rep)
	}
	if out := Render(rep); out != "Journal is empty; no intents recorded.\n" {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestBuildReport_LastAndPrior(t *testing.T) {
	var gotLimit int
	r := &mockReader{
		countFunc: func(ctx context.Context) (int64, error) { return 3, nil },
		recentFunc: func(ctx context.Context, n int) ([]journal.Entry, error) {
			gotLimit = n
			return testEntries(), nil
		},
	}

	rep, err := buildReport(context.Background(), r, 5, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if gotLimit != 6 {
		t.Errorf("expected Recent limit n+1=6, got %d", gotLimit)
	}
	if rep.Total != 3 {
		t.Errorf("expected total 3, got %d", rep.Total)
	}
	if rep.Last == nil || rep.Last.ID != "intent-3" {
		t.Fatalf("expected last intent-3, got %+v", rep.Last)
	}
	if rep.Last.Principal != "ops" {
		t.Errorf("expected principal ops, got %q", rep.Last.Principal)
	}
	if rep.Last.Age != "3 hours ago" {
		t.Errorf("expected age \"3 hours ago\", got %q", rep.Last.Age)
	}
	if len(rep.Prior) != 2 {
		t.Fatalf("expected 2 prior intents, got %d", len(rep.Prior))
	}
	if rep.Prior[0].ID != "intent-2" || rep.Prior[1].ID != "intent-1" {
		t.Errorf("prior intents out of order: %+v", rep.Prior)
	}
	if rep.Prior[0].Principal != "" {
		t.Errorf("nil principal should render empty, got %q", rep.Prior[0].Principal)
	}
	if rep.Prior[1].Age != "2 days ago" {
		t.Errorf("expected age \"2 days ago\", got %q", rep.Prior[1].Age)
	}
}

func TestBuildReport_NegativeLimitClamped(t *testing.T) {
	var gotLimit int
	r := &mockReader{
		countFunc: func(ctx context.Context) (int64, error) { return 1, nil },
		recentFunc: func(ctx context.Context, n int) ([]journal.Entry, error) {
			gotLimit = n
			return testEntries()[:1], nil
		},
	}

	rep, err := buildReport(context.Background(), r, -3, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if gotLimit != 1 {
		t.Errorf("expected Recent limit 1, got %d", gotLimit)
	}
	if rep.Last == nil || len(rep.Prior) != 0 {
		t.Fatalf("expected last only, got %+v", rep)
	}
}

func TestBuildReport_CountError(t *testing.T) {
	countErr := errors.New("database is locked")
	r := &mockReader{
		countFunc: func(ctx context.Context) (int64, error) { return 0, countErr },
	}

	_, err := buildReport(context.Background(), r, 5, testNow)
	if !errors.Is(err, countErr) {
		t.Fatalf("expected wrapped count error, got %v", err)
	}
}

func TestRender_LastIntentBlock(t *testing.T) {
	r := &mockReader{
		countFunc: func(ctx context.Context) (int64, error) { return 3, nil },
		recentFunc: func(ctx context.Context, n int) ([]journal.Entry, error) {
			return testEntries(), nil
		},
	}
	rep, err := buildReport(context.Background(), r, 5, testNow)
	if err != nil {
		t.Fatal(err)
	}

	out := Render(rep)
	for _, want := range []string{
		"Last intent\n",
		"  ID:        intent-3\n",
		"  Label:     PANIC\n",
		"  Source:    api\n",
		"  Principal: ops\n",
		"  Bytes:     6\n",
		"  Armed:     yes\n",
		"  Recorded:  2026-03-14T09:00:00Z (3 hours ago)\n",
		"Prior intents (3 total in journal)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "SOFTLOCKUP") || !strings.Contains(out, "suppressed") {
		t.Errorf("disarmed prior intent should render as suppressed:\n%s", out)
	}
	if !strings.Contains(out, "armed") {
		t.Errorf("armed prior intent missing:\n%s", out)
	}
}

func TestRender_OmitsEmptyPrincipal(t *testing.T) {
	entries := testEntries()[:1]
	entries[0].Principal = nil
	r := &mockReader{
		countFunc: func(ctx context.Context) (int64, error) { return 1, nil },
		recentFunc: func(ctx context.Context, n int) ([]journal.Entry, error) {
			return entries, nil
		},
	}
	rep, err := buildReport(context.Background(), r, 0, testNow)
	if err != nil {
		t.Fatal(err)
	}

	out := Render(rep)
	if strings.Contains(out, "Principal:") {
		t.Errorf("principal line should be omitted:\n%s", out)
	}
	if strings.Contains(out, "Prior intents") {
		t.Errorf("prior section should be omitted with no prior intents:\n%s", out)
	}
}

func TestBuildJSON(t *testing.T) {
	r := &mockReader{
		countFunc: func(ctx context.Context) (int64, error) { return 3, nil },
		recentFunc: func(ctx context.Context, n int) ([]journal.Entry, error) {
			return testEntries(), nil
		},
	}
	rep, err := buildReport(context.Background(), r, 5, testNow)
	if err != nil {
		t.Fatal(err)
	}

	out, err := BuildJSON(rep)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"total_intents": 3`,
		`"id": "intent-3"`,
		`"age": "3 hours ago"`,
		`"label": "SOFTLOCKUP"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in:\n%s", want, out)
		}
	}
}
