// Package inspect builds the post-mortem intent report. After a reboot,
// the journal is the only witness: the report answers what was armed when
// the host died, and what led up to it.
package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"faultline/internal/journal"
)

// Reader is the slice of the journal the report reads.
type Reader interface {
	Recent(ctx context.Context, n int) ([]journal.Entry, error)
	Count(ctx context.Context) (int64, error)
}

// IntentView is one journal entry shaped for display.
type IntentView struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Source    string    `json:"source"`
	Principal string    `json:"principal,omitempty"`
	RawLen    int       `json:"raw_len"`
	Armed     bool      `json:"armed"`
	CreatedAt time.Time `json:"created_at"`
	Age       string    `json:"age"`
}

// Report is the journal's post-mortem view: the last intent prominently,
// plus the trail that led to it, newest first.
type Report struct {
	Total int64        `json:"total_intents"`
	Last  *IntentView  `json:"last,omitempty"`
	Prior []IntentView `json:"prior,omitempty"`
}

// BuildReport assembles the last intent plus up to n prior ones.
func BuildReport(ctx context.Context, r Reader, n int) (*Report, error) {
	return buildReport(ctx, r, n, time.Now())
}

func buildReport(ctx context.Context, r Reader, n int, now time.Time) (*Report, error) {
	if n < 0 {
		n = 0
	}

	total, err := r.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting intents: %w", err)
	}

	rep := &Report{Total: total}
	if total == 0 {
		return rep, nil
	}

	entries, err := r.Recent(ctx, n+1)
	if err != nil {
		return nil, fmt.Errorf("reading intents: %w", err)
	}
	if len(entries) == 0 {
		return rep, nil
	}

	last := view(entries[0], now)
	rep.Last = &last
	for _, e := range entries[1:] {
		rep.Prior = append(rep.Prior, view(e, now))
	}
	return rep, nil
}

func view(e journal.Entry, now time.Time) IntentView {
	v := IntentView{
		ID:        e.ID,
		Label:     e.Label,
		Source:    e.Source,
		RawLen:    e.RawLen,
		Armed:     e.Armed,
		CreatedAt: e.CreatedAt,
		Age:       humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
	}
	if e.Principal != nil {
		v.Principal = *e.Principal
	}
	return v
}

// Render formats the report for a terminal.
func Render(rep *Report) string {
	var b strings.Builder

	if rep.Last == nil {
		b.WriteString("Journal is empty; no intents recorded.\n")
		return b.String()
	}

	last := rep.Last
	b.WriteString("Last intent\n")
	fmt.Fprintf(&b, "  ID:        %s\n", last.ID)
	fmt.Fprintf(&b, "  Label:     %s\n", last.Label)
	fmt.Fprintf(&b, "  Source:    %s\n", last.Source)
	if last.Principal != "" {
		fmt.Fprintf(&b, "  Principal: %s\n", last.Principal)
	}
	fmt.Fprintf(&b, "  Bytes:     %d\n", last.RawLen)
	fmt.Fprintf(&b, "  Armed:     %s\n", yesNo(last.Armed))
	fmt.Fprintf(&b, "  Recorded:  %s (%s)\n",
		last.CreatedAt.UTC().Format(time.RFC3339), last.Age)

	if len(rep.Prior) > 0 {
		fmt.Fprintf(&b, "\nPrior intents (%d total in journal)\n", rep.Total)
		for _, v := range rep.Prior {
			// UNALIGNED_LOAD_STORE_WRITE is the widest label at 26 bytes.
			fmt.Fprintf(&b, "  %s  %-26s  %-7s  %s\n",
				v.CreatedAt.UTC().Format(time.RFC3339), v.Label, v.Source, armedWord(v.Armed))
		}
	}

	return b.String()
}

// BuildJSON returns the report as indented JSON.
func BuildJSON(rep *Report) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// armedWord matches the event vocabulary: a disarmed intent was suppressed.
func armedWord(b bool) string {
	if b {
		return "armed"
	}
	return "suppressed"
}
