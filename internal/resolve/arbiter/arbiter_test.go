package arbiter_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/resolve/arbiter"
	"github.com/iTherapyLLC/innervoice/pkg/provider/llm/mock"
)

func TestDetectIntent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		utterance string
		want      arbiter.Intent
	}{
		{"get rid of the one next to water", arbiter.IntentDelete},
		{"can you remove that", arbiter.IntentDelete},
		{"take away the big red one", arbiter.IntentDelete},
		{"trash the old one", arbiter.IntentDelete},
		{"change the water button to juice", arbiter.IntentUpdate},
		{"update my buttons", arbiter.IntentUpdate},
		// Update keywords without "button" do not trigger.
		{"change the channel", arbiter.IntentNone},
		{"edit my profile", arbiter.IntentNone},
		{"tell me a story", arbiter.IntentNone},
		{"", arbiter.IntentNone},
	}

	for _, tc := range cases {
		if got := arbiter.DetectIntent(tc.utterance); got != tc.want {
			t.Errorf("DetectIntent(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
}

func testSnapshot() board.Snapshot {
	return board.Snapshot{
		Buttons: []board.Button{
			{ID: "w", Label: "Water", Row: 1, Col: 1, Index: 1, Category: "needs"},
			{ID: "j", Label: "Juice", Row: 1, Col: 2, Index: 2, Color: "orange"},
			{ID: "h", Label: "Help", Row: 2, Col: 1, Index: 3},
		},
		Grid: board.GridInfo{Rows: 2, Columns: 2, TotalButtons: 3},
	}
}

func TestClient_Resolve(t *testing.T) {
	t.Parallel()

	p := mock.New(`{"buttonId": "j", "buttonLabel": "Juice", "confidence": 0.9, "reason": "adjacent to Water"}`)
	c := arbiter.New(p)

	r, err := c.Resolve(context.Background(), "delete the one next to water", testSnapshot(), arbiter.IntentDelete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ButtonID != "j" || r.Failed() {
		t.Errorf("got %+v", r)
	}

	req, ok := p.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if req.MaxTokens != 300 {
		t.Errorf("MaxTokens = %d, want default 300", req.MaxTokens)
	}
	if req.Temperature != 0.1 {
		t.Errorf("Temperature = %v, want default 0.1", req.Temperature)
	}

	// The prompt must carry the grid layout and the utterance.
	userMsg := req.Messages[len(req.Messages)-1].Content
	for _, want := range []string{
		"2 rows x 2 columns",
		"Row 1: Water | Juice",
		"delete the one next to water",
		"(delete)",
	} {
		if !strings.Contains(userMsg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestClient_ResolveOptions(t *testing.T) {
	t.Parallel()

	p := mock.New(`{"buttonId": "w"}`)
	c := arbiter.New(p, arbiter.WithMaxTokens(150), arbiter.WithTemperature(0.5))

	if _, err := c.Resolve(context.Background(), "remove water", testSnapshot(), arbiter.IntentDelete); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := p.LastRequest()
	if req.MaxTokens != 150 || req.Temperature != 0.5 {
		t.Errorf("options not applied: max=%d temp=%v", req.MaxTokens, req.Temperature)
	}
}

func TestClient_ResolveTransportError(t *testing.T) {
	t.Parallel()

	p := mock.New()
	p.Err = errors.New("backend down")
	c := arbiter.New(p)

	if _, err := c.Resolve(context.Background(), "remove it", testSnapshot(), arbiter.IntentDelete); err == nil {
		t.Error("expected a transport error")
	}
}

func TestClient_ResolveNoProvider(t *testing.T) {
	t.Parallel()

	c := arbiter.New(nil)

	_, err := c.Resolve(context.Background(), "destroy the hunger one", testSnapshot(), arbiter.IntentDelete)
	if !errors.Is(err, arbiter.ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
}

func TestClient_ResolveUnparseableReply(t *testing.T) {
	t.Parallel()

	p := mock.New("I think you mean the juice button?")
	c := arbiter.New(p)

	if _, err := c.Resolve(context.Background(), "remove it", testSnapshot(), arbiter.IntentDelete); err == nil {
		t.Error("expected a parse error for a prose-only reply")
	}
}

func TestDescribeGrid(t *testing.T) {
	t.Parallel()

	desc := arbiter.DescribeGrid(testSnapshot())

	for _, want := range []string{
		"Board: 2 rows x 2 columns, 3 buttons total.",
		"Row 1: Water | Juice",
		"Row 2: Help",
		`id=w label="Water" row=1 col=1 category=needs`,
		`id=j label="Juice" row=1 col=2 color=orange`,
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q\n%s", want, desc)
		}
	}
}

func TestDescribeGrid_EmptyRow(t *testing.T) {
	t.Parallel()

	snap := board.Snapshot{
		Buttons: []board.Button{{ID: "a", Label: "A", Row: 1, Col: 1}},
		Grid:    board.GridInfo{Rows: 2, Columns: 1},
	}

	if !strings.Contains(arbiter.DescribeGrid(snap), "Row 2: (empty)") {
		t.Error("expected empty rows to be marked")
	}
}
