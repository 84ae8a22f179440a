package vtt

import (
	"math"
	"strings"
	"testing"
	"time"
)

const sampleVTT = `WEBVTT

1
00:00:01.000 --> 00:00:04.500
Alice Smith: Welcome everyone to session three.

2
00:00:04.500 --> 00:00:08.000
Alice Smith: Today we cover token buckets.

3
00:00:08.000 --> 00:00:10.000
Bob Jones: Quick question before we start.

4
00:00:10.000 --> 00:00:12.000
Applause and chatter
`

func TestParse(t *testing.T) {
	segments, err := Parse(strings.NewReader(sampleVTT))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}

	first := segments[0]
	if first.Speaker != "Alice Smith" {
		t.Errorf("speaker = %q, want %q", first.Speaker, "Alice Smith")
	}
	if first.Text != "Welcome everyone to session three." {
		t.Errorf("text = %q", first.Text)
	}
	if first.Start != time.Second || first.End != 4500*time.Millisecond {
		t.Errorf("timing = %v..%v, want 1s..4.5s", first.Start, first.End)
	}

	// Cue without a speaker prefix keeps an empty speaker.
	if segments[3].Speaker != "" {
		t.Errorf("speaker = %q, want empty for unattributed cue", segments[3].Speaker)
	}
	if segments[3].Text != "Applause and chatter" {
		t.Errorf("text = %q", segments[3].Text)
	}
}

func TestParse_MalformedTiming(t *testing.T) {
	input := "WEBVTT\n\n1\nnot a timestamp --> also not\nhello\n"
	if _, err := Parse(strings.NewReader(input)); err == nil {
		t.Fatal("Parse succeeded, want timing error")
	}
}

func TestParse_MultiLineCue(t *testing.T) {
	input := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:04.000\nAlice: First line\nsecond line\n"
	segments, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if segments[0].Text != "First line second line" {
		t.Errorf("text = %q, want continuation joined with a space", segments[0].Text)
	}
}

func TestMergeConsecutive(t *testing.T) {
	segments, err := Parse(strings.NewReader(sampleVTT))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	merged := MergeConsecutive(segments)
	if len(merged) != 3 {
		t.Fatalf("got %d merged segments, want 3", len(merged))
	}

	alice := merged[0]
	if alice.Text != "Welcome everyone to session three. Today we cover token buckets." {
		t.Errorf("merged text = %q", alice.Text)
	}
	if alice.Start != time.Second || alice.End != 8*time.Second {
		t.Errorf("merged timing = %v..%v, want 1s..8s", alice.Start, alice.End)
	}
}

func TestMergeConsecutive_Empty(t *testing.T) {
	if got := MergeConsecutive(nil); got != nil {
		t.Errorf("MergeConsecutive(nil) = %v, want nil", got)
	}
}

func TestSpeakerStats(t *testing.T) {
	segments := []Segment{
		{Speaker: "Alice", Text: "one two three", Start: 0, End: 6 * time.Second},
		{Speaker: "Bob", Text: "four five", Start: 6 * time.Second, End: 8 * time.Second},
		{Speaker: "", Text: "noise", Start: 8 * time.Second, End: 9 * time.Second},
	}

	stats := SpeakerStats(segments)
	if len(stats) != 2 {
		t.Fatalf("got %d speakers, want 2", len(stats))
	}

	alice := stats["Alice"]
	if alice.Words != 3 || alice.Segments != 1 || alice.Speaking != 6*time.Second {
		t.Errorf("alice = %+v", alice)
	}
	if math.Abs(alice.Share-0.75) > 1e-9 {
		t.Errorf("alice share = %v, want 0.75", alice.Share)
	}
	if math.Abs(stats["Bob"].Share-0.25) > 1e-9 {
		t.Errorf("bob share = %v, want 0.25", stats["Bob"].Share)
	}
}

func TestFormatDialogue(t *testing.T) {
	segments := []Segment{
		{Speaker: "Alice", Text: "Hello"},
		{Speaker: "", Text: "inaudible"},
	}

	got := FormatDialogue(segments)
	want := "Alice: Hello\n\ninaudible\n\n"
	if got != want {
		t.Errorf("dialogue = %q, want %q", got, want)
	}
}
