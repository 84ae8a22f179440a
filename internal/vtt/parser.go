package vtt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Segment is one spoken cue from a transcript. Speaker is empty when the
// cue text carried no "Name:" prefix.
type Segment struct {
	Speaker string
	Text    string
	Start   time.Duration
	End     time.Duration
}

// SpeakerStat aggregates one speaker's contribution to a transcript.
type SpeakerStat struct {
	Segments int
	Words    int
	Speaking time.Duration
	// Share is the speaker's fraction of total speaking time, 0..1.
	Share float64
}

// Parse reads a WebVTT transcript in the form Zoom produces: an optional
// WEBVTT header, numbered cues with "HH:MM:SS.mmm --> HH:MM:SS.mmm" timing
// lines, and cue text of the form "Speaker Name: utterance".
func Parse(r io.Reader) ([]Segment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var segments []Segment
	var current *Segment
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			if current != nil {
				segments = append(segments, *current)
				current = nil
			}
		case strings.HasPrefix(trimmed, "WEBVTT"), strings.HasPrefix(trimmed, "NOTE"):
			// Header and comment lines carry no cue content.
		case strings.Contains(trimmed, "-->"):
			start, end, err := parseTiming(trimmed)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = &Segment{Start: start, End: end}
		case current == nil:
			// Cue identifier line preceding the timing; ignored.
		default:
			speaker, text := splitSpeaker(trimmed)
			if current.Text == "" {
				current.Speaker = speaker
				current.Text = text
			} else {
				// Continuation line of a multi-line cue.
				current.Text += " " + trimmed
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	if current != nil {
		segments = append(segments, *current)
	}

	return segments, nil
}

// parseTiming decodes a cue timing line into start and end offsets.
func parseTiming(line string) (start, end time.Duration, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed timing line %q", line)
	}
	// Trailing cue settings after the end timestamp are ignored.
	endField := strings.Fields(strings.TrimSpace(parts[1]))
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("malformed timing line %q", line)
	}

	start, err = parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err = parseTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp decodes "HH:MM:SS.mmm" or "MM:SS.mmm".
func parseTimestamp(s string) (time.Duration, error) {
	var h, m int
	var sec float64

	switch strings.Count(s, ":") {
	case 2:
		if _, err := fmt.Sscanf(s, "%d:%d:%f", &h, &m, &sec); err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
	case 1:
		if _, err := fmt.Sscanf(s, "%d:%f", &m, &sec); err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
	default:
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)), nil
}

// splitSpeaker separates a "Speaker Name: text" cue line. Lines without a
// colon are all text with an empty speaker.
func splitSpeaker(line string) (speaker, text string) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", line
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}

// MergeConsecutive joins adjacent segments spoken by the same speaker into
// one segment spanning both, with the texts joined by a space. Zoom emits
// a new cue every few seconds even mid-sentence, so merging gives prompts
// a far more readable dialogue.
func MergeConsecutive(segments []Segment) []Segment {
	if len(segments) == 0 {
		return nil
	}

	merged := make([]Segment, 0, len(segments))
	current := segments[0]
	for _, seg := range segments[1:] {
		if seg.Speaker == current.Speaker {
			current.Text += " " + seg.Text
			current.End = seg.End
			continue
		}
		merged = append(merged, current)
		current = seg
	}
	merged = append(merged, current)

	return merged
}

// SpeakerStats computes per-speaker totals over the transcript. Segments
// without a speaker are excluded.
func SpeakerStats(segments []Segment) map[string]SpeakerStat {
	stats := make(map[string]SpeakerStat)
	var total time.Duration

	for _, seg := range segments {
		if seg.Speaker == "" {
			continue
		}
		s := stats[seg.Speaker]
		s.Segments++
		s.Words += len(strings.Fields(seg.Text))
		s.Speaking += seg.End - seg.Start
		stats[seg.Speaker] = s
		total += seg.End - seg.Start
	}

	if total > 0 {
		for speaker, s := range stats {
			s.Share = float64(s.Speaking) / float64(total)
			stats[speaker] = s
		}
	}

	return stats
}

// FormatDialogue renders segments as "Speaker: text" paragraphs, the form
// the analysis prompts embed.
func FormatDialogue(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Speaker != "" {
			b.WriteString(seg.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
