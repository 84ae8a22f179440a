// Package vtt parses Zoom's WebVTT meeting transcripts into speaker
// attributed segments and prepares them for analysis prompts.
//
// Zoom writes one cue every few seconds with "Speaker Name: text" cue
// lines. Parse extracts the segments, MergeConsecutive rejoins runs of the
// same speaker, SpeakerStats computes talk-time shares, and FormatDialogue
// renders the "Speaker: text" paragraphs the prompt templates embed.
package vtt
