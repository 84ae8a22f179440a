package chunk

import (
	"fmt"
	"strings"
)

// PreambleMarker separates a prompt's shared preamble from the document
// body. Everything before the first marker is instruction text that must be
// repeated on every chunk; the marker itself stays with the body.
const PreambleMarker = "Human:"

const (
	paragraphSep = "\n\n"
	sentenceSep  = ". "
	wordSep      = " "
)

// Plan is an ordered chunking of one oversized prompt. Chunks holds the raw
// source pieces; Prompts renders them with the preamble and position
// annotations for submission. Callers build a Plan from SplitPreamble and
// Split once they have converted their token ceiling into a character
// budget.
type Plan struct {
	Preamble string
	Chunks   []string
}

// Prompts renders one provider-ready prompt per chunk. When the plan holds
// more than one chunk, each prompt carries a "part K of N" annotation so the
// model knows it is seeing a fragment of a larger document.
func (p Plan) Prompts() []string {
	prompts := make([]string, len(p.Chunks))
	for i, c := range p.Chunks {
		prompts[i] = renderPrompt(p.Preamble, c, i, len(p.Chunks))
	}
	return prompts
}

func renderPrompt(preamble, chunk string, index, total int) string {
	var b strings.Builder
	if preamble != "" {
		b.WriteString(preamble)
		b.WriteString("\n\n")
	}
	if total > 1 {
		fmt.Fprintf(&b, "This is part %d of %d of a larger document.", index+1, total)
		b.WriteString("\n\n")
	}
	b.WriteString(chunk)
	return b.String()
}

// BuildPlan separates prompt into preamble and body and partitions the
// body into chunks of at most budgetChars bytes each.
func BuildPlan(prompt string, budgetChars int) Plan {
	preamble, body := SplitPreamble(prompt)
	return Plan{Preamble: preamble, Chunks: Split(body, budgetChars)}
}

// SplitPreamble splits a prompt at the first PreambleMarker. The preamble is
// returned trimmed; the body keeps the marker. Prompts without a marker have
// an empty preamble.
func SplitPreamble(prompt string) (preamble, body string) {
	idx := strings.Index(prompt, PreambleMarker)
	if idx < 0 {
		return "", prompt
	}
	return strings.TrimSpace(prompt[:idx]), prompt[idx:]
}

// Split partitions text into ordered chunks of at most maxChars bytes each.
// Boundaries are chosen coarsest-first: paragraph breaks, then sentence
// breaks, then word breaks. Words are never split, so a single word longer
// than maxChars becomes its own oversized chunk.
//
// Separators stay attached to the piece they terminate, which makes the
// split lossless: strings.Join(Split(text, n), "") == text for every input.
func Split(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	var atoms []string
	for _, para := range splitAfter(text, paragraphSep) {
		if len(para) <= maxChars {
			atoms = append(atoms, para)
			continue
		}
		for _, sentence := range splitAfter(para, sentenceSep) {
			if len(sentence) <= maxChars {
				atoms = append(atoms, sentence)
				continue
			}
			atoms = append(atoms, splitAfter(sentence, wordSep)...)
		}
	}
	return pack(atoms, maxChars)
}

// splitAfter splits s on sep keeping the separator attached to the piece it
// ends, dropping the empty trailing piece a final separator produces.
func splitAfter(s, sep string) []string {
	pieces := strings.SplitAfter(s, sep)
	if n := len(pieces); n > 0 && pieces[n-1] == "" {
		pieces = pieces[:n-1]
	}
	return pieces
}

// pack greedily accumulates pieces into chunks. A chunk is flushed when the
// next piece would push it past maxChars; a piece that alone exceeds
// maxChars is emitted as its own chunk.
func pack(pieces []string, maxChars int) []string {
	var chunks []string
	var cur strings.Builder
	for _, piece := range pieces {
		if cur.Len() > 0 && cur.Len()+len(piece) > maxChars {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(piece)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
