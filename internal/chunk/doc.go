// Package chunk decomposes oversized prompts into ordered sub-prompts that
// fit a per-call character budget.
//
// Splitting is purely textual. The coordinator converts its token ceiling
// into a character budget before calling in, so this package never reasons
// about tokens. Boundaries are tried coarsest-first (paragraphs, then
// sentences, then words) and adjacent pieces are greedily packed up to the
// budget. Separators remain attached to the text they terminate, so
// concatenating the chunks of a Plan reproduces the original body byte for
// byte; nothing is lost, duplicated, or reordered.
//
// A Plan also carries the prompt's shared preamble (the text before the
// first "Human:" marker). Rendered prompts repeat the preamble on every
// chunk and, when a plan has more than one chunk, announce the fragment's
// position as "part K of N" so the model knows the document continues.
package chunk
