package analysis

import (
	"encoding/json"
	"fmt"
)

const executiveSummaryPrompt = `You are an expert educational analyst. Write an executive summary of the following session transcript for program staff who did not attend.

The summary should:
1. Open with a one-paragraph overview of the session
2. List the key topics covered and the main points made about each
3. Call out decisions, commitments, or action items
4. Note any open questions left unresolved

Write in clear, professional markdown. Do not include a title heading.

Transcript:

%s`

const pedagogicalAnalysisPrompt = `You are an expert in pedagogy reviewing a recorded teaching session. Analyze the following transcript and produce a pedagogical analysis.

Cover:
1. Teaching strategies used and how effective they appeared
2. How the instructor checked for understanding
3. Student participation patterns and how the instructor responded to them
4. Concrete suggestions for improving the next session

Write in clear, professional markdown. Do not include a title heading.

Transcript:

%s`

const ahaMomentsPrompt = `You are an expert educational analyst. Identify the "aha moments" in the following session transcript: points where a participant visibly reached a new understanding, made an unexpected connection, or shifted their thinking.

For each moment:
1. Quote or closely paraphrase the exchange
2. Name the participants involved
3. Explain briefly why it matters

If there are no clear moments, say so. Write in markdown. Do not include a title heading.

Transcript:

%s`

const engagementAnalysisPrompt = `You are an expert educational analyst. Measure participant engagement in the following session transcript.

Use this mapping of participants to schools where it helps group results:

%s

Respond with a JSON object inside a ` + "```json" + ` fenced code block, with these keys:
- "participants": list of objects with "name", "school", "contributions", "engagement_level" (high/medium/low)
- "overall_engagement": high/medium/low
- "notable_patterns": list of short strings

Transcript:

%s`

const conciseSummaryPrompt = `You are an expert educational content summarizer. Your task is to create a concise summary (150-200 words) of the following executive summary of an educational session.

The summary should:
1. Capture the key topics and main insights
2. Highlight the most important learning outcomes
3. Be written in a clear, professional style
4. Be easily scannable for busy educators

Here is the executive summary to condense:

%s

Provide only the concise summary without any additional commentary or explanations. Do not include any headings or labels like "Concise Summary:" in your response.`

const chatContextFormat = "%s\n\nAdditional context from chat log:\n%s"

// renderPrompt builds the prompt for one analysis kind.
func renderPrompt(kind Kind, dialogue, chatLog string, schoolMapping map[string]string) (string, error) {
	var prompt string
	switch kind {
	case KindExecutiveSummary:
		prompt = fmt.Sprintf(executiveSummaryPrompt, dialogue)
	case KindPedagogicalAnalysis:
		prompt = fmt.Sprintf(pedagogicalAnalysisPrompt, dialogue)
	case KindAhaMoments:
		prompt = fmt.Sprintf(ahaMomentsPrompt, dialogue)
	case KindEngagementAnalysis:
		mapping, err := json.MarshalIndent(nonNil(schoolMapping), "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode school mapping: %w", err)
		}
		prompt = fmt.Sprintf(engagementAnalysisPrompt, string(mapping), dialogue)
	default:
		return "", fmt.Errorf("unknown analysis kind: %s", kind)
	}

	if chatLog != "" {
		prompt = fmt.Sprintf(chatContextFormat, prompt, chatLog)
	}
	return prompt, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
