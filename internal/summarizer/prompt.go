package summarizer

import "fmt"

// BuildPrompt builds the system and user prompts for the LLM summary call.
func BuildPrompt(transcript, style string) (string, string) {
	systemPrompt := `You are an assistant that summarizes lecture transcripts for students.
You must be accurate, neutral and grounded in the transcript.
Do NOT invent information; use ONLY what is in the transcript.
Return valid JSON and fill every field, using empty arrays where nothing applies.`

	var styleInstruction string
	switch style {
	case StyleDetailed:
		styleInstruction = "Write a thorough summary of 2-3 paragraphs covering every major section of the lecture."
	case StyleBulletPoints:
		styleInstruction = "Write the summary as bullet lines, one per key idea, each starting with \"- \"."
	default:
		styleInstruction = "Write a concise summary of 3-5 sentences capturing the main content."
	}

	userPrompt := fmt.Sprintf(`Transcript:
"""
%s
"""

Tasks:
1. %s
2. Extract the most important key points (facts, definitions, results) as an array of strings.
3. Extract the main topics covered as an array of short strings.

Return JSON exactly in this format (all fields required):

{
  "summary": "...",
  "key_points": ["point 1", "point 2"],
  "topics": ["topic 1", "topic 2"]
}`, transcript, styleInstruction)

	return systemPrompt, userPrompt
}
