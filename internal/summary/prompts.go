package summary

import "fmt"

const organizePrompt = `You are a document editor. Organize and structure the following raw notes into a coherent document.

Instructions:
- Group related thoughts together
- Add clear section headers where appropriate
- Remove duplicate ideas
- Keep the original voice and meaning
- Do NOT add new content, only organize what exists
- Output ONLY the organized document, no explanations

Raw Notes:
%s

Organized Document:`

const professionalPrompt = `You are a professional editor. Transform these rough notes into a polished, professional document.

Instructions:
- Improve clarity and flow
- Fix grammar and punctuation
- Use professional language
- Maintain the core message and ideas
- Structure with clear sections if needed
- Output ONLY the final document, no explanations

Raw Notes:
%s

Professional Document:`

const summarizePrompt = `You are a document summarizer. Create a concise summary of the following notes.

Instructions:
- Extract the key points and main ideas
- Present as a clear, readable summary
- Use bullet points for main takeaways
- Keep it under 200 words
- Output ONLY the summary, no explanations

Notes:
%s

Summary:`

const actionItemsPrompt = `You are a task extractor. Extract all action items and to-dos from the following notes.

Instructions:
- Find all tasks, action items, and things to do
- List each as a clear, actionable item
- Include any deadlines or assignees mentioned
- Use checkbox format: - [ ] Task
- Output ONLY the action items list, no explanations

Notes:
%s

Action Items:`

const titlePrompt = `Generate a short, descriptive title (3-6 words) for a document that starts with:
"%s"

Output ONLY the title, nothing else. No quotes, no punctuation at the end.

Title:`

// buildPrompt renders the style-specific instruction around the session content.
func buildPrompt(style Style, content string) (string, error) {
	switch style {
	case StyleOrganize:
		return fmt.Sprintf(organizePrompt, content), nil
	case StyleProfessional:
		return fmt.Sprintf(professionalPrompt, content), nil
	case StyleSummarize:
		return fmt.Sprintf(summarizePrompt, content), nil
	case StyleActionItems:
		return fmt.Sprintf(actionItemsPrompt, content), nil
	default:
		return "", fmt.Errorf("no prompt template for style %q", style)
	}
}
