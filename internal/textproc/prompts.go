package textproc

import "fmt"

const cleanPrompt = `You are a dictation assistant. Clean up the following speech transcription:
- Remove filler words (um, uh, like, you know, so, basically, actually)
- Fix grammar and punctuation
- Keep the original meaning and tone
- Do NOT add any extra content or explanations
- Output ONLY the cleaned text, nothing else

Transcription: %s

Cleaned text:`

const rewritePrompt = `You are a writing assistant. Rewrite the following text to be clearer and more professional:
- Improve clarity and flow
- Fix any grammar issues
- Maintain the core message
- Output ONLY the rewritten text, nothing else

Original: %s

Rewritten:`

const bulletsPrompt = `Convert the following text into bullet points:
- Extract key points
- Use clear, concise language
- Output ONLY the bullet points, nothing else

Text: %s

Bullet points:`

const emailPrompt = `Format the following as a professional email:
- Add appropriate greeting and closing
- Keep it concise and professional
- Output ONLY the email, nothing else

Content: %s

Email:`

// buildPrompt renders the mode-specific instruction around the raw text.
// ModeRaw never reaches here; Process short-circuits it.
func buildPrompt(mode Mode, text string) (string, error) {
	switch mode {
	case ModeClean:
		return fmt.Sprintf(cleanPrompt, text), nil
	case ModeRewrite:
		return fmt.Sprintf(rewritePrompt, text), nil
	case ModeBullets:
		return fmt.Sprintf(bulletsPrompt, text), nil
	case ModeEmail:
		return fmt.Sprintf(emailPrompt, text), nil
	default:
		return "", fmt.Errorf("no prompt template for mode %q", mode)
	}
}
