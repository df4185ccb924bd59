package llm

import "strings"

// DefaultSystemInstruction sets the assistant persona used when none is configured
const DefaultSystemInstruction = `You are a helpful assistant chatting with people on Telegram.
Answer in the language the user writes in. Keep replies concise and conversational.
Use Markdown for emphasis, lists, code and links when it helps; avoid tables.
When a question depends on current events or a linked page, use your search and URL tools before answering.
If you are unsure, say so instead of guessing.`

// SystemInstruction returns configured when it is set, otherwise DefaultSystemInstruction
func SystemInstruction(configured string) string {
	if s := strings.TrimSpace(configured); s != "" {
		return s
	}
	return DefaultSystemInstruction
}
