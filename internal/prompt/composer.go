// Package prompt assembles the text sent to the generative backend. All
// functions are pure: same transcript and input always produce the same
// output.
package prompt

import (
	"fmt"
	"strings"

	"chat-relay/internal/llm"
)

const DefaultWordLimit = 150

// Composer renders a transcript plus a new user message into a single prompt
// with a fixed instruction suffix constraining the reply.
type Composer struct {
	wordLimit int
}

func NewComposer(wordLimit int) Composer {
	if wordLimit <= 0 {
		wordLimit = DefaultWordLimit
	}
	return Composer{wordLimit: wordLimit}
}

func (c Composer) WordLimit() int { return c.wordLimit }

// Compose embeds the prior transcript verbatim, appends the new user turn and
// the instruction suffix.
func (c Composer) Compose(transcript []llm.Message, userText string) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	b.WriteString(Render(transcript))
	b.WriteString("\nUser: ")
	b.WriteString(userText)
	fmt.Fprintf(&b, "\n\nSystem: Reply in under %d words. Stay consistent with the previous conversation.\n", c.wordLimit)
	return b.String()
}

// Render turns a transcript into the User:/Bot: line form embedded in
// prompts. An empty transcript renders as an empty string.
func Render(transcript []llm.Message) string {
	var b strings.Builder
	for _, m := range transcript {
		if m.Role == llm.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Bot: ")
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// Fold appends one exchange to a transcript, user turn first, returning a
// fresh slice. The input transcript is not modified.
func Fold(transcript []llm.Message, userText, botText string) []llm.Message {
	out := make([]llm.Message, 0, len(transcript)+2)
	out = append(out, transcript...)
	out = append(out,
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleAssistant, Content: botText},
	)
	return out
}
