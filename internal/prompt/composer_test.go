package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/internal/llm"
)

func TestComposeEmptyTranscript(t *testing.T) {
	c := NewComposer(150)
	p := c.Compose(nil, "Hello")

	require.Contains(t, p, "Conversation so far:")
	require.Contains(t, p, "User: Hello")
	require.Contains(t, p, "Reply in under 150 words.")
	require.Contains(t, p, "Stay consistent with the previous conversation.")
}

func TestComposeEmbedsPriorTurns(t *testing.T) {
	c := NewComposer(150)
	transcript := Fold(nil, "Hello", "Hi there!")
	p := c.Compose(transcript, "What did I say?")

	require.Contains(t, p, "User: Hello")
	require.Contains(t, p, "Bot: Hi there!")
	require.Contains(t, p, "User: What did I say?")
	// prior turns come before the new one
	require.Less(t, strings.Index(p, "Bot: Hi there!"), strings.Index(p, "User: What did I say?"))
}

func TestComposeIsDeterministic(t *testing.T) {
	c := NewComposer(80)
	transcript := Fold(nil, "a", "b")
	require.Equal(t, c.Compose(transcript, "x"), c.Compose(transcript, "x"))
}

func TestComposeWordLimitIsConfigurable(t *testing.T) {
	require.Contains(t, NewComposer(42).Compose(nil, "x"), "under 42 words")
	// non-positive limit falls back to the default
	require.Contains(t, NewComposer(0).Compose(nil, "x"), "under 150 words")
}

func TestFoldDoesNotMutateInput(t *testing.T) {
	base := Fold(nil, "q1", "a1")
	snapshot := make([]llm.Message, len(base))
	copy(snapshot, base)

	_ = Fold(base, "q2", "a2")
	require.Equal(t, snapshot, base)
}

func TestFoldReplayIsBatchingIndependent(t *testing.T) {
	pairs := [][2]string{{"q1", "a1"}, {"q2", "a2"}, {"q3", "a3"}}

	var oneByOne []llm.Message
	for _, p := range pairs {
		oneByOne = Fold(oneByOne, p[0], p[1])
	}

	firstTwo := Fold(Fold(nil, "q1", "a1"), "q2", "a2")
	batched := Fold(firstTwo, "q3", "a3")

	require.Equal(t, oneByOne, batched)
	require.Equal(t, Render(oneByOne), Render(batched))
}

func TestRenderEmpty(t *testing.T) {
	require.Equal(t, "", Render(nil))
}
