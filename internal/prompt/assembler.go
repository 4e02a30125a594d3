// Package prompt turns a bounded slice of prior conversation turns plus
// the incoming message into a model-ready prompt. It is pure: no
// storage or network access.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"mentor-api/internal/models"
)

// Mode selects the structural form of the assembled prompt.
type Mode string

const (
	// ModeStructured produces role-tagged history plus a final user
	// message, for providers that accept turn-structured input.
	ModeStructured Mode = "structured"
	// ModeFlattened renders everything into a single text blob.
	ModeFlattened Mode = "flattened"
)

// Message is one role-tagged entry of a structured prompt.
type Message struct {
	Role    string
	Content string
}

// Prompt is the assembled payload. Either History+Final (structured) or
// Text (flattened) is populated, never both.
type Prompt struct {
	Mode Mode

	// Structured form.
	System  string
	History []Message
	Final   string

	// Flattened form.
	Text string
}

// Assembler builds prompts from conversation history.
type Assembler struct {
	mode    Mode
	window  int
	persona string
}

// NewAssembler creates an assembler. window bounds the number of prior
// turns included; persona is the fixed coaching instruction.
func NewAssembler(mode Mode, window int, persona string) *Assembler {
	return &Assembler{mode: mode, window: window, persona: persona}
}

// Build composes the outbound prompt. Prior turns are re-sorted into
// chronological order whatever order they arrive in: replaying history
// newest-first reads as a scrambled conversation to the model.
func (a *Assembler) Build(prior []models.Turn, newMessage string) Prompt {
	turns := make([]models.Turn, len(prior))
	copy(turns, prior)
	sort.SliceStable(turns, func(i, j int) bool {
		if turns[i].CreatedAt.Equal(turns[j].CreatedAt) {
			return turns[i].ID < turns[j].ID
		}
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	})
	if a.window > 0 && len(turns) > a.window {
		turns = turns[len(turns)-a.window:]
	}

	if a.mode == ModeFlattened {
		return Prompt{Mode: ModeFlattened, Text: a.flatten(turns, newMessage)}
	}
	return a.structure(turns, newMessage)
}

func (a *Assembler) structure(turns []models.Turn, newMessage string) Prompt {
	history := make([]Message, 0, len(turns))
	for _, t := range turns {
		role := models.RoleUser
		if t.Sender == models.RoleAssistant {
			role = models.RoleAssistant
		}
		history = append(history, Message{Role: role, Content: t.Content})
	}
	return Prompt{
		Mode:    ModeStructured,
		System:  a.persona,
		History: history,
		Final:   newMessage,
	}
}

func (a *Assembler) flatten(turns []models.Turn, newMessage string) string {
	var b strings.Builder
	b.WriteString(a.persona)
	b.WriteString("\n\nRespond under a token budget, supportive-but-firm tone.\n")
	if len(turns) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range turns {
			fmt.Fprintf(&b, "%s: %s\n", t.Sender, t.Content)
		}
	}
	fmt.Fprintf(&b, "\nRespond to the latest message from the student:\n%s", newMessage)
	return b.String()
}
