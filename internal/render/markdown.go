package render

import (
	"fmt"
	"io"
	"strings"

	"bysel/pkg/bysel"

	"github.com/charmbracelet/glamour"
)

// Markdown renders assistant text for the terminal.
type Markdown struct {
	r *glamour.TermRenderer
}

// NewMarkdown builds a renderer with a glamour standard style ("dark",
// "light", "notty", ...). An empty style picks one from the terminal.
func NewMarkdown(style string, width int) (*Markdown, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return &Markdown{r: r}, nil
}

// Write renders text to w. A nil Markdown writes the text unchanged.
func (m *Markdown) Write(w io.Writer, text string) error {
	if m == nil {
		return write(w, text)
	}
	out, err := m.r.Render(text)
	if err != nil {
		return write(w, text)
	}
	_, err = io.WriteString(w, out)
	return err
}

// Answer renders an assistant reply and its follow-up suggestions.
func Answer(w io.Writer, resp bysel.AiAssistantResponse, md *Markdown) error {
	if err := md.Write(w, resp.Answer); err != nil {
		return err
	}
	if len(resp.Suggestions) == 0 {
		return nil
	}
	return write(w, mutedStyle.Render("Try: "+strings.Join(resp.Suggestions, " | ")))
}
