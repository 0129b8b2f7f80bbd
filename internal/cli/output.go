package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/layoutkit/internal/presentation/tui"
	"github.com/muesli/termenv"
)

// PrintMarkdown writes markdown to w, styled for the terminal unless plain is set.
func PrintMarkdown(w io.Writer, markdown string, plain bool) error {
	render := tui.PlainRenderer
	if !plain {
		render = tui.NewRenderer()
	}
	out, err := render(markdown)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintSystemMessage prints a standardized status line, dimmed on colour terminals.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String(">>> "+fmt.Sprintf(format, args...)).Faint())
}
