// Package prompt renders the interactive shell's prompt. Per sush's PS1
// contract, the prompt is the PS1 environment variable's value rendered
// verbatim by the outer loop; painter.Painter only applies color/bold
// styling on top of that literal text.
package prompt

import (
	"sush/internal/env"
	"sush/internal/painter"
)

// Update returns the prompt string to display: environment's PS1 value
// (env.DefaultPS1 when PS1 is unset or empty), styled by p.
func Update(p painter.Painter, environment *env.Store) string {
	ps1 := environment.Get("PS1")
	if ps1 == "" {
		ps1 = env.DefaultPS1
	}
	return p.Paint(p.PathBold, p.PathColour, ps1)
}
