package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/novapay/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// OverlayFromState marks the steps in the state's history as visited and
// its active step as current.
func OverlayFromState(def *domain.Definition, state *domain.State) *GraphOverlay {
	if def == nil || state == nil {
		return nil
	}
	overlay := &GraphOverlay{}
	for _, idx := range state.History {
		if step, ok := def.Step(idx); ok {
			overlay.VisitedSteps = append(overlay.VisitedSteps, step.ID)
		}
	}
	if step, ok := def.Step(state.CurrentIndex); ok {
		overlay.CurrentStep = step.ID
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of a wizard definition.
// It applies semantic styling:
// - First step: ((Circle))
// - Async step: [[Subroutine]]
// - Terminal step: ([Stadium])
// - Step collecting input: [/Parallelogram/]
// - Default: [Rectangle]
// Forward edges are labelled with their guard, back edges are dotted.
func GenerateMermaid(def *domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	steps := def.Steps()
	for i, step := range steps {
		safeID := sanitizeMermaidID(step.ID)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case step.Terminal:
			opener, closer = "([", "])"
		case step.Async:
			opener, closer = "[[", "]]"
		case len(step.Fields) > 0:
			opener, closer = "[/", "/]"
		}

		label := strings.ReplaceAll(step.Label, "\"", "'")
		if step.Async {
			label += " <br/> ⏳ async"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for i := 0; i+1 < len(steps); i++ {
		from, to := sanitizeMermaidID(steps[i].ID), sanitizeMermaidID(steps[i+1].ID)

		var cond []string
		if steps[i].HasValidator() {
			cond = append(cond, "valid")
		}
		if steps[i].Async {
			cond = append(cond, "action ok")
		}
		arrow := "-->"
		if len(cond) > 0 {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.Join(cond, " + "))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
		sb.WriteString(fmt.Sprintf("    %s -. back .-> %s\n", to, from))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
