package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkotas/ekscaler/internal/addons"
)

// styled applies a lipgloss style only when stdout is a terminal, so
// piped output stays plain.
func styled(style lipgloss.Style, s string) string {
	if !IsInteractive() {
		return s
	}
	return style.Render(s)
}

// Title renders a bold heading.
func Title(s string) string { return styled(titleStyle, s) }

// Section renders a section heading.
func Section(s string) string { return styled(sectionStyle, s) }

// OK renders a success status line.
func OK(s string) string {
	return fmt.Sprintf("%s %s", styled(successStyle, checkMark), s)
}

// Fail renders a failure status line.
func Fail(s string) string {
	return fmt.Sprintf("%s %s", styled(failedStyle, crossMark), s)
}

// Pending renders a not-yet-run status line.
func Pending(s string) string {
	return fmt.Sprintf("%s %s", styled(dimStyle, pending), s)
}

// Dim renders de-emphasized text.
func Dim(s string) string { return styled(dimStyle, s) }

// PlanSummary renders a one-screen summary of a composed plan.
func PlanSummary(cluster string, plan *addons.Plan) string {
	var b strings.Builder

	b.WriteString(Title(fmt.Sprintf("Cluster Autoscaler plan for %s", cluster)))
	b.WriteString("\n")

	b.WriteString(Section("IAM"))
	b.WriteString("\n")
	for _, stmt := range plan.Policy.Statement {
		b.WriteString(fmt.Sprintf("  policy %s: %d actions on %s\n",
			addons.AddonName, len(stmt.Action), stmt.Resource))
	}
	for _, attachment := range plan.Attachments {
		b.WriteString(fmt.Sprintf("  attach to role %s\n", attachment.Role))
	}

	b.WriteString(Section("Autoscaling group tags"))
	b.WriteString("\n")
	if len(plan.Tags) == 0 {
		b.WriteString(Dim("  none (no node groups)") + "\n")
	}
	for _, tag := range plan.Tags {
		b.WriteString(fmt.Sprintf("  %s: %s=%s\n", tag.Group, tag.Key, tag.Value))
	}

	b.WriteString(Section("Manifests"))
	b.WriteString("\n")
	for _, doc := range plan.Manifests {
		b.WriteString(fmt.Sprintf("  %s\n", doc.Name))
	}

	return b.String()
}
