package report

import (
	"fmt"
	"unicode/utf8"

	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
)

const reportLineTemplateConstant = "%-*s: %s"

// Action selects the information printed next to each repository.
type Action string

// Supported actions.
const (
	ActionList   Action = "list"
	ActionBranch Action = "branch"
	ActionStatus Action = "status"
	ActionFetch  Action = "fetch"
	ActionPull   Action = "pull"
	ActionPush   Action = "push"
)

// Line is one repository entry of the report before formatting.
type Line struct {
	DisplayName string
	Info        ui.TaggedText
}

// Plan holds the read-only values shared by every worker of a report.
type Plan struct {
	Action       Action
	Getter       InfoGetter
	BasePath     string
	ShowAbsolute bool
	ColumnWidth  int
}

// NewPlan selects the getter for action and computes the name column width over handles.
func NewPlan(action Action, handles []shared.RepositoryHandle, basePath string, showAbsolute bool, getters InfoGetters) Plan {
	if len(action) == 0 {
		action = ActionList
	}

	columnWidth := 0
	for _, handle := range handles {
		nameWidth := utf8.RuneCountInString(RenderDisplayName(handle.Path, basePath, showAbsolute))
		if nameWidth > columnWidth {
			columnWidth = nameWidth
		}
	}

	return Plan{
		Action:       action,
		Getter:       getters.Select(action),
		BasePath:     basePath,
		ShowAbsolute: showAbsolute,
		ColumnWidth:  columnWidth,
	}
}

// DisplayName renders path according to the plan.
func (plan Plan) DisplayName(path string) string {
	return RenderDisplayName(path, plan.BasePath, plan.ShowAbsolute)
}

// FormatLine renders line as a report row. The list action prints the bare name.
func (plan Plan) FormatLine(line Line, emphasizer *ui.Emphasizer) string {
	if plan.Action == ActionList {
		return line.DisplayName
	}
	return fmt.Sprintf(reportLineTemplateConstant, plan.ColumnWidth, line.DisplayName, emphasizer.Render(line.Info))
}
