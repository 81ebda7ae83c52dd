package report

import (
	"fmt"
	"strings"

	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
)

const (
	statusPartSeparatorConstant       = ", "
	statusBranchNoteTemplateConstant  = "On branch %s"
	statusDetachedHeadNoteConstant    = "HEAD detached"
	statusCleanTextConstant           = "Clean"
	statusUntrackedFilesTextConstant  = "Untracked files"
	statusChangesTextConstant         = "Changes"
	statusUnpushedCommitsTextConstant = "Unpushed commits"
)

var trunkBranchNames = map[string]struct{}{
	"master":  {},
	"develop": {},
}

// SummarizeStatus renders a working tree classification in canonical order:
// branch note, untracked files, changes, unpushed commits. A tree with none of
// those flags reads Clean. The branch note does not affect the resulting tag.
func SummarizeStatus(worktreeStatus shared.WorktreeStatus) ui.TaggedText {
	var parts []string
	if branchNote := describeBranch(worktreeStatus); len(branchNote) > 0 {
		parts = append(parts, branchNote)
	}

	var flagTags []ui.Tag
	if worktreeStatus.UntrackedFiles {
		parts = append(parts, statusUntrackedFilesTextConstant)
		flagTags = append(flagTags, ui.TagWarning)
	}
	if worktreeStatus.UnstagedChanges || worktreeStatus.StagedChanges {
		parts = append(parts, statusChangesTextConstant)
		flagTags = append(flagTags, ui.TagError)
	}
	if worktreeStatus.AheadOfUpstream {
		parts = append(parts, statusUnpushedCommitsTextConstant)
		flagTags = append(flagTags, ui.TagError)
	}
	if len(flagTags) == 0 {
		parts = append(parts, statusCleanTextConstant)
		flagTags = append(flagTags, ui.TagSuccess)
	}

	return ui.TaggedText{
		Text: strings.Join(parts, statusPartSeparatorConstant),
		Tag:  ui.MostSevere(flagTags...),
	}
}

func describeBranch(worktreeStatus shared.WorktreeStatus) string {
	if worktreeStatus.DetachedHead {
		return statusDetachedHeadNoteConstant
	}
	if len(worktreeStatus.BranchName) == 0 {
		return ""
	}
	if _, trunk := trunkBranchNames[worktreeStatus.BranchName]; trunk {
		return ""
	}
	return fmt.Sprintf(statusBranchNoteTemplateConstant, worktreeStatus.BranchName)
}
