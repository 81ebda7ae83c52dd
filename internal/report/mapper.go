package report

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
)

const (
	repositoryReopenFailedMessageConstant = "repository disappeared before it could be described"
	workerPoolFailedMessageConstant       = "repository worker pool failed"
	mapperStartedMessageConstant          = "describing repositories"
	logFieldWorkersConstant               = "workers"
	logFieldRepositoryCountConstant       = "repositories"
)

// Mapper describes repositories on a bounded pool of workers.
type Mapper struct {
	opener  shared.RepositoryOpener
	workers int
	logger  *zap.Logger
}

// NewMapper constructs a Mapper. Non-positive worker counts select runtime.NumCPU.
func NewMapper(opener shared.RepositoryOpener, workers int, logger *zap.Logger) *Mapper {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{opener: opener, workers: workers, logger: logger}
}

// Describe re-opens every handle, applies the plan getter, and returns the lines sorted by display name.
// Repositories that can no longer be opened are left out.
func (mapper *Mapper) Describe(executionContext context.Context, handles []shared.RepositoryHandle, plan Plan) []Line {
	mapper.logger.Debug(
		mapperStartedMessageConstant,
		zap.Int(logFieldWorkersConstant, mapper.workers),
		zap.Int(logFieldRepositoryCountConstant, len(handles)),
	)

	slots := make([]*Line, len(handles))
	var group errgroup.Group
	group.SetLimit(mapper.workers)

	for handleIndex, handle := range handles {
		group.Go(func() error {
			repository, openError := mapper.opener.Open(handle.Path)
			if openError != nil {
				mapper.logger.Debug(repositoryReopenFailedMessageConstant, zap.String(logFieldRepositoryConstant, handle.Path), zap.Error(openError))
				return nil
			}
			slots[handleIndex] = &Line{
				DisplayName: plan.DisplayName(handle.Path),
				Info:        plan.Getter.Describe(executionContext, repository),
			}
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		mapper.logger.Warn(workerPoolFailedMessageConstant, zap.Error(waitError))
	}

	lines := make([]Line, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			lines = append(lines, *slot)
		}
	}
	sort.SliceStable(lines, func(firstIndex int, secondIndex int) bool {
		return lines[firstIndex].DisplayName < lines[secondIndex].DisplayName
	})
	return lines
}

// Map describes handles and formats one row per described repository.
// A repository at the base path keeps its row even though its relative name is empty.
func (mapper *Mapper) Map(executionContext context.Context, handles []shared.RepositoryHandle, plan Plan, emphasizer *ui.Emphasizer) []string {
	lines := mapper.Describe(executionContext, handles, plan)
	formattedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		formattedLines = append(formattedLines, plan.FormatLine(line, emphasizer))
	}
	return formattedLines
}
