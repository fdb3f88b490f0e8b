package watcher

// ChangeAnalysis describes what changed and how much work a re-analysis needs
type ChangeAnalysis struct {
	// NeedFullRebuild means the whole source collection must be
	// re-discovered and re-merged; otherwise the changed fragments can
	// be re-parsed individually and merged against cached graphs.
	NeedFullRebuild bool
	NeedReMerge     bool
	ChangedFiles    []string
}

// AnalyzeChanges determines how much re-analysis a change batch requires
func AnalyzeChanges(event ChangeEvent, workspace string) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeMarkup:
		// Markup changes alter the element tree that every behavior and
		// style reference resolves against, so nothing cached survives
		analysis.NeedFullRebuild = true
		analysis.NeedReMerge = true

	case ChangeTypeScript:
		// Script changes only replace behavior fragments; element and
		// style graphs stay valid and the merge re-runs over them
		analysis.NeedReMerge = true

	case ChangeTypeStylesheet:
		// Stylesheet changes only replace style fragments
		analysis.NeedReMerge = true
	}

	return analysis
}
