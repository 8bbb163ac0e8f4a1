package runner

// FileOutcome is the result of running the task over one container.
type FileOutcome struct {
	// Path is the absolute path of the container.
	Path string

	// Matches holds the object numbers the task reported.
	Matches []int

	// Error is set if the container could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered  int
	FilesProcessed   int
	FilesErrored     int
	FilesWithMatches int
	MatchesTotal     int
}

// Result is the overall runner result.
type Result struct {
	// Files holds one outcome per discovered container, sorted by path.
	Files []FileOutcome

	Stats Stats
}

// HasErrors reports whether any container failed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

// FirstError returns the error of the first failed container, or nil.
func (r *Result) FirstError() error {
	if r == nil {
		return nil
	}
	for _, outcome := range r.Files {
		if outcome.Error != nil {
			return outcome.Error
		}
	}
	return nil
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesProcessed++
	if len(outcome.Matches) > 0 {
		r.Stats.FilesWithMatches++
		r.Stats.MatchesTotal += len(outcome.Matches)
	}
}
