package search

const (
	// maxFileSize bounds how large a file readFile will load into a
	// worker's Buffer. Spec §9 leaves the oversized-file policy
	// implementation-defined and suggests skipping with a single stderr
	// note; readFile enforces the bound, task.go emits the note once.
	maxFileSize = 64 << 20 // 64MB

	// maxLineMatches is the default limit on matches returned for one
	// file, mirroring the teacher's own constant of the same name.
	maxLineMatches = 100

	// maxOffsets is the default limit on hit spans returned for one
	// line, mirroring the teacher's own constant of the same name.
	maxOffsets = 10
)
