package models

// DuplicatePolicy defines what the updater does with relocated duplicates.
// The policy must already be resolved by the caller; any interactive
// "ask the user" loop belongs to the front end.
type DuplicatePolicy string

const (
	// DuplicateCopy copies each duplicate to its canonical relative path
	DuplicateCopy DuplicatePolicy = "copy"
	// DuplicateSkip leaves relocated duplicates alone
	DuplicateSkip DuplicatePolicy = "skip"
)

// Valid reports whether the policy is one of the resolved values
func (p DuplicatePolicy) Valid() bool {
	return p == DuplicateCopy || p == DuplicateSkip
}

// ScanResult is the full classification of one (destination, source) pair
// at one point in time. All lists are ordered by discovery order of the
// corresponding tree walk, so repeated scans over an unchanged tree are
// stable.
type ScanResult struct {
	// ID uniquely identifies this scan
	ID string

	// NewFiles are source entries with no destination match by path
	// (and, when deep scan ran, no match by composite key either)
	NewFiles []*FileEntry

	// ModifiedFiles are same-path pairs whose sizes differ
	ModifiedFiles []*FileDelta

	// MissingFiles are destination entries whose relative path is absent
	// from the source tree
	MissingFiles []*FileEntry

	// DuplicateLocations are (source, dest) pairs matched by
	// (size, filename) at different relative paths
	DuplicateLocations []DuplicatePair

	// ScanTime is when the scan ran
	ScanTime string

	// DestinationPath is the root of the tree being brought up to date
	DestinationPath string

	// SourcePath is the root of the reference tree
	SourcePath string

	// DeepScanPerformed records whether relocation detection was enabled
	DeepScanPerformed bool
}

// TotalChanges returns the number of records across all four buckets
func (r *ScanResult) TotalChanges() int {
	return len(r.NewFiles) + len(r.ModifiedFiles) + len(r.MissingFiles) + len(r.DuplicateLocations)
}

// HasDuplicates reports whether relocation detection ran and found pairs
func (r *ScanResult) HasDuplicates() bool {
	return r.DeepScanPerformed && len(r.DuplicateLocations) > 0
}
