package linker

// State classifies what currently occupies a link path.
type State string

const (
	// StateAbsent means nothing exists at the path.
	StateAbsent State = "absent"
	// StateValid is a symlink that resolves to the expected storage entry.
	StateValid State = "valid"
	// StateStale is a symlink with a wrong or unreachable target.
	StateStale State = "stale"
	// StateForeign is a real file or directory in place of the link.
	StateForeign State = "foreign"
)

// Link describes one of the two project links.
type Link struct {
	Path   string // link location inside the work tree
	Want   string // relative target the link should carry
	Target string // raw target currently on disk, empty unless a symlink
	State  State
}

// Status is the state of both links of a project.
type Status struct {
	ClaudeDir Link
	ClaudeMD  Link
}

// Links returns the two links in a fixed order.
func (s Status) Links() []Link {
	return []Link{s.ClaudeDir, s.ClaudeMD}
}

// Managed reports whether both links are valid.
func (s Status) Managed() bool {
	return s.ClaudeDir.State == StateValid && s.ClaudeMD.State == StateValid
}

// SyncResult lists what CreateProjectSymlinks did to each link path.
type SyncResult struct {
	Created    []string // links made where nothing was
	Replaced   []string // stale links recreated
	Kept       []string // links already pointing at the right target
	MovedAside []string // new locations of foreign entries
}

// Changed reports whether anything on disk was modified.
func (r *SyncResult) Changed() bool {
	return len(r.Created)+len(r.Replaced)+len(r.MovedAside) > 0
}
