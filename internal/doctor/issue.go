package doctor

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category groups issues by the part of the setup they concern and selects
// the repair action for fixable ones.
type Category string

const (
	CategorySymlink    Category = "symlink"
	CategoryStorage    Category = "storage"
	CategoryTemplate   Category = "template"
	CategoryPermission Category = "permission"
)

// Issue is one finding of a validation run.
type Issue struct {
	Severity Severity
	Category Category
	Message  string
	Path     string
	Fixable  bool
}

// Report collects the issues found for one project.
type Report struct {
	Project     string
	ProjectPath string
	Issues      []Issue
}

func (r *Report) add(sev Severity, cat Category, path, msg string, fixable bool) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Category: cat, Message: msg, Path: path, Fixable: fixable})
}

// Healthy reports whether no error or warning was found. Info findings do
// not count.
func (r *Report) Healthy() bool {
	return r.Count(SeverityError)+r.Count(SeverityWarning) == 0
}

// Count returns the number of issues with severity sev.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Fixable returns the issues a repair pass would attempt.
func (r *Report) Fixable() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Fixable {
			out = append(out, i)
		}
	}
	return out
}

// RepairResult tallies a repair pass.
type RepairResult struct {
	Attempted int
	Fixed     int
	Failed    int
}
