// Package checker defines the single-line checker contract and the built-in rules.
package checker

// Change is one added or modified line in a commit.
type Change struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Line    int    `json:"line"`
}

// Violation is reported when a checker matches a Change.
type Violation struct {
	Path    string `json:"path"`
	Checker string `json:"checker"`
	Message string `json:"message"`
	Line    int    `json:"line"`
}

// Checker evaluates a single Change. Implementations must be stateless: the
// verdict depends only on the Change passed in.
type Checker interface {
	Name() string
	Check(change Change) (Violation, bool)
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc struct {
	Fn      func(line string) bool
	ID      string
	Message string
}

// Name returns the checker name
func (f CheckerFunc) Name() string {
	return f.ID
}

// Check reports a violation when Fn returns true for the change content
func (f CheckerFunc) Check(change Change) (Violation, bool) {
	if f.Fn == nil || !f.Fn(change.Content) {
		return Violation{}, false
	}
	return newViolation(change, f.ID, f.Message), true
}

func newViolation(change Change, name, message string) Violation {
	return Violation{
		Path:    change.Path,
		Line:    change.Line,
		Checker: name,
		Message: message,
	}
}
