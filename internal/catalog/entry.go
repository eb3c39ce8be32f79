// Package catalog holds book records in memory and answers title queries
// while excluding entries whose subject or author has been hidden.
package catalog

// Entry is one book record. Entries are never modified after they are added.
type Entry struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subjects []string `json:"subjects"`
}

// HasSubject reports whether subject is listed on the entry.
func (e Entry) HasSubject(subject string) bool {
	for _, s := range e.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

func (e Entry) clone() Entry {
	subjects := make([]string, len(e.Subjects))
	copy(subjects, e.Subjects)
	e.Subjects = subjects
	return e
}

// Adder is anything that can take new catalog entries.
type Adder interface {
	AddBook(title, author string, subjects []string)
}
