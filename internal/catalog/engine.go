package catalog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// FilterKind names which hidden set a filter value belongs to.
type FilterKind string

const (
	KindSubject FilterKind = "subject"
	KindAuthor  FilterKind = "author"
)

// Engine owns the catalog and the two exclusion sets. All methods are safe
// for concurrent use; one RWMutex serializes mutations against each other
// and against searches.
type Engine struct {
	mu             sync.RWMutex
	entries        []Entry
	hiddenSubjects *Set
	hiddenAuthors  *Set

	validator FilterValidator
	policy    Policy
	logger    *slog.Logger
	onInvalid func(kind FilterKind, value string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the sink for invalid-filter warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithValidator replaces the catalog-backed validator used by hide
// operations. The replacement must not call back into the Engine's hide
// methods.
func WithValidator(v FilterValidator) Option {
	return func(e *Engine) { e.validator = v }
}

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithInvalidFilterHook registers fn to be called, after the warning is
// logged, whenever a hide operation targets a value the validator rejects.
func WithInvalidFilterHook(fn func(kind FilterKind, value string)) Option {
	return func(e *Engine) { e.onInvalid = fn }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		hiddenSubjects: NewSet(),
		hiddenAuthors:  NewSet(),
		policy:         PolicyWarn,
		logger:         slog.Default().With("component", "catalog"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.validator == nil {
		e.validator = e
	}
	return e
}

// AddBook appends an entry to the end of the catalog.
func (e *Engine) AddBook(title, author string, subjects []string) {
	entry := Entry{Title: title, Author: author, Subjects: subjects}.clone()

	e.mu.Lock()
	e.entries = append(e.entries, entry)
	e.mu.Unlock()
}

func (e *Engine) HideSubject(subject string) {
	e.hide(KindSubject, subject)
}

func (e *Engine) HideAuthor(author string) {
	e.hide(KindAuthor, author)
}

func (e *Engine) RemoveSubject(subject string) {
	e.mu.Lock()
	e.hiddenSubjects.Remove(subject)
	e.mu.Unlock()
}

func (e *Engine) RemoveAuthor(author string) {
	e.mu.Lock()
	e.hiddenAuthors.Remove(author)
	e.mu.Unlock()
}

// hide inserts value into the set for kind. Under PolicyWarn the validator
// runs before the write lock is taken, since the default validator is the
// Engine itself.
func (e *Engine) hide(kind FilterKind, value string) {
	set := e.setFor(kind)
	valid := true
	if e.policy == PolicyWarn {
		switch kind {
		case KindSubject:
			valid = e.validator.ValidateSubjectFilter(value)
		case KindAuthor:
			valid = e.validator.ValidateAuthorFilter(value)
		}
	}

	e.mu.Lock()
	set.Add(value)
	e.mu.Unlock()

	if !valid {
		e.logger.Warn("Invalid " + string(kind) + " filter applied: " + value)
		if e.onInvalid != nil {
			e.onInvalid(kind, value)
		}
	}
}

// setFor returns the hidden set for kind. An unknown kind is a programming
// error and panics before any state changes.
func (e *Engine) setFor(kind FilterKind) *Set {
	switch kind {
	case KindSubject:
		return e.hiddenSubjects
	case KindAuthor:
		return e.hiddenAuthors
	default:
		panic(fmt.Sprintf("catalog: unknown filter kind %q", kind))
	}
}

// ValidateSubjectFilter reports whether any entry lists subject.
func (e *Engine) ValidateSubjectFilter(subject string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.entries {
		if entry.HasSubject(subject) {
			return true
		}
	}
	return false
}

// ValidateAuthorFilter reports whether any entry has exactly this author.
func (e *Engine) ValidateAuthorFilter(author string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.entries {
		if entry.Author == author {
			return true
		}
	}
	return false
}

// Search returns, in catalog order, every entry that is not excluded and
// whose title contains query under Unicode case folding. An empty query
// matches every entry that is not excluded.
func (e *Engine) Search(query string) []Entry {
	// Casers carry transform state, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]Entry, 0)
	for _, entry := range e.entries {
		if e.excluded(entry) {
			continue
		}
		if needle == "" || strings.Contains(fold.String(entry.Title), needle) {
			results = append(results, entry.clone())
		}
	}
	return results
}

// excluded must be called with mu held.
func (e *Engine) excluded(entry Entry) bool {
	return e.hiddenAuthors.Has(entry.Author) || e.hiddenSubjects.HasAny(entry.Subjects)
}

func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

// Entries returns a copy of the catalog in insertion order.
func (e *Engine) Entries() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Entry, len(e.entries))
	for i, entry := range e.entries {
		out[i] = entry.clone()
	}
	return out
}

// HiddenSubjects returns the hidden subjects in sorted order.
func (e *Engine) HiddenSubjects() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hiddenSubjects.Values()
}

// HiddenAuthors returns the hidden authors in sorted order.
func (e *Engine) HiddenAuthors() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hiddenAuthors.Values()
}
