package urlhttp

import "strings"

// Header is one name/value pair in a HeaderList.
type Header struct {
	Name  string
	Value string
}

// HeaderList is an ordered sequence of header fields, unique
// case-insensitively by name. Add preserves the position of the first
// occurrence of a name and overwrites its value on subsequent adds,
// matching spec.md's "Insertion preserves first-added order; updates
// overwrite value in place."
type HeaderList []Header

// Add sets name to value, overwriting an existing case-insensitive match
// in place or appending a new entry if none exists.
func (h *HeaderList) Add(name, value string) {
	for i := range *h {
		if strings.EqualFold((*h)[i].Name, name) {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, Header{Name: name, Value: value})
}

// Get returns the value of the first case-insensitive match for name.
func (h HeaderList) Get(name string) (string, bool) {
	for _, e := range h {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return "", false
}

// Has reports whether name is present, case-insensitively.
func (h HeaderList) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Remove deletes the first case-insensitive match for name, if any.
func (h *HeaderList) Remove(name string) {
	for i := range *h {
		if strings.EqualFold((*h)[i].Name, name) {
			*h = append((*h)[:i], (*h)[i+1:]...)
			return
		}
	}
}

// Output renders the list as CRLF-terminated "Name: Value" lines, in
// insertion order, with no trailing blank line.
func (h HeaderList) Output() string {
	var b strings.Builder
	for _, e := range h {
		b.WriteString(e.Name)
		b.WriteString(": ")
		b.WriteString(e.Value)
		b.WriteString("\r\n")
	}
	return b.String()
}
