package vitis

import "fmt"

// Aggregate merges positional and keyword sources into one list, positional
// first. Duplicates are kept; the compiler decides what to do with them.
func Aggregate(positional, keyword []SourceRef) ([]SourceRef, error) {
	all := make([]SourceRef, 0, len(positional)+len(keyword))
	for _, group := range []struct {
		name string
		refs []SourceRef
	}{
		{"positional", positional},
		{"sources", keyword},
	} {
		for i, ref := range group.refs {
			if _, err := sourcePath(ref); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", group.name, i, err)
			}
			all = append(all, ref)
		}
	}
	return all, nil
}
