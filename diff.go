package translator

import (
	"sort"

	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

// Field is a string value found in a document.
type Field struct {
	Path string // location, e.g. "places[0].name"
	Key  string // key used for classification; array items use their array's key
	Text string
}

// Fields returns every string primitive of doc in document order.
func Fields(doc *document.Node) []Field {
	var out []Field
	collectFields(doc, "", "", &out)
	return out
}

func collectFields(n *document.Node, key, path string, out *[]Field) {
	switch n.Kind() {
	case document.Object:
		for _, k := range n.Keys() {
			v, _ := n.Get(k)
			collectFields(v, k, document.Key(path, k), out)
		}
	case document.Array:
		for i, v := range n.Items() {
			collectFields(v, key, document.Index(path, i), out)
		}
	case document.String:
		s, _ := n.Str()
		*out = append(*out, Field{Path: path, Key: key, Text: s})
	}
}

// DiffResult is the difference between two versions of a source document.
type DiffResult struct {
	// Added holds fields at paths the previous version did not have.
	Added []Field

	// Removed holds fields whose path is gone.
	Removed []Field

	// Unchanged holds fields with the same path and text in both versions.
	Unchanged []Field

	// Modified holds fields whose path survived but whose text changed.
	Modified []ModifiedField
}

// ModifiedField pairs the old and new text of one path.
type ModifiedField struct {
	Old Field
	New Field
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the fields whose text the cache cannot have seen
// for this document: added fields and the new side of modified ones.
func (d *DiffResult) NeedsTranslation() []Field {
	result := make([]Field, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// DiffDocuments compares the string fields of two versions of a document
// by path. A nil side counts as an empty document.
func DiffDocuments(oldDoc, newDoc *document.Node) *DiffResult {
	var oldFields, newFields []Field
	if oldDoc != nil {
		oldFields = Fields(oldDoc)
	}
	if newDoc != nil {
		newFields = Fields(newDoc)
	}

	oldByPath := make(map[string]Field, len(oldFields))
	for _, f := range oldFields {
		oldByPath[f.Path] = f
	}
	newPaths := make(map[string]bool, len(newFields))

	result := &DiffResult{}
	for _, nf := range newFields {
		newPaths[nf.Path] = true
		of, ok := oldByPath[nf.Path]
		switch {
		case !ok:
			result.Added = append(result.Added, nf)
		case of.Text == nf.Text:
			result.Unchanged = append(result.Unchanged, nf)
		default:
			result.Modified = append(result.Modified, ModifiedField{Old: of, New: nf})
		}
	}
	for _, of := range oldFields {
		if !newPaths[of.Path] {
			result.Removed = append(result.Removed, of)
		}
	}
	return result
}
