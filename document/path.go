package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Key returns the path of member key below parent ("place.name").
func Key(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// Index returns the path of item i below parent ("places[2]").
func Index(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// Lookup resolves a dotted/bracketed path such as "places[0].name" against
// root. Keys containing dots cannot be addressed.
func Lookup(root *Node, path string) (*Node, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	cur := root
	for _, seg := range segments {
		if seg.index >= 0 {
			next, ok := cur.Index(seg.index)
			if !ok {
				return nil, fmt.Errorf("path %q: index %d out of range", path, seg.index)
			}
			cur = next
			continue
		}
		next, ok := cur.Get(seg.key)
		if !ok {
			return nil, fmt.Errorf("path %q: key %q not found", path, seg.key)
		}
		cur = next
	}
	return cur, nil
}

type segment struct {
	key   string
	index int
}

func splitPath(path string) ([]segment, error) {
	var out []segment
	if path == "" {
		return out, nil
	}
	for _, part := range strings.Split(path, ".") {
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				out = append(out, segment{key: part, index: -1})
				break
			}
			if open > 0 {
				out = append(out, segment{key: part[:open], index: -1})
			}
			end := strings.IndexByte(part[open:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unterminated index", path)
			}
			i, err := strconv.Atoi(part[open+1 : open+end])
			if err != nil {
				return nil, fmt.Errorf("path %q: bad index: %w", path, err)
			}
			out = append(out, segment{index: i})
			part = part[open+end+1:]
		}
	}
	return out, nil
}
