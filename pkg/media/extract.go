// Package media finds hosted asset identifiers referenced by stored documents.
package media

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

// IDSet is a set of asset public ids
type IDSet map[string]struct{}

// Add inserts id; empty ids are ignored
func (s IDSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports membership
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of distinct ids
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the ids in lexical order
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ExtractPublicIDs collects the public ids referenced by every media field
// the schema declares, across all docs. Values that are absent, null or not
// shaped like a media reference are skipped.
func ExtractPublicIDs(cfg *schema.CollectionConfig, docs []schema.Document) IDSet {
	ids := make(IDSet)
	if cfg == nil {
		return ids
	}
	fields := cfg.MediaFields()
	if len(fields) == 0 {
		return ids
	}

	for _, doc := range docs {
		for _, f := range fields {
			collect(ids, doc.Fields[f.Name])
		}
	}
	return ids
}

func collect(ids IDSet, value any) {
	switch v := value.(type) {
	case []any:
		for _, elem := range v {
			ids.Add(publicID(elem))
		}
	case []map[string]any:
		for _, elem := range v {
			ids.Add(publicID(elem))
		}
	case []schema.MediaReference:
		for _, ref := range v {
			ids.Add(ref.PublicID)
		}
	default:
		ids.Add(publicID(v))
	}
}

// publicID returns the truthy publicId of a single reference, or ""
func publicID(value any) string {
	switch v := value.(type) {
	case map[string]any:
		return scalarID(v["publicId"])
	case schema.MediaReference:
		return v.PublicID
	case *schema.MediaReference:
		if v != nil {
			return v.PublicID
		}
	}
	return ""
}

// scalarID renders a truthy string or numeric id; zero, false and
// non-scalar values yield ""
func scalarID(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v != 0 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case int:
		if v != 0 {
			return strconv.Itoa(v)
		}
	case int64:
		if v != 0 {
			return strconv.FormatInt(v, 10)
		}
	case json.Number:
		if f, err := v.Float64(); err == nil && f != 0 {
			return v.String()
		}
	}
	return ""
}
