package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Content is the loosely-typed authoring bag of a block. Values arrive from
// JSON, so lists are []any and numbers are float64.
type Content map[string]any

// String returns the string at key, or "" when absent or not textual.
func (c Content) String(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// Strings returns the list at key as strings. Non-string entries are
// formatted; a missing or malformed value yields an empty slice.
func (c Content) Strings(key string) []string {
	switch v := c[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case nil:
				out = append(out, "")
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	}
	return []string{}
}

// Bool returns the boolean at key, or def when absent.
func (c Content) Bool(key string, def bool) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// SupportTexts decodes the support passages stored at key. Entries may be
// plain strings or objects with title/content/source.
func (c Content) SupportTexts(key string) []SupportText {
	raw, ok := c[key]
	if !ok || raw == nil {
		return []SupportText{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return []SupportText{}
	}
	var texts []SupportText
	if err := json.Unmarshal(data, &texts); err != nil {
		return []SupportText{}
	}
	return texts
}

// Merge shallow-merges patch into c, returning a new bag.
func (c Content) Merge(patch Content) Content {
	out := make(Content, len(c)+len(patch))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Clone deep-copies the bag through JSON so nested lists are not shared.
func (c Content) Clone() Content {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return c.Merge(nil)
	}
	var out Content
	if err := json.Unmarshal(data, &out); err != nil {
		return c.Merge(nil)
	}
	return out
}
