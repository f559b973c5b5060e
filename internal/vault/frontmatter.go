package vault

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Characters that force a value into a literal block scalar. Everything in
// this set is meaningful to the embedding format when left bare.
const yamlSpecialChars = ":#{}[],&*?|<>=!%@`"

// Frontmatter is the metadata block embedded at the top of a synced document.
// OriginalNote is the reconciliation engine's only persisted state: it always
// reflects the note as of the last successful sync in either direction.
type Frontmatter struct {
	BookmarkID      string
	URL             string
	Title           string
	Date            string
	FullPageArchive string
	Tags            []string
	Note            string
	OriginalNote    string
	Summary         string

	// Keys this tool doesn't own survive a marker rewrite.
	extra map[string]string
}

// Encode emits the frontmatter block deterministically: fixed key order,
// fixed quoting rules, byte-stable for identical input.
func (fm *Frontmatter) Encode() string {
	var b strings.Builder
	b.WriteString("---\n")
	writeField(&b, "bookmark_id", fm.BookmarkID)
	writeField(&b, "url", fm.URL)
	writeField(&b, "title", fm.Title)
	writeField(&b, "date", fm.Date)
	if fm.FullPageArchive != "" {
		writeField(&b, "full_page_archive", fm.FullPageArchive)
	}
	if len(fm.Tags) == 0 {
		b.WriteString("tags: []\n")
	} else {
		b.WriteString("tags:\n")
		for _, tag := range fm.Tags {
			b.WriteString("  - \"" + strings.ReplaceAll(tag, `"`, `\"`) + "\"\n")
		}
	}
	// The note fields must survive a parse byte for byte, so they are always
	// double-quoted: bare scalars would let YAML typing rewrite values like
	// "1.10", and block chomping would drop trailing newlines.
	writeQuotedField(&b, "note", fm.Note)
	writeQuotedField(&b, "original_note", fm.OriginalNote)
	writeField(&b, "summary", fm.Summary)

	extraKeys := make([]string, 0, len(fm.extra))
	for k := range fm.extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		writeField(&b, k, fm.extra[k])
	}

	b.WriteString("---\n")
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(escapeValue(value))
	b.WriteString("\n")
}

func writeQuotedField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(strconv.Quote(value))
	b.WriteString("\n")
}

// escapeValue picks the safest scalar style for a value: literal block for
// newlines and format-significant characters, single quotes around double
// quotes, double quotes around single quotes or edge whitespace, bare
// otherwise.
func escapeValue(v string) string {
	if v == "" {
		return `""`
	}
	if strings.Contains(v, "\n") || strings.ContainsAny(v, yamlSpecialChars) {
		var b strings.Builder
		// A first content line that itself starts with whitespace would make
		// the block's indentation ambiguous, so declare it explicitly.
		if blockNeedsIndicator(v) {
			b.WriteString("|2-")
		} else {
			b.WriteString("|-")
		}
		for _, line := range strings.Split(v, "\n") {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
		return b.String()
	}
	if strings.Contains(v, `"`) {
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	if strings.Contains(v, "'") || strings.TrimSpace(v) != v {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}

// blockNeedsIndicator reports whether the first non-blank line of a block
// scalar starts with a space, which is the line YAML reads the block's
// indentation from.
func blockNeedsIndicator(v string) bool {
	for _, line := range strings.Split(v, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return strings.HasPrefix(line, " ")
	}
	return false
}

// ParseFrontmatter extracts the metadata block from a document. Reports false
// when the document carries no well-formed frontmatter.
func ParseFrontmatter(content string) (*Frontmatter, bool) {
	metaBlock, _, ok := splitFrontmatter(content)
	if !ok {
		return nil, false
	}
	return decodeMeta(metaBlock)
}

// UpdateOriginalNote rewrites only the original_note marker, leaving the
// document body untouched. Used by the edit watcher's delayed write-back.
func UpdateOriginalNote(content, original string) (string, bool) {
	metaBlock, body, ok := splitFrontmatter(content)
	if !ok {
		return content, false
	}
	fm, ok := decodeMeta(metaBlock)
	if !ok {
		return content, false
	}
	fm.OriginalNote = original
	return fm.Encode() + body, true
}

func splitFrontmatter(content string) (meta, body string, ok bool) {
	if !strings.HasPrefix(content, "---\n") {
		return "", "", false
	}
	rest := content[len("---\n"):]
	if idx := strings.Index(rest, "\n---\n"); idx >= 0 {
		return rest[:idx], rest[idx+len("\n---\n"):], true
	}
	if strings.HasSuffix(rest, "\n---") {
		return rest[:len(rest)-len("\n---")], "", true
	}
	return "", "", false
}

func decodeMeta(metaBlock string) (*Frontmatter, bool) {
	raw := map[string]any{}
	if err := yaml.Unmarshal([]byte(metaBlock), &raw); err != nil {
		return nil, false
	}

	fm := &Frontmatter{
		BookmarkID:      stringVal(raw, "bookmark_id"),
		URL:             stringVal(raw, "url"),
		Title:           stringVal(raw, "title"),
		Date:            stringVal(raw, "date"),
		FullPageArchive: stringVal(raw, "full_page_archive"),
		Note:            stringVal(raw, "note"),
		OriginalNote:    stringVal(raw, "original_note"),
		Summary:         stringVal(raw, "summary"),
	}
	if tags, ok := raw["tags"].([]any); ok {
		for _, t := range tags {
			fm.Tags = append(fm.Tags, fmt.Sprint(t))
		}
	}

	known := map[string]bool{
		"bookmark_id": true, "url": true, "title": true, "date": true,
		"full_page_archive": true, "tags": true, "note": true,
		"original_note": true, "summary": true,
	}
	for k := range raw {
		if known[k] {
			continue
		}
		if fm.extra == nil {
			fm.extra = map[string]string{}
		}
		fm.extra[k] = stringVal(raw, k)
	}
	return fm, true
}

func stringVal(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ExtractNotes returns the current contents of the document's Notes section.
// Reports false when the document has no Notes section at all.
func ExtractNotes(content string) (string, bool) {
	var start int
	if idx := strings.Index(content, "\n## Notes\n"); idx >= 0 {
		start = idx + len("\n## Notes\n")
	} else if strings.HasPrefix(content, "## Notes\n") {
		start = len("## Notes\n")
	} else {
		return "", false
	}
	section := content[start:]
	for _, terminator := range []string{"\n## ", "\n[Visit Link]"} {
		if j := strings.Index(section, terminator); j >= 0 {
			section = section[:j]
		}
	}
	return strings.TrimSpace(section), true
}
