package format

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// TOON (token-oriented object notation) is an indentation-based encoding of
// the JSON data model that spends fewer tokens than JSON on uniform data:
//
//	user:
//	  _id: 1
//	  fullName: Ada
//	tags[2]: go,cli
//	items[2]{_id,title}:
//	  1,First
//	  2,Second

const indentUnit = "  "

var bareKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func writeTOON(w io.Writer, n *node) error {
	var b strings.Builder
	switch n.kind {
	case objectNode:
		writeFields(&b, n, 0)
	case arrayNode:
		writeArray(&b, "", n, 0)
	default:
		b.WriteString(toonScalar(n.value))
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write toon: %w", err)
	}
	return nil
}

func writeFields(b *strings.Builder, obj *node, depth int) {
	for i, key := range obj.keys {
		writeField(b, key, obj.fields[i], depth)
	}
}

func writeField(b *strings.Builder, key string, v *node, depth int) {
	prefix := indent(depth) + toonKey(key)
	switch v.kind {
	case scalarNode:
		b.WriteString(prefix + ": " + toonScalar(v.value) + "\n")
	case objectNode:
		b.WriteString(prefix + ":\n")
		writeFields(b, v, depth+1)
	case arrayNode:
		writeArray(b, prefix, v, depth)
	}
}

// writeArray writes an array header after prefix and its items below it.
func writeArray(b *strings.Builder, prefix string, arr *node, depth int) {
	n := len(arr.items)
	header := prefix + "[" + strconv.Itoa(n) + "]"

	if n == 0 {
		b.WriteString(header + ":\n")
		return
	}

	if arr.allPrimitive() {
		vals := make([]string, n)
		for i, it := range arr.items {
			vals[i] = toonScalar(it.value)
		}
		b.WriteString(header + ": " + strings.Join(vals, ",") + "\n")
		return
	}

	if fields, ok := arr.tabularFields(); ok {
		keys := make([]string, len(fields))
		for i, f := range fields {
			keys[i] = toonKey(f)
		}
		b.WriteString(header + "{" + strings.Join(keys, ",") + "}:\n")
		rowIndent := indent(depth + 1)
		for _, it := range arr.items {
			vals := make([]string, len(it.fields))
			for i, f := range it.fields {
				vals[i] = toonScalar(f.value)
			}
			b.WriteString(rowIndent + strings.Join(vals, ",") + "\n")
		}
		return
	}

	b.WriteString(header + ":\n")
	for _, it := range arr.items {
		writeListItem(b, it, depth+1)
	}
}

// writeListItem writes one "- " entry of a mixed array.
func writeListItem(b *strings.Builder, it *node, depth int) {
	pad := indent(depth)
	switch it.kind {
	case scalarNode:
		b.WriteString(pad + "- " + toonScalar(it.value) + "\n")
	case arrayNode:
		writeArray(b, pad+"- ", it, depth)
	case objectNode:
		if len(it.keys) == 0 {
			b.WriteString(pad + "-\n")
			return
		}
		// Fields are written one level deeper; the first line's extra
		// indent is replaced by the list marker.
		var item strings.Builder
		writeFields(&item, it, depth+1)
		s := item.String()
		b.WriteString(pad + "- " + s[len(pad)+len(indentUnit):])
	}
}

func indent(depth int) string {
	return strings.Repeat(indentUnit, depth)
}

func toonKey(k string) string {
	if bareKey.MatchString(k) {
		return k
	}
	return quote(k)
}

func toonScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case string:
		if needsQuote(t) {
			return quote(t)
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}

// needsQuote reports whether s would be ambiguous unquoted: empty, padded,
// a keyword or number lookalike, or containing structural characters.
func needsQuote(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return true
	}
	switch s {
	case "true", "false", "null":
		return true
	}
	if looksNumeric(s) || strings.HasPrefix(s, "-") {
		return true
	}
	for _, r := range s {
		switch r {
		case ':', ',', '"', '\\', '[', ']', '{', '}':
			return true
		}
		if r < 0x20 {
			return true
		}
	}
	return false
}

func looksNumeric(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	// Leading-zero integers like "007" would not round-trip as strings.
	if len(s) > 1 && s[0] == '0' {
		for _, r := range s[1:] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
