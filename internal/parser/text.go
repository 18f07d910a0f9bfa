package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

// PeriodDelimiter separates sampling periods in the text dump.
const PeriodDelimiter = "==="

// fallbackEncodings are tried in order when the file is not valid UTF-8.
var fallbackEncodings = []encoding.Encoding{
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// decodeContent turns raw file bytes into a string. Valid UTF-8 is used as
// is; otherwise the fallback encodings are tried in order, and as a last
// resort invalid bytes are replaced rather than failing the parse.
func decodeContent(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	for _, enc := range fallbackEncodings {
		if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
			return string(decoded)
		}
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

// coerceValue converts a value token to int64 or float64, keeping the raw
// string when numeric parsing fails. Tokens with a decimal point go through
// the float path so integer counters stay integers.
func coerceValue(token string) *models.Node {
	if strings.Contains(token, ".") {
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return models.NewFloat(f)
		}
		return models.NewString(token)
	}
	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return models.NewInt(i)
	}
	return models.NewString(token)
}

type frame struct {
	key    string
	indent int
}

// ParseText parses the indentation-structured text dump into one tree per
// period. Lines without a colon and elided ("...") lines are skipped; a
// missing or malformed line never aborts the period.
func ParseText(content string) []*models.Node {
	var result []*models.Node

	for _, block := range strings.Split(content, PeriodDelimiter) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		result = append(result, parsePeriod(block))
	}

	return result
}

func parsePeriod(block string) *models.Node {
	period := models.NewSection()
	var stack []frame

	for _, line := range strings.Split(block, "\n") {
		if line == "" || strings.HasPrefix(strings.TrimSpace(line), "...") {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		colon := strings.Index(trimmed, ":")
		if colon < 0 {
			continue
		}

		key := strings.TrimSpace(trimmed[:colon])
		rest := trimmed[colon+1:]

		// A trailing '#' comment never counts as a value: a header line like
		// "westmere: # Core stats" keeps its comment but carries no payload.
		if hash := strings.Index(rest, "#"); hash >= 0 {
			rest = rest[:hash]
		}
		rest = strings.TrimSpace(rest)

		// Close sibling and ancestor sections. A sharp indentation drop pops
		// several frames in one pass.
		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		if rest == "" {
			// Section header.
			stack = append(stack, frame{key: key, indent: indent})
			sectionAt(period, stack)
		} else {
			sectionAt(period, stack).SetChild(key, coerceValue(rest))
		}
	}

	return period
}

// sectionAt walks the stack path from the period root, creating missing
// sections along the way. An already-present section is reused, not reset.
func sectionAt(period *models.Node, stack []frame) *models.Node {
	current := period
	for _, f := range stack {
		child, ok := current.Child(f.key)
		if !ok || child.Kind() != models.KindSection {
			child = models.NewSection()
			current.SetChild(f.key, child)
		}
		current = child
	}
	return current
}
