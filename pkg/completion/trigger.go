package completion

import (
	"regexp"
	"strings"
)

// Kind classifies what the cursor context suggests completing.
type Kind string

const (
	KindComment             Kind = "comment"
	KindFunctionDeclaration Kind = "function_declaration"
	KindArduinoFunction     Kind = "arduino_function"
	KindMethod              Kind = "method"
	KindEmptyLineInFunction Kind = "empty_line_in_function"
)

// Position is a zero-based cursor location.
type Position struct {
	Line   int
	Column int
}

// Decision is the trigger verdict for one cursor position. CacheKey is
// empty for context-dependent kinds whose results must not be reused.
type Decision struct {
	Trigger  bool
	Kind     Kind
	CacheKey string
}

// DefaultMinCommentLength is the shortest comment text that counts as
// a meaningful instruction. Shorter comments ("fix:", "todo:") carry
// too little intent to complete from.
const DefaultMinCommentLength = 8

// funcDeclPattern matches a type-keyword function head like
// "void blinkFast(int ms)" with an optional opening brace.
var funcDeclPattern = regexp.MustCompile(
	`^(void|bool|boolean|byte|char|int|long|short|float|double|word|String|size_t|u?int(8|16|32|64)_t|unsigned\s+(int|long|char))\s+([A-Za-z_]\w*)\s*\([^)]*\)\s*\{?$`)

// lifecycleFuncs are the sketch callbacks the runtime invokes itself.
var lifecycleFuncs = map[string]bool{
	"setup":       true,
	"loop":        true,
	"serialEvent": true,
}

// Detector decides whether the cursor context warrants an inline
// completion request, and under which cache key.
type Detector struct {
	// MinCommentLength overrides the meaningful-comment threshold.
	// Zero means DefaultMinCommentLength.
	MinCommentLength int
}

// NewDetector returns a detector with default thresholds.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect classifies the cursor context. It never triggers with text
// after the cursor on the same line, inside an open string literal, or
// inside a block comment. Inside a line comment the single allowed
// case is a comment ending in ':' that is long enough to state intent.
func (d *Detector) Detect(document string, pos Position) Decision {
	lines := strings.Split(document, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return Decision{}
	}
	line := lines[pos.Line]
	col := pos.Column
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}

	if strings.TrimSpace(line[col:]) != "" {
		return Decision{}
	}

	offset := col
	for i := 0; i < pos.Line; i++ {
		offset += len(lines[i]) + 1
	}
	st := scanTo(document[:offset])

	if st.inString || st.inChar || st.inBlockComment {
		return Decision{}
	}

	prefix := strings.TrimSpace(line[:col])

	if st.inLineComment {
		return d.commentDecision(prefix)
	}

	if prefix == "" {
		if st.braceDepth > 0 {
			// Context-dependent: the surrounding body shapes the
			// completion, so the result is never cached.
			return Decision{Trigger: true, Kind: KindEmptyLineInFunction}
		}
		return Decision{}
	}

	if m := funcDeclPattern.FindStringSubmatch(prefix); m != nil {
		name := m[len(m)-1]
		if lifecycleFuncs[name] && strings.HasSuffix(prefix, "{") {
			return Decision{Trigger: true, Kind: KindArduinoFunction, CacheKey: "arduino:" + name}
		}
		return Decision{Trigger: true, Kind: KindFunctionDeclaration, CacheKey: "func:" + name}
	}

	if ident := trailingMethodIdent(prefix); ident != "" {
		return Decision{Trigger: true, Kind: KindMethod, CacheKey: "method:" + ident}
	}

	return Decision{}
}

// commentDecision handles the cursor sitting inside a line comment.
func (d *Detector) commentDecision(prefix string) Decision {
	idx := strings.LastIndex(prefix, "//")
	if idx < 0 || !strings.HasSuffix(prefix, ":") {
		return Decision{}
	}

	text := strings.TrimSpace(strings.TrimSuffix(prefix[idx+2:], ":"))
	minLen := d.MinCommentLength
	if minLen <= 0 {
		minLen = DefaultMinCommentLength
	}
	if len(text) < minLen {
		return Decision{}
	}

	key := "comment:" + strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return Decision{Trigger: true, Kind: KindComment, CacheKey: key}
}

// trailingMethodIdent returns the identifier before a trailing '.',
// or "" when the prefix does not end in a member access.
func trailingMethodIdent(prefix string) string {
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}
	end := len(prefix) - 1
	start := end
	for start > 0 && isIdentChar(prefix[start-1]) {
		start--
	}
	ident := prefix[start:end]
	if ident == "" || (ident[0] >= '0' && ident[0] <= '9') {
		return ""
	}
	return ident
}

func isIdentChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

// scanState is the lexical context at a document offset.
type scanState struct {
	inBlockComment bool
	inLineComment  bool
	inString       bool
	inChar         bool
	braceDepth     int
}

// scanTo runs a forward scan over text, tracking string literals (with
// escape handling), comments, and brace depth. String and character
// literals end at a newline; an unterminated quote poisons only its
// own line.
func scanTo(text string) scanState {
	var st scanState
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case st.inLineComment:
			if ch == '\n' {
				st.inLineComment = false
			}
		case st.inBlockComment:
			if ch == '*' && i+1 < len(text) && text[i+1] == '/' {
				st.inBlockComment = false
				i++
			}
		case st.inString:
			switch ch {
			case '\\':
				i++
			case '"', '\n':
				st.inString = false
			}
		case st.inChar:
			switch ch {
			case '\\':
				i++
			case '\'', '\n':
				st.inChar = false
			}
		default:
			switch ch {
			case '/':
				if i+1 < len(text) {
					switch text[i+1] {
					case '/':
						st.inLineComment = true
						i++
					case '*':
						st.inBlockComment = true
						i++
					}
				}
			case '"':
				st.inString = true
			case '\'':
				st.inChar = true
			case '{':
				st.braceDepth++
			case '}':
				if st.braceDepth > 0 {
					st.braceDepth--
				}
			}
		}
	}
	return st
}
