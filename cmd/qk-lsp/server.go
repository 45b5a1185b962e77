package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/questicle/questicle"
)

func serverVersion() string { return questicle.Version }

type server struct {
	mu   sync.Mutex
	out  *bufio.Writer
	docs map[string]string
}

func newServer(out *bufio.Writer) *server {
	return &server{out: out, docs: make(map[string]string)}
}

func (s *server) send(v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("encode: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(body), body)
	s.out.Flush()
}

func (s *server) reply(id *json.RawMessage, result any) {
	s.send(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *server) replyError(id *json.RawMessage, code int, msg string) {
	s.send(response{JSONRPC: "2.0", ID: id, Error: &responseError{Code: code, Message: msg}})
}

func (s *server) notify(method string, params any) {
	s.send(notification{JSONRPC: "2.0", Method: method, Params: params})
}

// ----- document lifecycle -----

func (s *server) open(uri, text string) {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()
	s.publishDiagnostics(uri, text)
}

func (s *server) close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
	s.notify("textDocument/publishDiagnostics",
		publishDiagnosticsParams{URI: uri, Diagnostics: []diagnostic{}})
}

func (s *server) text(uri string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.docs[uri]
	return t, ok
}

// ----- diagnostics -----

// publishDiagnostics reports the parse error, if any, as an error;
// otherwise the type checker's advisories as warnings.
func (s *server) publishDiagnostics(uri, text string) {
	diags := []diagnostic{}
	prog, err := questicle.NewParser(text).Parse()
	if err != nil {
		if pe, ok := err.(*questicle.ParseError); ok {
			diags = append(diags, diagnostic{
				Range:    rangeAt(text, pe.Line, pe.Col),
				Severity: severityError,
				Source:   "questicle",
				Message:  pe.Error(),
			})
		}
	} else {
		found, _ := questicle.CheckProgram(prog)
		for _, d := range found {
			msg := d.Message
			if d.Hint != "" {
				msg += " (" + d.Hint + ")"
			}
			diags = append(diags, diagnostic{
				Range:    subjectRange(text, d.Subject),
				Severity: severityWarning,
				Source:   "questicle",
				Message:  msg,
			})
		}
	}
	s.notify("textDocument/publishDiagnostics",
		publishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

// rangeAt converts a one-based source position to a zero-based
// single-cell range. An EOF error (line 0) maps to the last line.
func rangeAt(text string, line, col int) docRange {
	if line < 1 {
		line = strings.Count(text, "\n") + 1
		col = 1
	}
	pos := position{Line: line - 1, Character: col - 1}
	if pos.Character < 0 {
		pos.Character = 0
	}
	return docRange{Start: pos, End: position{Line: pos.Line, Character: pos.Character + 1}}
}

// subjectRange finds the first occurrence of name as a whole word; the
// document start is the fallback for diagnostics without a subject.
func subjectRange(text, name string) docRange {
	if name == "" {
		return docRange{}
	}
	for lineNo, line := range strings.Split(text, "\n") {
		idx := wordIndex(line, name)
		if idx < 0 {
			continue
		}
		return docRange{
			Start: position{Line: lineNo, Character: idx},
			End:   position{Line: lineNo, Character: idx + len(name)},
		}
	}
	return docRange{}
}

func wordIndex(line, name string) int {
	for from := 0; from < len(line); {
		idx := strings.Index(line[from:], name)
		if idx < 0 {
			return -1
		}
		idx += from
		beforeOK := idx == 0 || !isWordByte(line[idx-1])
		end := idx + len(name)
		afterOK := end >= len(line) || !isWordByte(line[end])
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
	return -1
}

func isWordByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// ----- hover -----

var keywordDocs = map[string]string{
	"let":      "`let name: type = expr;` declares a variable. The annotation is required.",
	"fn":       "`fn name(params) -> type { ... }` declares a function; `fn (params) { ... }` is a literal.",
	"if":       "`if (cond) stmt else stmt` branches on truthiness.",
	"else":     "The alternative branch of an `if`.",
	"while":    "`while (cond) stmt` loops while the condition is truthy.",
	"for":      "`for (name in list) stmt` iterates a list, binding each element.",
	"in":       "Separates the loop variable from the list in a `for` head.",
	"return":   "`return expr;` ends the enclosing function with a value.",
	"true":     "The boolean true literal.",
	"false":    "The boolean false literal.",
	"null":     "The null literal; also the null type.",
	"break":    "Accepted for familiarity; loops run to completion.",
	"continue": "Accepted for familiarity; loops run to completion.",
}

var builtinDocs = map[string]string{
	"print":  "`print(args...)` writes its arguments separated by spaces.",
	"clock":  "`clock()` returns seconds since the epoch.",
	"random": "`random()` returns a number in [0, 1).",
	"len":    "`len(x)` returns the length of a string, list or map.",
	"keys":   "`keys(m)` returns a map's keys as a sorted list of strings.",
	"push":   "`push(list, v)` returns a new list with v appended.",
	"pop":    "`pop(list)` returns the last element, or null when empty.",
	"on":     "`on(name, fn)` registers an event handler with the host.",
	"emit":   "`emit(name, data)` fires an event through the host.",
	"host":   "`host(op, payload)` calls into the embedding application.",
}

func (s *server) hover(p textDocumentPositionParams) *hover {
	text, ok := s.text(p.TextDocument.URI)
	if !ok {
		return nil
	}
	word := wordAt(text, p.Position)
	if word == "" {
		return nil
	}
	doc, ok := keywordDocs[word]
	if !ok {
		doc, ok = builtinDocs[word]
	}
	if !ok {
		if decl, found := declLines(text)[word]; found {
			doc, ok = "```\n"+decl+"\n```", true
		}
	}
	if !ok {
		return nil
	}
	return &hover{Contents: markupContent{Kind: "markdown", Value: doc}}
}

func wordAt(text string, pos position) string {
	lines := strings.Split(text, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := pos.Character
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	return line[start:end]
}

// ----- completion -----

func (s *server) complete(p textDocumentPositionParams) []completionItem {
	var names []string
	for k := range keywordDocs {
		names = append(names, k)
	}
	for b := range builtinDocs {
		names = append(names, b)
	}

	prefix := ""
	decls := map[string]string{}
	if text, ok := s.text(p.TextDocument.URI); ok {
		prefix = wordBefore(text, p.Position)
		decls = declLines(text)
		for name := range decls {
			if _, clash := builtinDocs[name]; !clash {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	if prefix != "" {
		matches := fuzzy.Find(prefix, names)
		ranked := make([]string, len(matches))
		for i, m := range matches {
			ranked[i] = m.Str
		}
		names = ranked
	}

	items := make([]completionItem, 0, len(names))
	for _, name := range names {
		item := completionItem{Label: name, Kind: completionKindKeyword}
		if doc, ok := builtinDocs[name]; ok {
			item.Kind = completionKindFunction
			item.Detail = doc
		} else if decl, ok := decls[name]; ok {
			item.Kind = completionKindVariable
			item.Detail = decl
		}
		items = append(items, item)
	}
	return items
}

// wordBefore returns the identifier fragment ending at the cursor.
func wordBefore(text string, pos position) string {
	lines := strings.Split(text, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := pos.Character
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	return line[start:col]
}

// ----- document symbols -----

// symbols reports top-level let and fn declarations by scanning lines;
// good enough for outlines without a full parse of broken documents.
func (s *server) symbols(uri string) []symbolInformation {
	text, ok := s.text(uri)
	if !ok {
		return []symbolInformation{}
	}
	syms := []symbolInformation{}
	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimLeft(raw, " \t")
		indent := len(raw) - len(line)
		kind := 0
		rest := ""
		if v, ok := strings.CutPrefix(line, "let "); ok {
			kind, rest = symbolKindVariable, v
		} else if v, ok := strings.CutPrefix(line, "fn "); ok {
			kind, rest = symbolKindFunction, v
		} else {
			continue
		}
		name := leadingWord(rest)
		if name == "" {
			continue
		}
		col := indent + len(line) - len(rest)
		syms = append(syms, symbolInformation{
			Name: name,
			Kind: kind,
			Location: location{
				URI: uri,
				Range: docRange{
					Start: position{Line: lineNo, Character: col},
					End:   position{Line: lineNo, Character: col + len(name)},
				},
			},
		})
	}
	return syms
}

// declLines maps top-level let and fn names to the line declaring them,
// first declaration wins.
func declLines(text string) map[string]string {
	decls := make(map[string]string)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimLeft(raw, " \t")
		rest, ok := strings.CutPrefix(line, "let ")
		if !ok {
			rest, ok = strings.CutPrefix(line, "fn ")
		}
		if !ok {
			continue
		}
		name := leadingWord(rest)
		if name == "" {
			continue
		}
		if _, seen := decls[name]; !seen {
			decls[name] = strings.TrimRight(line, " \t")
		}
	}
	return decls
}

func leadingWord(s string) string {
	end := 0
	for end < len(s) && isWordByte(s[end]) {
		end++
	}
	return s[:end]
}

// ----- formatting -----

// format rewrites the whole document with the token formatter as a
// single edit covering everything.
func (s *server) format(uri string) []textEdit {
	text, ok := s.text(uri)
	if !ok {
		return []textEdit{}
	}
	formatted := questicle.FormatSource(text)
	if formatted == text {
		return []textEdit{}
	}
	lines := strings.Split(text, "\n")
	end := position{Line: len(lines) - 1, Character: len(lines[len(lines)-1])}
	return []textEdit{{
		Range:   docRange{Start: position{}, End: end},
		NewText: formatted,
	}}
}
