package markdown

import "strings"

// Segment is a run of a Markdown document: either prose or the body of one
// fenced code block.
type Segment struct {
	Fenced   bool
	Info     string // full info string of the opening fence
	Language string // first word of Info, "" when absent
	Content  string
	Line     int // 1-based line of the first content line (or the opening fence)
}

type fence struct {
	char   byte
	length int
	info   string
}

// SplitFences splits body into prose and fenced-code segments in document
// order. Fence lines themselves are not part of any segment; everything
// else is kept byte for byte, so joining the segments with the fence lines
// reproduces the input. An unclosed fence runs to the end of the document.
func SplitFences(body string) []Segment {
	var (
		segs  []Segment
		buf   strings.Builder
		start = 1
		open  *fence
	)
	flush := func(f *fence, next int) {
		seg := Segment{Content: buf.String(), Line: start}
		if f != nil {
			seg.Fenced = true
			seg.Info = f.info
			seg.Language = firstWord(f.info)
		}
		if f != nil || seg.Content != "" {
			segs = append(segs, seg)
		}
		buf.Reset()
		start = next
	}

	lines := splitLinesKeepEOL(body)
	for i, line := range lines {
		lineNo := i + 1
		if open == nil {
			if f, ok := openingFence(line); ok {
				flush(nil, lineNo+1)
				open = &f
				continue
			}
			buf.WriteString(line)
			continue
		}
		if closesFence(line, *open) {
			flush(open, lineNo+1)
			open = nil
			continue
		}
		buf.WriteString(line)
	}
	if open != nil {
		flush(open, len(lines)+1)
	} else {
		flush(nil, len(lines)+1)
	}
	return segs
}

func splitLinesKeepEOL(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i+1])
		s = s[i+1:]
	}
	return out
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// leadingSpaces returns the indentation width if it is at most three spaces.
func leadingSpaces(line string) (int, bool) {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n, n <= 3
}

func openingFence(line string) (fence, bool) {
	l := trimEOL(line)
	indent, ok := leadingSpaces(l)
	if !ok {
		return fence{}, false
	}
	l = l[indent:]
	if len(l) < 3 || (l[0] != '`' && l[0] != '~') {
		return fence{}, false
	}
	c := l[0]
	n := 0
	for n < len(l) && l[n] == c {
		n++
	}
	if n < 3 {
		return fence{}, false
	}
	info := strings.TrimSpace(l[n:])
	if c == '`' && strings.ContainsRune(info, '`') {
		return fence{}, false
	}
	return fence{char: c, length: n, info: info}, true
}

func closesFence(line string, f fence) bool {
	l := trimEOL(line)
	indent, ok := leadingSpaces(l)
	if !ok {
		return false
	}
	l = l[indent:]
	n := 0
	for n < len(l) && l[n] == f.char {
		n++
	}
	return n >= f.length && strings.TrimSpace(l[n:]) == ""
}

func firstWord(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	w := fields[0]
	// {.python} and python{linenos} style attributes
	w = strings.TrimPrefix(strings.TrimPrefix(w, "{"), ".")
	if i := strings.IndexAny(w, "{},"); i >= 0 {
		w = w[:i]
	}
	return w
}

// Fence wraps content in a backtick code fence tagged with lang. The fence
// is one backtick longer than the longest backtick run inside content.
func Fence(lang, content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	marker := strings.Repeat("`", max(3, longest+1))
	body := strings.TrimRight(content, "\n")
	return marker + lang + "\n" + body + "\n" + marker
}
