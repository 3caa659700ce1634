package export

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rxbook/rxbook-go/internal/theme"
)

var ansiRegex = regexp.MustCompile(`\x1b\[([0-9;]*)m`)

// StripANSI removes SGR escape sequences
func StripANSI(content string) string {
	return ansiRegex.ReplaceAllString(content, "")
}

// SaveAsText saves content as plain text, stripping ANSI codes
func SaveAsText(content string, filename string) error {
	if filename == "" {
		filename = GenerateFilename("rxbook_screenshot", "txt", "")
	}
	return writeFile(filename, StripANSI(content))
}

// SaveAsHTML saves content as styled HTML with ANSI colors converted
func SaveAsHTML(content string, filename string) error {
	if filename == "" {
		filename = GenerateFilename("rxbook_screenshot", "html", "")
	}
	return writeFile(filename, convertANSIToHTML(content))
}

// CaptureScreen saves the current console view as HTML
func CaptureScreen(content string, directory string) (string, error) {
	filename := GenerateFilename("rxbook_screenshot", "html", directory)
	if err := SaveAsHTML(content, filename); err != nil {
		return "", err
	}
	return filename, nil
}

func writeFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// convertANSIToHTML converts ANSI terminal output to styled HTML
func convertANSIToHTML(content string) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>rxbook console</title>
    <style>
        body {
            background-color: #0a0a0a;
            color: #c0c0c0;
            font-family: 'Cascadia Code', 'Fira Code', 'Consolas', 'Liberation Mono', monospace;
            font-size: 14px;
            line-height: 1.0;
            padding: 20px;
            margin: 0;
        }
        pre { margin: 0; white-space: pre; }
        .bold { font-weight: bold; }
        .dim { opacity: 0.7; }
        .underline { text-decoration: underline; }
        .timestamp { color: #666; font-size: 12px; margin-bottom: 10px; }
    </style>
</head>
<body>
    <div class="timestamp">Captured: `)
	sb.WriteString(Clock().UTC().Format("2006-01-02 15:04:05 UTC"))
	sb.WriteString(`</div>
    <pre>`)
	sb.WriteString(parseANSI(content))
	sb.WriteString(`</pre>
</body>
</html>`)

	return sb.String()
}

// sgrState is the text style selected by SGR codes
type sgrState struct {
	fg, bg               string
	bold, dim, underline bool
}

func (s sgrState) plain() bool {
	return s == sgrState{}
}

// parseANSI converts escape sequences to HTML spans, one span per run of equally styled text
func parseANSI(content string) string {
	var out, run strings.Builder
	var cur sgrState

	flush := func() {
		if run.Len() == 0 {
			return
		}
		text := html.EscapeString(run.String())
		if cur.plain() {
			out.WriteString(text)
		} else {
			out.WriteString(buildSpan(text, cur))
		}
		run.Reset()
	}

	rest := content
	for len(rest) > 0 {
		loc := ansiRegex.FindStringSubmatchIndex(rest)
		if loc == nil {
			run.WriteString(rest)
			break
		}
		run.WriteString(rest[:loc[0]])
		next := cur
		next.apply(strings.Split(rest[loc[2]:loc[3]], ";"))
		if next != cur {
			flush()
			cur = next
		}
		rest = rest[loc[1]:]
	}
	flush()

	return out.String()
}

// apply updates the state from a list of SGR codes
func (s *sgrState) apply(codes []string) {
	for i := 0; i < len(codes); i++ {
		n, err := strconv.Atoi(codes[i])
		if err != nil {
			n = 0
		}
		switch {
		case n == 0:
			*s = sgrState{}
		case n == 1:
			s.bold = true
		case n == 2:
			s.dim = true
		case n == 4:
			s.underline = true
		case n == 22:
			s.bold, s.dim = false, false
		case n == 24:
			s.underline = false
		case n >= 30 && n <= 37:
			s.fg = ansiHex(n - 30)
		case n >= 90 && n <= 97:
			s.fg = ansiHex(n - 90 + 8)
		case n >= 40 && n <= 47:
			s.bg = ansiHex(n - 40)
		case n >= 100 && n <= 107:
			s.bg = ansiHex(n - 100 + 8)
		case n == 39:
			s.fg = ""
		case n == 49:
			s.bg = ""
		case n == 38 || n == 48:
			c, used := extendedColor(codes[i+1:])
			if n == 38 {
				s.fg = c
			} else {
				s.bg = c
			}
			i += used
		}
	}
}

// extendedColor parses the arguments of a 38/48 code: "5;n" or "2;r;g;b"
func extendedColor(args []string) (string, int) {
	if len(args) >= 2 && args[0] == "5" {
		n, _ := strconv.Atoi(args[1])
		return ansiHex(n), 2
	}
	if len(args) >= 4 && args[0] == "2" {
		r, _ := strconv.Atoi(args[1])
		g, _ := strconv.Atoi(args[2])
		b, _ := strconv.Atoi(args[3])
		return fmt.Sprintf("#%02x%02x%02x", r&0xff, g&0xff, b&0xff), 4
	}
	return "", len(args)
}

func ansiHex(code int) string {
	c := theme.ANSIToRGBA(code)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// buildSpan builds an HTML span with styles
func buildSpan(text string, s sgrState) string {
	var styles, classes []string
	if s.fg != "" {
		styles = append(styles, "color:"+s.fg)
	}
	if s.bg != "" {
		styles = append(styles, "background-color:"+s.bg)
	}
	if s.bold {
		classes = append(classes, "bold")
	}
	if s.dim {
		classes = append(classes, "dim")
	}
	if s.underline {
		classes = append(classes, "underline")
	}

	var sb strings.Builder
	sb.WriteString("<span")
	if len(classes) > 0 {
		sb.WriteString(` class="` + strings.Join(classes, " ") + `"`)
	}
	if len(styles) > 0 {
		sb.WriteString(` style="` + strings.Join(styles, ";") + `"`)
	}
	sb.WriteString(">")
	sb.WriteString(text)
	sb.WriteString("</span>")
	return sb.String()
}
