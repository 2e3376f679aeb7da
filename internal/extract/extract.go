// Package extract reads note files and returns the text to classify.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Read returns the note text stored at path. HTML exports are reduced to
// their readable text; every other file is returned as-is and must be
// valid UTF-8.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read note: %s is not valid UTF-8", path)
	}

	if IsHTML(path) {
		return Text(string(data)), nil
	}
	return string(data), nil
}

// IsHTML reports whether path has an HTML extension
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Text parses HTML and returns its readable text, one line per block element
func Text(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var extract func(*html.Node)

	// Tags to skip (non-content)
	skipTags := map[string]bool{
		"head": true, "script": true, "style": true,
		"noscript": true, "iframe": true, "template": true,
	}

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteString(" ")
				}
				sb.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "br", "tr":
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteString("\n")
				}
			}
		}
	}

	extract(doc)

	return strings.TrimSpace(sb.String())
}
