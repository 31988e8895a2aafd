package textlinks

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	detailsBlockRegex  = regexp.MustCompile(`(?is)<details.*?>.*?</details>`)
	htmlCommentRegex   = regexp.MustCompile(`(?s)<!--.*?-->`)
	codeFenceRegex     = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRegex    = regexp.MustCompile("`([^`]*)`")
	imageMarkdownRegex = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkMarkdownRegex  = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	orderedListRegex   = regexp.MustCompile(`^\d+\.\s+`)
	urlRegex           = regexp.MustCompile(`https?://[^\s)<>\]]+`)
	htmlTagRegex       = regexp.MustCompile(`(?s)<[^>]+>`)
)

// NormalizationOptions controls how markdown is turned into linkable text.
type NormalizationOptions struct {
	// LinkBareURLs turns URLs appearing outside markdown links into links.
	LinkBareURLs bool
	// Style applies to every extracted link. Zero means DefaultLinkStyle.
	Style Style
}

// NormalizeMarkdown flattens a markdown body into plain text and returns the
// links found in it. Markdown links keep their label in the text and carry
// the target as payload.
func NormalizeMarkdown(body string, opts NormalizationOptions) (string, []LinkDef) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}

	style := opts.Style.OrDefault()
	var links []LinkDef
	seen := make(map[LinkDef]struct{})
	addLink := func(text, target string) {
		link := LinkDef{Text: text, Payload: target, Style: style}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	normalized := html.UnescapeString(body)
	normalized = detailsBlockRegex.ReplaceAllString(normalized, " ")
	normalized = htmlCommentRegex.ReplaceAllString(normalized, " ")
	normalized = codeFenceRegex.ReplaceAllString(normalized, " ")

	// Ensure residual HTML is removed before markdown cleanup.
	normalized = StripHTML(normalized)

	normalized = imageMarkdownRegex.ReplaceAllStringFunc(normalized, func(match string) string {
		parts := imageMarkdownRegex.FindStringSubmatch(match)
		return strings.TrimSpace(parts[1])
	})

	normalized = linkMarkdownRegex.ReplaceAllStringFunc(normalized, func(match string) string {
		parts := linkMarkdownRegex.FindStringSubmatch(match)
		label := strings.Join(strings.Fields(parts[1]), " ")
		target := strings.TrimSpace(parts[2])
		if label == "" {
			label = target
		}
		if IsURL(target) {
			addLink(label, target)
		}
		return label
	})

	normalized = inlineCodeRegex.ReplaceAllString(normalized, "$1")
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\u00a0", " ")

	lines := strings.Split(normalized, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		line = cleanMarkdownLine(line)
		if line == "" {
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}
	text := strings.Join(cleanedLines, "\n")

	if opts.LinkBareURLs {
		for _, raw := range urlRegex.FindAllString(text, -1) {
			raw = strings.TrimRight(raw, ".,;:!?")
			if IsURL(raw) {
				addLink(raw, raw)
			}
		}
	}

	return text, links
}

func cleanMarkdownLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "---" || line == "***" || line == "___" {
		return ""
	}
	if strings.Count(line, "|") >= 2 {
		// Drop Markdown table rows entirely.
		return ""
	}
	for {
		switch {
		case strings.HasPrefix(line, "> "):
			line = strings.TrimPrefix(line, "> ")
		case strings.HasPrefix(line, "- [ ] "), strings.HasPrefix(line, "- [x] "):
			line = line[len("- [ ] "):]
		case strings.HasPrefix(line, "- "):
			line = strings.TrimPrefix(line, "- ")
		case strings.HasPrefix(line, "* "):
			line = strings.TrimPrefix(line, "* ")
		case strings.HasPrefix(line, "+ "):
			line = strings.TrimPrefix(line, "+ ")
		case strings.HasPrefix(line, "#"):
			line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		default:
			line = orderedListRegex.ReplaceAllString(line, "")
			return strings.Join(strings.Fields(line), " ")
		}
	}
}

// StripHTML removes HTML tags in a minimal fashion.
func StripHTML(body string) string {
	if body == "" {
		return body
	}

	replacer := strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n")
	body = replacer.Replace(body)
	return htmlTagRegex.ReplaceAllString(body, "")
}

// DocumentFromSource builds a document definition from a fetched issue or
// pull request. Comments follow the body, one paragraph each.
func DocumentFromSource(src *Source, opts NormalizationOptions) DocumentDef {
	if src == nil {
		return DocumentDef{}
	}

	def := DocumentDef{
		Title: fmt.Sprintf("%s/%s#%d: %s", src.Owner, src.Repo, src.Number, src.Title),
	}

	var sections []string
	appendSection := func(prefix, body string) {
		text, links := NormalizeMarkdown(body, opts)
		if text == "" {
			return
		}
		sections = append(sections, prefix+text)
		def.Links = appendUnique(def.Links, links)
	}

	appendSection("", src.Body)
	for _, c := range src.Comments {
		author := c.Author
		if author == "" {
			author = "unknown"
		}
		appendSection("@"+author+": ", c.Body)
	}

	if len(sections) == 0 {
		sections = append(sections, "(no description)")
	}
	def.Text = strings.Join(sections, "\n\n")
	return def
}

func appendUnique(dst, src []LinkDef) []LinkDef {
	for _, link := range src {
		dup := false
		for _, existing := range dst {
			if existing == link {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, link)
		}
	}
	return dst
}
