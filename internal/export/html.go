// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")
)

// HTMLExporter exports sessions to a standalone HTML page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a session to HTML format.
func (e *HTMLExporter) Export(session *model.ChatSession) ([]byte, error) {
	if err := validate(session); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}
	title := html.EscapeString(sessionTitle(session))

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("  <meta charset=\"UTF-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("  <meta name=\"generator\" content=\"askdesk\">\n")
	sb.WriteString(fmt.Sprintf("  <meta name=\"date\" content=\"%s\">\n", session.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("  <title>%s</title>\n", title))
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s\">\n<div class=\"container\">\n", theme))

	sb.WriteString(fmt.Sprintf("<header><h1>%s</h1>\n", title))
	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("<p class=\"meta\">Session %s &middot; created %s &middot; %d messages</p>\n",
			html.EscapeString(session.ID), formatTimestamp(session.CreatedAt), len(session.Messages)))
	}
	sb.WriteString("</header>\n<main>\n")

	for i := range session.Messages {
		sb.WriteString(e.renderMessage(&session.Messages[i]))
	}

	sb.WriteString("</main>\n")
	sb.WriteString(fmt.Sprintf("<footer>Exported from <strong>askdesk</strong> on %s</footer>\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	class := "assistant"
	if msg.IsUser() {
		class = "user"
	}
	sb.WriteString(fmt.Sprintf("<div class=\"message %s\">\n<div class=\"message-header\"><span class=\"role\">%s</span>",
		class, html.EscapeString(msg.Role.DisplayName())))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf(" <span class=\"time\">%s</span>", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("</div>\n<div class=\"content\">\n")
	sb.WriteString(formatContent(msg.Content))
	sb.WriteString("\n</div>\n")

	if msg.IsAssistant() && e.options.IncludeSources && msg.HasSources() {
		sb.WriteString(renderSources(msg.Sources))
	}

	sb.WriteString("</div>\n")
	return sb.String()
}

// renderSources renders citations as a collapsible list.
func renderSources(sources []model.Source) string {
	unique := model.UniqueSources(sources)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<details class=\"sources\"><summary>%d %s</summary>\n<ul>\n",
		len(unique), model.SourcesLabel(len(unique))))
	for _, s := range unique {
		sb.WriteString(fmt.Sprintf("<li><code>%s</code><blockquote>%s</blockquote></li>\n",
			html.EscapeString(s.SourceFile), html.EscapeString(strings.TrimSpace(s.TextChunk))))
	}
	sb.WriteString("</ul>\n</details>\n")
	return sb.String()
}

// formatContent escapes content, then turns fenced code, inline code and
// blank-line separated paragraphs into HTML.
func formatContent(content string) string {
	content = html.EscapeString(strings.TrimSpace(content))

	var blocks []string
	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		lang := parts[1]
		label := ""
		if lang != "" {
			label = fmt.Sprintf("<div class=\"code-lang\">%s</div>", lang)
		}
		blocks = append(blocks, fmt.Sprintf("<div class=\"code-block\">%s<pre><code>%s</code></pre></div>",
			label, strings.TrimRight(parts[2], "\n")))
		return fmt.Sprintf("\x00%d\x00", len(blocks)-1)
	})

	var out []string
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if strings.HasPrefix(para, "\x00") && strings.HasSuffix(para, "\x00") {
			out = append(out, para)
			continue
		}
		para = inlineCodeRegex.ReplaceAllString(para, "<code>$1</code>")
		out = append(out, "<p>"+strings.ReplaceAll(para, "\n", "<br>\n")+"</p>")
	}

	result := strings.Join(out, "\n")
	for i, block := range blocks {
		result = strings.Replace(result, fmt.Sprintf("\x00%d\x00", i), block, 1)
	}
	return result
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const pageCSS = `  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; line-height: 1.6; }
    body.light { --bg: #f7f8fa; --card: #ffffff; --user: #e8f0fe; --text: #1f2328; --muted: #6e7781; --accent: #0b5cad; --border: #d0d7de; }
    body.dark  { --bg: #14161b; --card: #1d2027; --user: #1e2a3d; --text: #e6e6e6; --muted: #8b949e; --accent: #6cb6ff; --border: #30363d; }
    body { background: var(--bg); color: var(--text); }
    .container { max-width: 860px; margin: 0 auto; padding: 32px 20px; }
    header h1 { font-size: 1.5rem; margin-bottom: 4px; }
    .meta, footer, .time { color: var(--muted); font-size: 0.85rem; }
    main { margin: 24px 0; }
    .message { background: var(--card); border: 1px solid var(--border); border-radius: 10px; padding: 14px 18px; margin-bottom: 14px; }
    .message.user { background: var(--user); margin-left: 15%; }
    .message-header { margin-bottom: 6px; }
    .role { font-weight: 600; color: var(--accent); }
    .content p { margin-bottom: 8px; }
    code { font-family: "SF Mono", Menlo, Consolas, monospace; font-size: 0.9em; }
    .code-block { margin: 8px 0; border: 1px solid var(--border); border-radius: 6px; overflow-x: auto; }
    .code-block pre { padding: 10px; }
    .code-lang { font-size: 0.75rem; color: var(--muted); padding: 4px 10px; border-bottom: 1px solid var(--border); }
    .sources { margin-top: 8px; font-size: 0.9rem; }
    .sources summary { cursor: pointer; color: var(--accent); }
    .sources li { list-style: none; margin: 6px 0; }
    .sources blockquote { color: var(--muted); border-left: 3px solid var(--border); padding-left: 8px; }
    footer { text-align: center; border-top: 1px solid var(--border); padding-top: 12px; }
  </style>
`
