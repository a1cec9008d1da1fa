// Package extract derives chunk metadata from filenames and document text.
package extract

import (
	"regexp"
	"strings"

	"github.com/w-h-a/rag/config"
	"github.com/w-h-a/rag/document"
)

var (
	// Jira export filenames look like AP-541.pdf or TST12-1599.pdf; the
	// prefix may mix letters and digits.
	jiraFilename = regexp.MustCompile(`^([A-Z0-9]+)-(\d+)`)

	// Confluence exports look like 3702794_3702794.pdf.
	confluenceFilename = regexp.MustCompile(`^(\d+)_\d+`)

	jiraFields = map[string]*regexp.Regexp{
		"status":       regexp.MustCompile(`Status:\s*([^\n]+)`),
		"priority":     regexp.MustCompile(`Priority:\s*([^\n]+)`),
		"assignee":     regexp.MustCompile(`Assignee:\s*([^\n]+)`),
		"reporter":     regexp.MustCompile(`Reporter:\s*([^\n]+)`),
		"created_date": regexp.MustCompile(`Created:\s*([^\n]+)`),
		"updated_date": regexp.MustCompile(`Updated:\s*([^\n]+)`),
	}

	confluenceFields = map[string]*regexp.Regexp{
		"space":        regexp.MustCompile(`Space:\s*([^\n]+)`),
		"version":      regexp.MustCompile(`Version:\s*([^\n]+)`),
		"created_by":   regexp.MustCompile(`Created By:\s*([^\n]+)`),
		"created_date": regexp.MustCompile(`Created Date:\s*([^\n]+)`),
	}
)

// FromFilename classifies a document and pulls its source id out of the
// filename. Files matching neither pattern come back with an empty
// DocumentType.
func FromFilename(filename string, patterns []config.TeamPattern) document.Metadata {
	meta := document.Metadata{
		SourceFile: filename,
	}

	if m := jiraFilename.FindStringSubmatch(filename); m != nil {
		meta.DocumentType = document.TypeJira
		meta.SourceId = m[1] + "-" + m[2]
		meta.Team = ClassifyTeam(m[1], patterns)
		return meta
	}

	if m := confluenceFilename.FindStringSubmatch(filename); m != nil {
		meta.DocumentType = document.TypeConfluence
		meta.SourceId = m[1]
		return meta
	}

	return meta
}

// ClassifyTeam maps a Jira project prefix onto a team. Patterns are checked
// in order so TST12 wins over TST.
func ClassifyTeam(prefix string, patterns []config.TeamPattern) string {
	for _, p := range patterns {
		if strings.HasPrefix(prefix, p.Prefix) {
			return p.Team
		}
	}
	return ""
}

// JiraMetadata scrapes the header fields a Jira PDF export prints at the top
// of the ticket.
func JiraMetadata(content string) map[string]string {
	return matchFields(content, jiraFields)
}

// ConfluenceMetadata scrapes the page properties a Confluence PDF export
// includes.
func ConfluenceMetadata(content string) map[string]string {
	return matchFields(content, confluenceFields)
}

func matchFields(content string, fields map[string]*regexp.Regexp) map[string]string {
	out := map[string]string{}
	for name, re := range fields {
		if m := re.FindStringSubmatch(content); m != nil {
			out[name] = strings.TrimSpace(m[1])
		}
	}
	return out
}
