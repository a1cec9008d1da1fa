package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/rag/config"
	"github.com/w-h-a/rag/document"
)

func TestFromFilenameJira(t *testing.T) {
	cases := []struct {
		filename string
		sourceId string
		team     string
	}{
		{"AP-541.pdf", "AP-541", "Feature Request"},
		{"CORECM-102.pdf", "CORECM-102", "Core"},
		{"PFU-33.pdf", "PFU-33", "Postmortem"},
		{"TST12-1599.pdf", "TST12-1599", "Integrations"},
		{"TST-7.pdf", "TST-7", "Integrations"},
		{"DEM-88.pdf", "DEM-88", "Demand"},
	}

	for _, c := range cases {
		meta := FromFilename(c.filename, config.DefaultTeamPatterns)
		assert.Equal(t, document.TypeJira, meta.DocumentType, c.filename)
		assert.Equal(t, c.sourceId, meta.SourceId, c.filename)
		assert.Equal(t, c.team, meta.Team, c.filename)
		assert.Equal(t, c.filename, meta.SourceFile)
	}
}

func TestFromFilenameConfluence(t *testing.T) {
	meta := FromFilename("3702794_3702794.pdf", config.DefaultTeamPatterns)

	assert.Equal(t, document.TypeConfluence, meta.DocumentType)
	assert.Equal(t, "3702794", meta.SourceId)
	assert.Empty(t, meta.Team)
}

func TestFromFilenameUnrecognized(t *testing.T) {
	meta := FromFilename("notes.pdf", config.DefaultTeamPatterns)

	assert.Empty(t, meta.DocumentType)
	assert.Empty(t, meta.SourceId)
	assert.Equal(t, "notes.pdf", meta.SourceFile)
}

func TestClassifyTeamPrefersLongerPrefix(t *testing.T) {
	assert.Equal(t, "Integrations", ClassifyTeam("TST12", config.DefaultTeamPatterns))
	assert.Equal(t, "Integrations", ClassifyTeam("TST", config.DefaultTeamPatterns))
	assert.Empty(t, ClassifyTeam("XYZ", config.DefaultTeamPatterns))
}

func TestJiraMetadata(t *testing.T) {
	content := `AP-541: Add webhook retries
Status: In Progress
Priority: High
Assignee: Jordan Rivers
Reporter: Sam Diaz
Created: 2024-03-01
Updated: 2024-03-10

Description follows here.`

	fields := JiraMetadata(content)

	require.Len(t, fields, 6)
	assert.Equal(t, "In Progress", fields["status"])
	assert.Equal(t, "High", fields["priority"])
	assert.Equal(t, "Jordan Rivers", fields["assignee"])
	assert.Equal(t, "Sam Diaz", fields["reporter"])
	assert.Equal(t, "2024-03-01", fields["created_date"])
	assert.Equal(t, "2024-03-10", fields["updated_date"])
}

func TestConfluenceMetadata(t *testing.T) {
	content := `SafetyPay Integration Guide
Space: Payments
Version: 12
Created By: Alex Kim
Created Date: 2023-11-20

Page body.`

	fields := ConfluenceMetadata(content)

	require.Len(t, fields, 4)
	assert.Equal(t, "Payments", fields["space"])
	assert.Equal(t, "12", fields["version"])
	assert.Equal(t, "Alex Kim", fields["created_by"])
	assert.Equal(t, "2023-11-20", fields["created_date"])
}

func TestJiraMetadataMissingFields(t *testing.T) {
	fields := JiraMetadata("Status: Done\nno other headers")

	assert.Equal(t, map[string]string{"status": "Done"}, fields)
}
