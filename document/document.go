// Package document defines the chunk and metadata model shared by the
// ingestion pipeline and the vector stores.
package document

const (
	TypeJira       = "jira"
	TypeConfluence = "confluence"
)

// Metadata describes where a chunk came from. DocumentType and SourceId are
// derived from the filename; ProviderName comes from an LLM pass over the
// content; Extra carries the type-specific fields (Jira status, Confluence
// space, and so on).
type Metadata struct {
	SourceFile   string
	DocumentType string
	SourceId     string
	Team         string
	ProviderName string
	Extra        map[string]string
}

// AsMap flattens the metadata into the shape persisted alongside each chunk.
// Absent optional fields are omitted rather than stored empty.
func (m Metadata) AsMap() map[string]any {
	out := map[string]any{
		"source_file": m.SourceFile,
	}

	if len(m.DocumentType) > 0 {
		out["document_type"] = m.DocumentType
	}
	if len(m.SourceId) > 0 {
		out["source_id"] = m.SourceId
	}
	if len(m.Team) > 0 {
		out["team"] = m.Team
	}
	if len(m.ProviderName) > 0 {
		out["provider_name"] = m.ProviderName
	}

	for k, v := range m.Extra {
		if len(v) > 0 {
			out[k] = v
		}
	}

	return out
}

// String reads a string field out of a stored metadata map, tolerating
// missing keys and non-string values.
func String(meta map[string]any, key string) string {
	if v, ok := meta[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
