package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for profile documents.
//
// Free text uses the standard analyzer because bios are mostly Lithuanian
// and no stemmer fits. Filter fields use the keyword analyzer so enum values
// like "Klaipėda" or "24 Dec" match exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	bioFieldMapping := bleve.NewTextFieldMapping()
	bioFieldMapping.Analyzer = standard.Name
	bioFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("bio", bioFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = simple.Name
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// --- Keyword fields (exact match filters) ---

	for _, field := range []string{"id", "city", "role", "concept", "languages", "dates"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = field == "id" || field == "city"
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// --- Numeric fields (sorting) ---

	capacityFieldMapping := bleve.NewNumericFieldMapping()
	capacityFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("capacity", capacityFieldMapping)

	lastActiveFieldMapping := bleve.NewNumericFieldMapping()
	lastActiveFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("last_active", lastActiveFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
