package mappings

// Persons returns the schema of the persons index.
func Persons() map[string]any {
	return map[string]any{
		"settings": indexSettings(),
		"mappings": map[string]any{
			"dynamic": "strict",
			"properties": map[string]any{
				"id":        keywordField(),
				"full_name": textField(),
				"films": map[string]any{
					"type": "nested",
					"properties": map[string]any{
						"id":          keywordField(),
						"title":       textField(),
						"imdb_rating": map[string]any{"type": "float"},
						"roles":       keywordField(),
					},
				},
			},
		},
	}
}
