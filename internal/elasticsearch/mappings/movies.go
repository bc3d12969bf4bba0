package mappings

// Movies returns the schema of the movies index.
func Movies() map[string]any {
	return map[string]any{
		"settings": indexSettings(),
		"mappings": map[string]any{
			"dynamic": "strict",
			"properties": map[string]any{
				"id":          keywordField(),
				"imdb_rating": map[string]any{"type": "float"},
				"genres":      keywordField(),
				"title": map[string]any{
					"type":     "text",
					"analyzer": "ru_en",
					"fields": map[string]any{
						"raw": keywordField(),
					},
				},
				"description":     textField(),
				"directors_names": textField(),
				"actors_names":    textField(),
				"writers_names":   textField(),
				"genres_details":  namedRefNested(),
				"directors":       namedRefNested(),
				"actors":          namedRefNested(),
				"writers":         namedRefNested(),
			},
		},
	}
}
