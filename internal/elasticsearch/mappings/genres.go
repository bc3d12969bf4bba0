package mappings

// Genres returns the schema of the genres index.
func Genres() map[string]any {
	return map[string]any{
		"settings": indexSettings(),
		"mappings": map[string]any{
			"dynamic": "strict",
			"properties": map[string]any{
				"id":          keywordField(),
				"name":        textField(),
				"description": textField(),
			},
		},
	}
}
