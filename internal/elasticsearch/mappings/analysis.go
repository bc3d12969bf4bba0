// Package mappings defines the settings and field mappings for the three
// search indices fed by the sync pipeline.
package mappings

// analysisSettings returns the shared analysis block: a combined ru_en
// analyzer with English and Russian stopword and stemmer filters.
func analysisSettings() map[string]any {
	return map[string]any{
		"filter": map[string]any{
			"english_stop": map[string]any{
				"type":      "stop",
				"stopwords": "_english_",
			},
			"english_stemmer": map[string]any{
				"type":     "stemmer",
				"language": "english",
			},
			"english_possessive_stemmer": map[string]any{
				"type":     "stemmer",
				"language": "possessive_english",
			},
			"russian_stop": map[string]any{
				"type":      "stop",
				"stopwords": "_russian_",
			},
			"russian_stemmer": map[string]any{
				"type":     "stemmer",
				"language": "russian",
			},
		},
		"analyzer": map[string]any{
			"ru_en": map[string]any{
				"tokenizer": "standard",
				"filter": []string{
					"lowercase",
					"english_stop",
					"english_stemmer",
					"english_possessive_stemmer",
					"russian_stop",
					"russian_stemmer",
				},
			},
		},
	}
}

func indexSettings() map[string]any {
	return map[string]any{
		"refresh_interval": "1s",
		"analysis":         analysisSettings(),
	}
}

func textField() map[string]any {
	return map[string]any{
		"type":     "text",
		"analyzer": "ru_en",
	}
}

func keywordField() map[string]any {
	return map[string]any{"type": "keyword"}
}

func namedRefNested() map[string]any {
	return map[string]any{
		"type":    "nested",
		"dynamic": "strict",
		"properties": map[string]any{
			"id":   keywordField(),
			"name": textField(),
		},
	}
}
