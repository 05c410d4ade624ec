package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TablesFile 比對與推薦使用的對照表檔案
type TablesFile struct {
	Synonyms     map[string][]string `yaml:"synonyms"`
	Types        []string            `yaml:"types"`
	TypeKeywords map[string][]string `yaml:"type_keywords"`
	Complements  map[string][]string `yaml:"complements"`
	Stopwords    []string            `yaml:"stopwords"`
}

// LoadTables 讀取 YAML 對照表，path 為空時回傳 nil
func LoadTables(path string) (*TablesFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	return ParseTables(data)
}

// ParseTables 解析對照表內容
func ParseTables(data []byte) (*TablesFile, error) {
	var tables TablesFile
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse tables file: %w", err)
	}
	for category, words := range tables.Synonyms {
		if len(words) == 0 {
			return nil, fmt.Errorf("synonym group %q is empty", category)
		}
	}
	if len(tables.Complements) > 0 && len(tables.TypeKeywords) == 0 {
		return nil, fmt.Errorf("complements require type_keywords")
	}
	return &tables, nil
}
