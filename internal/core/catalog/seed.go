package catalog

import (
	"fmt"
	"os"

	"shopping-assistant/internal/pkg/common"

	"gopkg.in/yaml.v3"
)

// SeedFile 商品初始化檔案格式
type SeedFile struct {
	Items []Item `yaml:"items"`
}

// LoadSeedFile 讀取 YAML 商品清單
func LoadSeedFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed 解析 YAML 商品清單
func ParseSeed(data []byte) ([]Item, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, item := range file.Items {
		if item.Name == "" {
			return nil, common.NewValidationError(fmt.Sprintf("seed item %d has no name", i))
		}
		if item.Quantity < 0 || item.Price < 0 {
			return nil, common.NewValidationError(fmt.Sprintf("seed item %q has negative quantity or price", item.Name))
		}
	}
	return file.Items, nil
}
