package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FundQuant/internal/model"
)

// LoadState reads a portfolio from a JSON file. Returns an empty portfolio if the file doesn't exist.
func LoadState(filePath string) (*model.Portfolio, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.Portfolio{Assets: map[string]*model.Asset{}}, nil
		}
		return nil, err
	}
	var p model.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode portfolio %s: %w", filePath, err)
	}
	if p.Assets == nil {
		p.Assets = map[string]*model.Asset{}
	}
	return &p, nil
}

// SaveState writes the portfolio to a JSON file, creating parent directories.
func SaveState(filePath string, p *model.Portfolio) error {
	p.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
