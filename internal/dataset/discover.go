package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavelanni/kokushi/internal/model"
)

// Discover lists every company/model/input directory under the results root
// in lexical order. Files and dot-directories are ignored.
func Discover(resultsDir string) ([]model.Combination, error) {
	companies, err := subdirs(resultsDir)
	if err != nil {
		return nil, err
	}
	var combos []model.Combination
	for _, company := range companies {
		models, err := subdirs(filepath.Join(resultsDir, company))
		if err != nil {
			return nil, err
		}
		for _, m := range models {
			inputs, err := subdirs(filepath.Join(resultsDir, company, m))
			if err != nil {
				return nil, err
			}
			for _, in := range inputs {
				combos = append(combos, model.Combination{Company: company, Model: m, InputType: in})
			}
		}
	}
	return combos, nil
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
