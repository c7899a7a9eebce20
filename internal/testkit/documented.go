package testkit

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"fastfisher/domain/stats"
)

//go:embed testdata/documented.yaml
var documentedYAML []byte

// DocumentedTable is a fixture table with a short description of why it is
// interesting.
type DocumentedTable struct {
	Table stats.ContingencyTable
	Note  string
}

type documentedFile struct {
	Tables []struct {
		Cells []int  `yaml:"cells"`
		Note  string `yaml:"note"`
	} `yaml:"tables"`
}

var (
	documentedOnce sync.Once
	documented     []DocumentedTable
	documentedErr  error
)

// DocumentedDisagreements returns the tables on which float implementations of
// the two-sided test are known to diverge. The slice is a fresh copy.
func DocumentedDisagreements() ([]DocumentedTable, error) {
	documentedOnce.Do(func() {
		documented, documentedErr = ParseDocumented(documentedYAML)
	})
	if documentedErr != nil {
		return nil, documentedErr
	}
	return append([]DocumentedTable(nil), documented...), nil
}

// ParseDocumented decodes a fixture file.
func ParseDocumented(data []byte) ([]DocumentedTable, error) {
	var f documentedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode documented tables: %w", err)
	}

	out := make([]DocumentedTable, 0, len(f.Tables))
	for i, entry := range f.Tables {
		if len(entry.Cells) != 4 {
			return nil, fmt.Errorf("documented table %d: want 4 cells, got %d", i, len(entry.Cells))
		}
		t, err := stats.NewTable(entry.Cells[0], entry.Cells[1], entry.Cells[2], entry.Cells[3])
		if err != nil {
			return nil, fmt.Errorf("documented table %d: %w", i, err)
		}
		out = append(out, DocumentedTable{Table: t, Note: entry.Note})
	}
	return out, nil
}
