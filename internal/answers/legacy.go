package answers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
)

// ImportLegacyCSV reads an old flat answer cache with rows of
// kind,question,answer and converts it into records keyed by normalized
// signatures. A missing file is an empty cache; malformed or placeholder
// rows are dropped rather than failing the import.
func ImportLegacyCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open legacy answer file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Corrupt store is never fatal; salvage what parsed so far.
			return records, nil
		}
		if len(row) != 3 {
			continue
		}
		rec := Record{
			Signature: forms.Signature(row[1]),
			Value:     row[2],
			Kind:      forms.ElementKind(row[0]),
		}
		if validate(rec) != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
