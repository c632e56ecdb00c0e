package store

import (
	"fmt"
	"maps"
	"slices"
)

// Save encodes every record in values and replaces the collection at rel.
// Records are written in identifier order so that equal collections
// produce identical output.
//
// Nothing is written if any record fails to encode.
func (t *Table[K, V]) Save(rel string, values map[K]V) error {
	cleaned, err := ResolvePath(rel)
	if err != nil {
		return err
	}

	keys := slices.Sorted(maps.Keys(values))
	lines := make([][]byte, 0, len(keys))
	for _, k := range keys {
		line, err := t.codec.Encode(values[k])
		if err != nil {
			return fmt.Errorf("save %s: record %s: %w", cleaned, k, err)
		}
		lines = append(lines, line)
	}

	if err := t.backend.WriteLines(cleaned, lines); err != nil {
		return fmt.Errorf("save %s: %w", cleaned, err)
	}

	t.logger.Debug("collection saved", "path", cleaned, "records", len(lines))
	return nil
}
