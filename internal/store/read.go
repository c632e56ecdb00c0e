package store

import (
	"errors"
	"io/fs"
)

// Load reads every record stored at rel, keyed by record identifier.
//
// Only an invalid path is returned as an error. A path that cannot be read
// yields an empty map, and a line that does not decode is logged and
// skipped. When two lines carry the same identifier the later one wins.
func (t *Table[K, V]) Load(rel string) (map[K]V, error) {
	cleaned, err := ResolvePath(rel)
	if err != nil {
		return nil, err
	}

	records := make(map[K]V)

	lines, err := t.backend.ReadLines(cleaned)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Debug("nothing stored yet", "path", cleaned)
		} else {
			t.logger.Warn("failed to read collection", "path", cleaned, "error", err)
		}
		// Keep whatever was read before a partial failure
	}

	for i, line := range lines {
		v, err := t.codec.Decode(line)
		if err != nil {
			t.logger.Warn("skipping malformed record",
				"path", cleaned,
				"line", i+1,
				"error", err,
			)
			continue
		}
		records[t.codec.Key(v)] = v
	}

	t.logger.Debug("collection loaded", "path", cleaned, "records", len(records))
	return records, nil
}
