package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

// BackupFileName is the name used for history backups on disk and in Drive.
const BackupFileName = "CierresPro_Backup.json"

var ErrInvalidBackup = errors.New("invalid backup")

// WriteBackup encodes the history as an indented JSON array.
func WriteBackup(w io.Writer, items []*snapshot.Snapshot) error {
	if items == nil {
		items = []*snapshot.Snapshot{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}

	return nil
}

// ReadBackup decodes a backup written by WriteBackup. The document must be a
// JSON array and every entry must carry a period.
func ReadBackup(r io.Reader) ([]*snapshot.Snapshot, error) {
	br := bufio.NewReader(r)

	first, err := firstNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	if first != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidBackup)
	}

	var items []*snapshot.Snapshot
	if err := json.NewDecoder(br).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	out := make([]*snapshot.Snapshot, 0, len(items))

	for i, it := range items {
		if it == nil {
			continue
		}

		if it.Period == "" {
			return nil, fmt.Errorf("%w: entry %d has no period", ErrInvalidBackup, i)
		}

		out = append(out, snapshot.Complete(it))
	}

	return out, nil
}

func firstNonSpace(br *bufio.Reader) (rune, error) {
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			return 0, err
		}

		if !unicode.IsSpace(r) && r != '\uFEFF' {
			if err := br.UnreadRune(); err != nil {
				return 0, err
			}

			return r, nil
		}
	}
}
