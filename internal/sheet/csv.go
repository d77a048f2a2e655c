package sheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	enc "github.com/MrJamesThe3rd/cierres/internal/encoding"
)

// candidateDelimiters in order of preference when counts tie.
var candidateDelimiters = []rune{';', ',', '\t'}

func readCSV(r io.Reader) (string, [][]string, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return "", nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	line, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, fmt.Errorf("peek: %w", err)
	}

	delim := sniffDelimiter(line)
	slog.Debug("reading csv", "charset", charset, "delimiter", string(delim))

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("read csv: %w", err)
	}

	return "", rows, nil
}

// sniffDelimiter picks the candidate occurring most often in the first line,
// ignoring quoted sections.
func sniffDelimiter(buf []byte) rune {
	counts := make(map[rune]int, len(candidateDelimiters))
	quoted := false

	for _, r := range string(buf) {
		if r == '"' {
			quoted = !quoted
			continue
		}

		if quoted {
			continue
		}

		if r == '\n' {
			break
		}

		counts[r]++
	}

	best := candidateDelimiters[0]
	for _, d := range candidateDelimiters[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}
