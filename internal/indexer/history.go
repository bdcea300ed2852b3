package indexer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"docent-ai/internal/corpus"
)

// Column headers of the preprocessed history-chunk export.
const (
	colSourceFile = "source_file"
	colTextChunk  = "text_chunk"
)

// ReadHistoryCSV reads the pre-chunked excavation report export. Rows with an
// empty text chunk are dropped.
func ReadHistoryCSV(path string) ([]corpus.HistoryChunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history csv: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colSourceFile, colTextChunk} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("history csv missing column %q", required)
		}
	}

	var chunks []corpus.HistoryChunk
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}

		text := strings.TrimSpace(record[cols[colTextChunk]])
		if text == "" {
			continue
		}
		chunks = append(chunks, corpus.HistoryChunk{
			SourceFile: strings.TrimSpace(record[cols[colSourceFile]]),
			TextChunk:  text,
		})
	}
	return chunks, nil
}
