package indexer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"docent-ai/internal/corpus"
)

// Column headers of the museum's raw artifact export.
const (
	colID              = "id"
	colName            = "명칭"
	colAccessionNumber = "소장품번호"
	colSubNumber       = "세부번호"
	colEra             = "국적/시대1"
	colMaterial        = "재질1"
	colDesignation     = "지정구분"
	colFeatures        = "특징"
	colDescription     = "신보고서 종합편 설명 내용"
	colSourceURL       = "MUCH_URL"
	colReferences      = "참고자료"
)

// ReadArtifactsCSV reads the raw artifact export and normalizes each row into
// a corpus record. Rows without a usable id are dropped. imageBaseURL prefixes
// the synthesized image file names.
func ReadArtifactsCSV(path, imageBaseURL string) ([]corpus.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifacts csv: %w", err)
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
	for _, required := range []string{colID, colName, colAccessionNumber} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("artifacts csv missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var artifacts []corpus.Artifact
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}

		id := field(record, colID)
		if id == "" || strings.EqualFold(id, "nan") {
			continue
		}

		accession := field(record, colAccessionNumber)
		artifacts = append(artifacts, corpus.Artifact{
			ID:              id,
			Name:            field(record, colName),
			AccessionNumber: accession,
			RAGText: composeRAGText(
				field(record, colName),
				field(record, colEra),
				field(record, colMaterial),
				field(record, colDesignation),
				field(record, colFeatures),
				field(record, colDescription),
				field(record, colReferences),
			),
			SourceURL: field(record, colSourceURL),
			ImageURL:  imageURL(imageBaseURL, accession, field(record, colSubNumber)),
		})
	}
	return artifacts, nil
}

// composeRAGText builds the labelled retrieval document for one artifact and
// collapses all runs of whitespace, matching the format the embeddings were
// tuned on.
func composeRAGText(name, era, material, designation, features, description, references string) string {
	text := fmt.Sprintf(
		"[유물명]: %s\n[시대]: %s\n[재질]: %s\n[지정 정보]: %s\n[주요 특징]: %s\n[상세 설명]: %s\n[참고 자료]: %s",
		name, era, material, designation, features, description, references,
	)
	return strings.Join(strings.Fields(text), " ")
}

// imageURL derives the image file name from the accession and sub numbers.
// The accession number pads to six digits and the sub number to five, split as
// two pairs, e.g. accession 1 sub 0 yields mur000001-00-00.jpg. Non-numeric
// inputs yield no URL; many older records have none.
func imageURL(baseURL, accessionNumber, subNumber string) string {
	mainNo, err := strconv.Atoi(accessionNumber)
	if err != nil || mainNo < 0 {
		return ""
	}
	subNo, err := strconv.Atoi(subNumber)
	if err != nil || subNo < 0 {
		return ""
	}

	subPadded := fmt.Sprintf("%05d", subNo)
	return fmt.Sprintf("%s/mur%06d-%s-%s.jpg", baseURL, mainNo, subPadded[:2], subPadded[2:4])
}
