package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

const artifactsCSV = `id,명칭,소장품번호,세부번호,국적/시대1,재질1,지정구분,특징,신보고서 종합편 설명 내용,MUCH_URL,참고자료
A1,금동관,123,0,백제,금동,국보,"화려한   장식","무령왕릉   출토",https://example.com/relic/123,보고서 3장
,은팔찌,124,0,백제,은,,,,,
nan,지석,125,0,백제,돌,,,,,
A4,석수,abc,0,백제,돌,,,,,
`

func TestReadArtifactsCSV(t *testing.T) {
	path := writeCSV(t, "artifacts.csv", artifactsCSV)

	artifacts, err := ReadArtifactsCSV(path, "/static/images")
	if err != nil {
		t.Fatalf("ReadArtifactsCSV() error = %v", err)
	}

	// Rows with empty or nan ids are dropped.
	if len(artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(artifacts))
	}

	a := artifacts[0]
	if a.ID != "A1" || a.Name != "금동관" || a.AccessionNumber != "123" {
		t.Errorf("artifact = %+v", a)
	}
	if a.SourceURL != "https://example.com/relic/123" {
		t.Errorf("source url = %q", a.SourceURL)
	}
	if a.ImageURL != "/static/images/mur000123-00-00.jpg" {
		t.Errorf("image url = %q", a.ImageURL)
	}

	// Labelled sections present, whitespace collapsed.
	for _, want := range []string{"[유물명]: 금동관", "[시대]: 백제", "[재질]: 금동", "[주요 특징]: 화려한 장식"} {
		if !strings.Contains(a.RAGText, want) {
			t.Errorf("rag text missing %q:\n%s", want, a.RAGText)
		}
	}
	if strings.Contains(a.RAGText, "  ") || strings.Contains(a.RAGText, "\n") {
		t.Errorf("rag text whitespace not collapsed:\n%q", a.RAGText)
	}

	// Non-numeric accession number yields no image URL.
	if artifacts[1].ImageURL != "" {
		t.Errorf("image url for non-numeric accession = %q, want empty", artifacts[1].ImageURL)
	}
}

func TestReadArtifactsCSV_MissingColumn(t *testing.T) {
	path := writeCSV(t, "broken.csv", "id,명칭\nA1,금동관\n")

	if _, err := ReadArtifactsCSV(path, ""); err == nil {
		t.Fatal("ReadArtifactsCSV() expected error for missing column")
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		name      string
		accession string
		sub       string
		want      string
	}{
		{name: "padded main and sub", accession: "1", sub: "0", want: "/img/mur000001-00-00.jpg"},
		{name: "sub number splits into pairs", accession: "123", sub: "102", want: "/img/mur000123-00-10.jpg"},
		{name: "large accession", accession: "654321", sub: "0", want: "/img/mur654321-00-00.jpg"},
		{name: "non-numeric accession", accession: "공주-1", sub: "0", want: ""},
		{name: "non-numeric sub", accession: "1", sub: "a", want: ""},
		{name: "empty", accession: "", sub: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := imageURL("/img", tt.accession, tt.sub); got != tt.want {
				t.Errorf("imageURL(%q, %q) = %q, want %q", tt.accession, tt.sub, got, tt.want)
			}
		})
	}
}

func TestReadHistoryCSV(t *testing.T) {
	path := writeCSV(t, "history.csv", "source_file,text_chunk\nreport.pdf,발굴 개요\nreport.pdf,\nculture.pdf,백제 문화\n")

	chunks, err := ReadHistoryCSV(path)
	if err != nil {
		t.Fatalf("ReadHistoryCSV() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].SourceFile != "report.pdf" || chunks[0].TextChunk != "발굴 개요" {
		t.Errorf("chunk = %+v", chunks[0])
	}
	if chunks[1].TextChunk != "백제 문화" {
		t.Errorf("chunk = %+v", chunks[1])
	}
}
