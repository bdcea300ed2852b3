// Package corpus holds the fixed museum corpus: artifact records and
// historical-document chunks, aligned row-for-row with the vector indexes.
package corpus

// Document is the shared view of one corpus row consumed by the evidence
// assembler. Type-specific fields stay behind the concrete types.
type Document interface {
	// SourceLabel identifies where the document came from (artifact name or
	// source file name).
	SourceLabel() string
	// Text is the primary retrievable text of the document.
	Text() string
	// Link is an external reference URL, or "" when none exists.
	Link() string
}

// Artifact is one museum artifact row from the artifact store.
// AccessionNumber is the internal catalog identifier and is a restricted
// field: it must never be written into assembled evidence text.
type Artifact struct {
	ID              string
	Name            string
	AccessionNumber string
	RAGText         string
	SourceURL       string
	ImageURL        string
}

func (a Artifact) SourceLabel() string { return "유물 DB" }
func (a Artifact) Text() string        { return a.RAGText }
func (a Artifact) Link() string        { return a.SourceURL }

// HistoryChunk is one text chunk from the historical-document store.
type HistoryChunk struct {
	SourceFile string
	TextChunk  string
}

func (h HistoryChunk) SourceLabel() string { return h.SourceFile }
func (h HistoryChunk) Text() string        { return h.TextChunk }
func (h HistoryChunk) Link() string        { return "" }
