package rag

import (
	"context"
	"fmt"
	"strings"

	"docent-ai/internal/contextutil"
)

const rewritePromptFormat = `당신은 대화 맥락을 정리하는 전문가입니다.
아래 [이전 대화 내용]을 참고하여, 사용자의 마지막 [질문]에서 "이 유물", "그것"과 같은 지시어를 실제 대상으로 바꾸어,
대화 기록 없이도 이해할 수 있는 하나의 완결된 질문으로 다시 작성해주세요.
다른 설명이나 주석 없이 다시 작성한 질문 한 문장만 답변해주세요.

[이전 대화 내용]
%s

[질문]
"%s"`

// Rewriter turns a follow-up question into a self-contained one using the
// conversation history. The rewritten form is a retrieval aid only: routing
// and retrieval see it, the final answer prompt still carries the literal
// question.
type Rewriter struct {
	generator TextGenerator
}

// NewRewriter creates a new query rewriter.
func NewRewriter(generator TextGenerator) *Rewriter {
	return &Rewriter{generator: generator}
}

// Rewrite resolves references in query against history. With empty history the
// query is returned unchanged without an LLM call. A failed or empty rewrite
// falls back to the original query; rewriting never aborts the pipeline.
func (r *Rewriter) Rewrite(ctx context.Context, query string, history []Message) string {
	if len(history) == 0 {
		return query
	}

	logger := contextutil.LoggerFromContext(ctx)

	prompt := fmt.Sprintf(rewritePromptFormat, FormatHistory(history), query)
	raw, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		logger.WarnContext(ctx, "query rewrite failed, using original query", "error", err)
		return query
	}

	rewritten := trimQuotes(raw)
	if rewritten == "" {
		logger.WarnContext(ctx, "query rewrite returned empty output, using original query")
		return query
	}

	logger.InfoContext(ctx, "query rewritten", "original", query, "rewritten", rewritten)
	return rewritten
}

// FormatHistory renders the conversation as alternating speaker-labeled lines,
// oldest first.
func FormatHistory(history []Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Text))
	}
	return strings.Join(lines, "\n")
}

// trimQuotes strips surrounding whitespace and quotation characters from the
// model's raw output.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'“”‘’")
	return strings.TrimSpace(s)
}
