package rag

import (
	"context"
	"fmt"
)

const simpleChatPromptFormat = `사용자가 다음과 같이 말했습니다: '%s'. 간단하고 친절하게 답변해주세요.`

const answerPromptFormat = `당신은 국립공주박물관의 전문 AI 도슨트입니다.
당신의 임무는 반드시 아래 [이전 대화 내용]과 [참고 자료]에만 근거하여 사용자의 마지막 [질문]에 대해 답변하는 것입니다.
자료에 없는 내용은 절대로 지어내지 말고, "자료에 없는 내용이라 답변할 수 없습니다."라고 솔직하게 답변하세요.
답변은 친절하고 이해하기 쉬운 설명체로 작성해주세요.

[중요 규칙]
- 일반적인 유물 설명에는 절대로 '소장품번호'와 같은 내부 관리 번호를 포함하지 마세요.
- 단, 사용자가 '유물번호'나 '소장품번호'를 명시적으로 물어보는 경우에만, 참고 자료에 있는 '소장품번호' 값을 사용하여 답변해야 합니다.

---
[이전 대화 내용]
%s
---
[참고 자료]
%s
---

[질문]
%s

[답변]
`

// Generator builds the final grounding prompt and invokes the LLM service.
type Generator struct {
	generator TextGenerator
}

// NewGenerator creates a new answer generator.
func NewGenerator(generator TextGenerator) *Generator {
	return &Generator{generator: generator}
}

// SimpleChat answers a conversational query with a lightweight prompt and no
// retrieval.
func (g *Generator) SimpleChat(ctx context.Context, query string) (string, error) {
	return g.generator.Generate(ctx, fmt.Sprintf(simpleChatPromptFormat, query))
}

// Answer builds the grounding prompt from the dialogue history, the assembled
// evidence block, and the literal user question, and runs a single LLM call.
// Any failure surfaces as a generation error; it is the pipeline's only
// caller-visible error shape.
func (g *Generator) Answer(ctx context.Context, query string, history []Message, evidence string) (string, error) {
	prompt := fmt.Sprintf(answerPromptFormat, FormatHistory(history), evidence, query)
	return g.generator.Generate(ctx, prompt)
}
