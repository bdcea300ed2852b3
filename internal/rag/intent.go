package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docent-ai/internal/contextutil"
)

// Intent is the classified purpose of a query. It is a closed set: anything
// the classifier produces outside the four labels collapses to the default.
type Intent int

const (
	// IntentHistoricalBackground is the zero value on purpose: it is the
	// safest general-purpose retrieval path and the fallback for every
	// classification failure.
	IntentHistoricalBackground Intent = iota
	IntentArtifactDetail
	IntentArtifactComparison
	IntentSimpleChat
)

// Classification labels as the routing prompt was tuned against them.
const (
	labelArtifactDetail       = "유물_상세정보"
	labelHistoricalBackground = "역사_배경"
	labelArtifactComparison   = "유물_비교"
	labelSimpleChat           = "단순_대화"
)

func (i Intent) String() string {
	switch i {
	case IntentArtifactDetail:
		return labelArtifactDetail
	case IntentArtifactComparison:
		return labelArtifactComparison
	case IntentSimpleChat:
		return labelSimpleChat
	default:
		return labelHistoricalBackground
	}
}

const routingPromptFormat = `당신은 사용자의 질문 의도를 분석하는 라우팅 전문가입니다.
다음 [사용자 질문]을 보고, 질문의 의도를 아래 [질문 유형] 중 하나로 분류하여 JSON 형식으로만 답변해주세요.

[질문 유형]
- "유물_상세정보": 특정 유물 하나에 대한 상세 정보(모양, 재질, 출토 위치 등)를 묻는 질문.
- "역사_배경": 특정 시대, 사건, 기술, 문화 등 포괄적인 역사적 배경이나 지식을 묻는 질문.
- "유물_비교": 두 개 이상의 유물을 비교해달라는 질문.
- "단순_대화": 정보 검색이 필요 없는 일반적인 대화 (인사, 감사 등).

[사용자 질문]
"%s"

[분석 결과 (JSON 형식)]
{
  "classification": "여기에 분류 결과 입력",
  "reason": "분류 이유 요약"
}`

// routeResult is the structured record the classifier must answer with.
// Reason is logged only, never used downstream.
type routeResult struct {
	Classification string `json:"classification"`
	Reason         string `json:"reason"`
}

// Router classifies a rewritten, history-independent query into an Intent.
// The classifier is untrusted: any call failure, parse failure, or unknown
// label falls back to IntentHistoricalBackground.
type Router struct {
	generator TextGenerator
}

// NewRouter creates a new intent router.
func NewRouter(generator TextGenerator) *Router {
	return &Router{generator: generator}
}

// Classify routes the query into one of the four intents.
func (r *Router) Classify(ctx context.Context, query string) Intent {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := r.generator.Generate(ctx, fmt.Sprintf(routingPromptFormat, query))
	if err != nil {
		logger.WarnContext(ctx, "intent classification failed, using default", "error", err)
		return IntentHistoricalBackground
	}

	var result routeResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		logger.WarnContext(ctx, "unparseable router output, using default", "error", err, "raw", raw)
		return IntentHistoricalBackground
	}

	intent, ok := intentFromLabel(result.Classification)
	if !ok {
		logger.WarnContext(ctx, "unrecognized classification label, using default", "label", result.Classification)
		return IntentHistoricalBackground
	}

	logger.InfoContext(ctx, "query classified", "intent", intent.String(), "reason", result.Reason)
	return intent
}

// intentFromLabel maps a classification label to its Intent.
func intentFromLabel(label string) (Intent, bool) {
	switch strings.TrimSpace(label) {
	case labelArtifactDetail:
		return IntentArtifactDetail, true
	case labelHistoricalBackground:
		return IntentHistoricalBackground, true
	case labelArtifactComparison:
		return IntentArtifactComparison, true
	case labelSimpleChat:
		return IntentSimpleChat, true
	default:
		return IntentHistoricalBackground, false
	}
}

// stripCodeFences removes markdown code-fence markup some models wrap
// structured output in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
