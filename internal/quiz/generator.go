package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quizstake/quizstake/internal/httputil"
	"github.com/quizstake/quizstake/pkg/logger"
)

// Generator fetches AI-generated question sets from the content-generation
// service. Output is validated and rebalanced before a session may use it.
type Generator struct {
	client   *httputil.Client
	endpoint string
	log      *logger.Logger
}

// NewGenerator constructs a generator for the given endpoint. When client is
// nil a default one is built carrying apiKey as a bearer token.
func NewGenerator(client *httputil.Client, endpoint, apiKey string, log *logger.Logger) (*Generator, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("generator endpoint required")
	}
	if client == nil {
		client = httputil.NewClient(httputil.Config{
			Timeout:     60 * time.Second,
			BearerToken: strings.TrimSpace(apiKey),
		})
	}
	if log == nil {
		log = logger.NewDefault("quiz-generator")
	}
	return &Generator{
		client:   client,
		endpoint: endpoint,
		log:      log,
	}, nil
}

// Generate fetches a question set for the topic, validates it, and balances
// the correct-answer distribution.
func (g *Generator) Generate(ctx context.Context, topic string) ([]Question, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic required")
	}

	request := map[string]interface{}{
		"topic": topic,
		"count": QuestionCount,
	}
	var payload struct {
		Questions []Question `json:"questions"`
	}
	if err := g.client.PostJSON(ctx, g.endpoint, request, &payload); err != nil {
		return nil, fmt.Errorf("generation request: %w", err)
	}

	if err := ValidateQuestions(payload.Questions); err != nil {
		return nil, fmt.Errorf("invalid question set: %w", err)
	}

	questions := BalanceAnswers(payload.Questions)
	g.log.WithField("topic", topic).Infof("generated %d questions", len(questions))
	return questions, nil
}

// ValidateQuestions checks the structural invariants of a generated set:
// exactly 10 questions, 4 distinct options each, a correct index in range,
// and an explanation.
func ValidateQuestions(questions []Question) error {
	if len(questions) != QuestionCount {
		return fmt.Errorf("expected %d questions, got %d", QuestionCount, len(questions))
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: empty text", i)
		}
		if len(q.Options) != OptionCount {
			return fmt.Errorf("question %d: expected %d options, got %d", i, OptionCount, len(q.Options))
		}
		seen := make(map[string]bool, OptionCount)
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("question %d: empty option", i)
			}
			if seen[opt] {
				return fmt.Errorf("question %d: duplicate option %q", i, opt)
			}
			seen[opt] = true
		}
		if q.Correct < 0 || q.Correct >= OptionCount {
			return fmt.Errorf("question %d: correct index %d out of range", i, q.Correct)
		}
		if strings.TrimSpace(q.Explanation) == "" {
			return fmt.Errorf("question %d: empty explanation", i)
		}
	}
	return nil
}
