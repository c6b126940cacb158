package quiz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveQuestions(t *testing.T, questions []Question, wantAuth string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if wantAuth != "" && req.Header.Get("Authorization") != wantAuth {
			rw.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body struct {
			Topic string `json:"topic"`
			Count int    `json:"count"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Count != QuestionCount {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(rw).Encode(map[string]interface{}{"questions": questions})
	}))
}

func TestGenerator_GenerateBalancesOutput(t *testing.T) {
	// Every correct answer on option 0: a maximally skewed but valid set.
	skewed := makeQuestions([]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	server := serveQuestions(t, skewed, "Bearer sekrit")
	defer server.Close()

	g, err := NewGenerator(nil, server.URL, "sekrit", nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	questions, err := g.Generate(context.Background(), "celo history")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != QuestionCount {
		t.Fatalf("got %d questions, want %d", len(questions), QuestionCount)
	}
	for i, c := range countCorrect(questions) {
		if c > MaxPerOption {
			t.Errorf("option %d carries %d correct answers after balancing", i, c)
		}
	}
}

func TestGenerator_RejectsInvalidSets(t *testing.T) {
	dupOptions := makeQuestions([]int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1})
	dupOptions[4].Options[1] = dupOptions[4].Options[0]

	badIndex := makeQuestions([]int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1})
	badIndex[0].Correct = 4

	noExplanation := makeQuestions([]int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1})
	noExplanation[9].Explanation = "  "

	cases := []struct {
		name      string
		questions []Question
	}{
		{"nine questions", makeQuestions([]int{0, 1, 2, 3, 0, 1, 2, 3, 0})},
		{"duplicate options", dupOptions},
		{"correct index out of range", badIndex},
		{"missing explanation", noExplanation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := serveQuestions(t, tc.questions, "")
			defer server.Close()

			g, err := NewGenerator(nil, server.URL, "", nil)
			if err != nil {
				t.Fatalf("NewGenerator: %v", err)
			}
			if _, err := g.Generate(context.Background(), "topic"); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

func TestGenerator_EmptyTopic(t *testing.T) {
	g, err := NewGenerator(nil, "http://localhost:0", "", nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if _, err := g.Generate(context.Background(), "  "); err == nil {
		t.Error("blank topic must be rejected")
	}
}

func TestNewGenerator_RequiresEndpoint(t *testing.T) {
	if _, err := NewGenerator(nil, "  ", "", nil); err == nil {
		t.Error("empty endpoint must be rejected")
	}
}
