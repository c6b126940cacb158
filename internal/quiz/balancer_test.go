package quiz

import (
	"fmt"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

// makeQuestions builds a valid 10-question set with the given correct indexes.
func makeQuestions(correct []int) []Question {
	questions := make([]Question, len(correct))
	for i := range correct {
		options := make([]string, OptionCount)
		for j := 0; j < OptionCount; j++ {
			options[j] = fmt.Sprintf("q%d-opt%d", i, j)
		}
		questions[i] = Question{
			Text:        fmt.Sprintf("question %d", i),
			Options:     options,
			Correct:     correct[i],
			Explanation: fmt.Sprintf("explanation %d", i),
		}
	}
	return questions
}

func countCorrect(questions []Question) [OptionCount]int {
	var counts [OptionCount]int
	for _, q := range questions {
		counts[q.Correct]++
	}
	return counts
}

func TestBalanceAnswers_CapInvariant(t *testing.T) {
	cases := [][]int{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, // fully skewed
		{1, 1, 1, 1, 1, 1, 1, 3, 3, 3},
		{2, 2, 2, 2, 2, 0, 0, 0, 0, 0},
		{3, 3, 3, 3, 3, 3, 0, 1, 2, 3},
	}

	for _, correct := range cases {
		balanced := BalanceAnswers(makeQuestions(correct))
		counts := countCorrect(balanced)
		for i, c := range counts {
			if c > MaxPerOption {
				t.Errorf("input %v: option %d carries %d correct answers, cap is %d",
					correct, i, c, MaxPerOption)
			}
		}
	}
}

func TestBalanceAnswers_CapInvariant_Random(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		correct := make([]int, QuestionCount)
		for i := range correct {
			correct[i] = r.Intn(OptionCount)
		}

		balanced := BalanceAnswers(makeQuestions(correct))
		counts := countCorrect(balanced)
		for i, c := range counts {
			if c > MaxPerOption {
				t.Fatalf("iter %d input %v: option %d count %d exceeds cap", iter, correct, i, c)
			}
		}
	}
}

func TestBalanceAnswers_Idempotent(t *testing.T) {
	skewed := makeQuestions([]int{0, 0, 0, 0, 0, 0, 1, 1, 2, 3})

	once := BalanceAnswers(skewed)
	snapshot := make([]Question, len(once))
	for i, q := range once {
		snapshot[i] = Question{
			Text:        q.Text,
			Options:     append([]string(nil), q.Options...),
			Correct:     q.Correct,
			Explanation: q.Explanation,
		}
	}

	twice := BalanceAnswers(once)
	if !reflect.DeepEqual(snapshot, twice) {
		t.Error("second application changed an already balanced set")
	}
}

func TestBalanceAnswers_BalancedInputUnchanged(t *testing.T) {
	// Counts {3,3,2,2}: within one of every target, left untouched.
	correct := []int{0, 0, 0, 1, 1, 1, 2, 2, 3, 3}
	questions := makeQuestions(correct)
	original := make([]Question, len(questions))
	for i, q := range questions {
		original[i] = Question{
			Text:        q.Text,
			Options:     append([]string(nil), q.Options...),
			Correct:     q.Correct,
			Explanation: q.Explanation,
		}
	}

	balanced := BalanceAnswers(questions)
	if !reflect.DeepEqual(original, balanced) {
		t.Error("balanced input was modified")
	}
}

func TestBalanceAnswers_LabelRelocationOnly(t *testing.T) {
	correct := []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	questions := makeQuestions(correct)

	// Remember each question's option multiset and its correct answer text.
	wantAnswers := make([]string, len(questions))
	wantOptions := make([][]string, len(questions))
	for i, q := range questions {
		wantAnswers[i] = q.Options[q.Correct]
		sorted := append([]string(nil), q.Options...)
		sort.Strings(sorted)
		wantOptions[i] = sorted
	}

	balanced := BalanceAnswers(questions)
	for i, q := range balanced {
		if q.Options[q.Correct] != wantAnswers[i] {
			t.Errorf("question %d: correct answer text changed from %q to %q",
				i, wantAnswers[i], q.Options[q.Correct])
		}
		sorted := append([]string(nil), q.Options...)
		sort.Strings(sorted)
		if !reflect.DeepEqual(wantOptions[i], sorted) {
			t.Errorf("question %d: option multiset changed", i)
		}
	}
}

func TestBalanceAnswers_WrongSizePassthrough(t *testing.T) {
	short := makeQuestions([]int{0, 0, 0})
	if got := BalanceAnswers(short); !reflect.DeepEqual(short, got) {
		t.Error("non-10-question input should pass through unchanged")
	}
}
