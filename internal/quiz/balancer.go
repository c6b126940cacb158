package quiz

// MaxPerOption caps how often any single option index may carry the correct
// answer across a question set: ceil(10 * 0.4) = 4. This is the hard
// fairness invariant; the target shape below is only a tie-break.
const MaxPerOption = 4

// answerTargets is the preferred correct-answer distribution over the four
// option indexes. Sets within one of every target are left untouched.
var answerTargets = [OptionCount]int{2, 3, 2, 3}

// BalanceAnswers flattens a skewed correct-answer distribution across a
// 10-question set. Rebalancing relocates the correct label: the correct
// option string swaps positions with the string in the slot being assigned,
// so the multiset of option strings in each question never changes.
// Balanced input is returned unchanged, which makes the function idempotent.
func BalanceAnswers(questions []Question) []Question {
	if len(questions) != QuestionCount {
		return questions
	}

	var counts [OptionCount]int
	for _, q := range questions {
		if q.Correct < 0 || q.Correct >= OptionCount {
			return questions
		}
		counts[q.Correct]++
	}

	if withinTolerance(counts) {
		return questions
	}

	remaining := answerTargets
	for i := range questions {
		c := questions[i].Correct
		if remaining[c] > 0 {
			remaining[c]--
			continue
		}
		// Over-represented relative to the remaining targets: move the
		// correct label into the next under-represented slot.
		for j := range remaining {
			if remaining[j] == 0 {
				continue
			}
			questions[i].Options[c], questions[i].Options[j] = questions[i].Options[j], questions[i].Options[c]
			questions[i].Correct = j
			remaining[j]--
			break
		}
	}

	return questions
}

// withinTolerance reports whether every correct-answer count sits within one
// of its target. Anything inside this band already satisfies the cap.
func withinTolerance(counts [OptionCount]int) bool {
	for i, c := range counts {
		diff := c - answerTargets[i]
		if diff < -1 || diff > 1 {
			return false
		}
	}
	return true
}
