package quiz

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the instruction sent to the LLM for req.
func BuildPrompt(req Request) string {
	n := req.Count
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful assistant that writes multiple-choice quiz questions for a learner, based on the skill, the learner's level and the topic they need. Design exactly %d distinct questions. Each question has 4 possible answers: one correct answer and three incorrect ones.\n\n", n)
	b.WriteString("Structure the response as a list of lists:\n\n")
	fmt.Fprintf(&b, "1. An outer list that contains exactly %d inner lists.\n", n)
	b.WriteString("2. Each inner list holds exactly 5 strings in this order:\n")
	b.WriteString("   - the question\n")
	b.WriteString("   - the correct answer\n")
	b.WriteString("   - the first incorrect answer\n")
	b.WriteString("   - the second incorrect answer\n")
	b.WriteString("   - the third incorrect answer\n\n")
	b.WriteString("The output must mirror this structure:\n")
	b.WriteString("[\n")
	b.WriteString("    [\"Question 1\", \"Correct Answer 1\", \"Incorrect Answer 1.1\", \"Incorrect Answer 1.2\", \"Incorrect Answer 1.3\"],\n")
	b.WriteString("    [\"Question 2\", \"Correct Answer 2\", \"Incorrect Answer 2.1\", \"Incorrect Answer 2.2\", \"Incorrect Answer 2.3\"],\n")
	b.WriteString("    ...\n")
	b.WriteString("]\n\n")
	fmt.Fprintf(&b, "Skill: %s\nLevel: %s\nTopic: %s\n\n", req.Skill, req.Level, req.Topic)
	b.WriteString("Reply with the list only. Do not name the list, do not wrap it in code fences and do not add any other text.")
	return b.String()
}
