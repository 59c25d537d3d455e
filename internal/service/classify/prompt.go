package classify

import (
	"fmt"
	"strings"
)

// classifyPrompt builds the instruction prompt for one segment. The segment
// text is quoted with %q so embedded quotes and control characters cannot
// break the demanded response format; topics are embedded verbatim.
func classifyPrompt(text string, topics []string) string {
	quoted := make([]string, len(topics))
	for i, t := range topics {
		quoted[i] = fmt.Sprintf("%q", t)
	}

	var b strings.Builder
	b.WriteString("You are a workplace text(speech) classifier.\n\n")
	fmt.Fprintf(&b, "Given this message:\n%q\n\n", text)
	fmt.Fprintf(&b, "And the following sensitive topics:\n[%s]\n\n", strings.Join(quoted, ", "))
	b.WriteString("Classify the message into one of the following:\n")
	b.WriteString("- Safe: harmless, compliant\n")
	b.WriteString("- Warning: possibly sensitive, questionable\n")
	b.WriteString("- Critical: private, policy-violating, or high-risk\n\n")
	b.WriteString("Return a JSON object ONLY in this format:\n")
	b.WriteString("{\n")
	b.WriteString(`  "sensitivity": "Safe" | "Warning" | "Critical",` + "\n")
	b.WriteString(`  "reason": "short explanation"` + "\n")
	b.WriteString("}\n")
	return b.String()
}
