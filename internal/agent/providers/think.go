package providers

import "regexp"

var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinkTags removes <think>...</think> reasoning markers from
// decoded text output (§4.2 content mapping).
func stripThinkTags(text string) string {
	return thinkTagRe.ReplaceAllString(text, "")
}
