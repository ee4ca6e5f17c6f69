package quiz

// OptionKeys is the fixed label order questions are rendered and answered in.
var OptionKeys = []string{"a", "b", "c", "d"}

// Question is an immutable trivia record. Sessions reference questions for
// the lifetime of a game; nothing in this package mutates them.
type Question struct {
	Text          string
	Options       map[string]string
	CorrectOption string
	Explanation   string
	Category      string
	Region        string
}

// Option returns the text for a label, or an em dash when the label is
// missing from the record (imported banks are not always complete).
func (q Question) Option(key string) string {
	if text, ok := q.Options[key]; ok && text != "" {
		return text
	}
	return "—"
}

// CorrectText returns the text of the correct option.
func (q Question) CorrectText() string {
	return q.Option(q.CorrectOption)
}
