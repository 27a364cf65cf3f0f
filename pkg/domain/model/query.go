package model

// Query is a topic scoped natural language question. It is never persisted.
type Query struct {
	Input string `json:"input"`
	Topic string `json:"topic"`
}

// Validate checks that both fields have at least 5 characters
func (x *Query) Validate() error {
	var errs ValidationErrors
	errs.minLength("input", x.Input)
	errs.minLength("topic", x.Topic)
	return errs.result()
}

// RetrievalResult is the generated answer with its distinct source URLs
type RetrievalResult struct {
	Output  string   `json:"output"`
	Sources []string `json:"sources"`
}
