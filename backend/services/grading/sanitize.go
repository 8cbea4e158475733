package grading

type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type PublicQuestion struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Options []PublicOption `json:"options"`
}

// Sanitize drops correctness flags and explanations so a test can be sent to
// a client that is about to take it.
func Sanitize(t Test) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(t.Questions))
	for _, q := range t.Questions {
		pq := PublicQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Options: make([]PublicOption, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			pq.Options = append(pq.Options, PublicOption{ID: o.ID, Text: o.Text})
		}
		out = append(out, pq)
	}
	return out
}
