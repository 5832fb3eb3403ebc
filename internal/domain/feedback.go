package domain

// MaxFeedbackLen is the longest feedback text kept, in bytes.
const MaxFeedbackLen = 255

// Feedback is a free-text note left by a customer.
type Feedback struct {
	Text string `json:"text"`
}
