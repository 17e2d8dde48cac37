package events

// Topic constants for domain events emitted by the checkout flow.
const (
	TopicSessionStarted   = "checkout.session.started"
	TopicSessionAbandoned = "checkout.session.abandoned"
	TopicOrderSubmitted   = "checkout.order.submitted"
	TopicSubmissionFailed = "checkout.submission.failed"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicSessionStarted,
		TopicSessionAbandoned,
		TopicOrderSubmitted,
		TopicSubmissionFailed,
	}
}
