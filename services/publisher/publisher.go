package publisher

// Publisher represents a service for publishing restock alerts to the
// external notification fan-out.
type Publisher interface {
	// Publish publishes an alert message keyed by retailer name
	Publish(retailerKey string, message []byte) error

	// TrimStream trims the alert stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
