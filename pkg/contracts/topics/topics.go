package topics

const (
	// Bolas
	BallFeed     = "ball_feed"
	BallRecorded = "ball_recorded"

	// DLQs
	BallFeedDLQ     = "ball_feed_dlq"
	BallRecordedDLQ = "ball_recorded_dlq"
)
