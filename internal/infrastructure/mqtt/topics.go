package mqtt

// TopicPrefix is the base for the adapter's own topics.
//
// Player topics are entirely user-configured per capability; only the
// adapter's availability status lives under this prefix.
const TopicPrefix = "mediaplayer"

// StatusTopic returns the adapter availability topic.
//
// Online/offline payloads (including the Last Will) are published here,
// retained, so controllers can track adapter availability.
//
// Example: mediaplayer/system/status
func StatusTopic() string {
	return TopicPrefix + "/system/status"
}
