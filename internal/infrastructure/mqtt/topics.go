package mqtt

import (
	"fmt"
	"strings"
)

// statusSuffix is appended to the line topic to form the status topic.
// The status topic is a sibling of the line topic so that AllLines never
// delivers status documents to a line protocol consumer.
const statusSuffix = "_status"

// Topics derives the topics used for one line protocol stream.
//
//	topics := mqtt.Topics{Root: "influxwire/lines"}
//	topics.Lines()  // "influxwire/lines"
//	topics.Status() // "influxwire/lines_status"
type Topics struct {
	Root string
}

// Lines returns the topic line protocol payloads are published to.
func (t Topics) Lines() string {
	return strings.TrimSuffix(t.Root, "/")
}

// Status returns the retained topic carrying the publisher's online state.
func (t Topics) Status() string {
	return t.Lines() + statusSuffix
}

// AllLines returns a subscription filter matching the line topic and its
// subtopics, for consumers such as Telegraf's mqtt_consumer.
func (t Topics) AllLines() string {
	return t.Lines() + "/#"
}

// validatePublishTopic rejects topics a broker would refuse for PUBLISH.
func validatePublishTopic(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcards are not allowed in %q", ErrInvalidTopic, topic)
	}
	if strings.ContainsRune(topic, 0) {
		return fmt.Errorf("%w: NUL character in topic", ErrInvalidTopic)
	}
	return nil
}
