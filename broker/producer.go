package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

var conn *nats.Conn

// InitProducer connects to NATS. The caller decides whether a failure is
// fatal; this backend treats the broker as optional and keeps serving when
// it is down.
func InitProducer(url string) error {
	nc, err := nats.Connect(url, nats.Name("registro-accidentes-backend"))
	if err != nil {
		return err
	}
	conn = nc
	log.Println("NATS producer initialized")
	return nil
}

// PublishMessage publishes to a subject, silently no-oping when the
// producer was never initialized. Publish failures are logged, not returned:
// lifecycle events are advisory.
func PublishMessage(subject string, value []byte) {
	if conn == nil {
		return
	}

	if err := conn.Publish(subject, value); err != nil {
		log.Printf("Failed to publish message to %s: %v", subject, err)
		return
	}
	log.Printf("Published message to subject %s", subject)
}

func CloseProducer() {
	if conn != nil {
		if err := conn.Drain(); err != nil {
			log.Printf("Failed to drain NATS connection: %v", err)
		}
		conn = nil
	}
}
