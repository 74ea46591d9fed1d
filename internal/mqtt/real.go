package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/glockwork/ControLeo2/internal/logger"
	"github.com/glockwork/ControLeo2/internal/models"
	"github.com/glockwork/ControLeo2/internal/reflow"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// bufferCapacity bounds the offline queue. At one status per second
	// this covers a few minutes of broker outage.
	bufferCapacity = 256
)

// RealPublisher publishes to an MQTT broker over the network. While the
// broker is unreachable, messages queue in a fixed ring and replay once the
// auto-reconnect succeeds.
type RealPublisher struct {
	client paho.Client
	log    *logger.Logger

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher connects to the given broker, e.g. "tcp://10.0.0.5:1883".
func NewRealPublisher(broker, clientID string, log *logger.Logger) (*RealPublisher, error) {
	p := &RealPublisher{
		log:    log,
		buffer: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.drain() })

	// Assign before Connect: the connect handler fires on the paho
	// goroutine and reads p.client.
	p.client = paho.NewClient(opts)

	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s: timeout after %s", broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}

	return p, nil
}

// PublishStatus sends a status snapshot, retained so a late subscriber sees
// the current state immediately. QoS 0: the next snapshot supersedes it.
func (p *RealPublisher) PublishStatus(st reflow.Status) error {
	payload, err := FormatStatusPayload(st)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}
	return p.publish(TopicStatus, 0, true, payload)
}

// PublishEvent sends a process event. QoS 1: each one matters to a
// downstream recorder.
func (p *RealPublisher) PublishEvent(e models.OvenEvent) error {
	payload, err := FormatEventPayload(e)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}
	return p.publish(TopicEvents, 1, false, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		dropped := p.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		queued := p.buffer.len()
		p.mu.Unlock()

		if dropped {
			p.log.Warnw("mqtt buffer full, dropping oldest messages", "capacity", bufferCapacity)
		} else {
			p.log.Debugw("mqtt offline, buffered message", "topic", topic, "queued", queued)
		}
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout after %s", topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// drain replays buffered messages after a reconnect, oldest first.
func (p *RealPublisher) drain() {
	p.mu.Lock()
	msgs := p.buffer.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	p.log.Infow("mqtt reconnected, replaying buffered messages", "count", len(msgs))
	for _, m := range msgs {
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warnw("replay timed out, remaining messages dropped", "topic", m.topic)
			return
		}
		if err := token.Error(); err != nil {
			p.log.Warnw("replay failed", "topic", m.topic, "error", err)
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker, allowing in-flight messages 1s to
// finish.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

var _ Publisher = (*RealPublisher)(nil)
var _ ConnectionStatus = (*RealPublisher)(nil)
