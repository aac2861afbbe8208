package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/lunabot/werewolf-server-go/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second
)

type Client struct {
	Channel string
	Events  chan Event
	Done    chan struct{}
}

// Broker fans out engine events over Redis pub/sub so every server instance
// sees every session's events regardless of which instance handled the action.
type Broker struct {
	redis   *redisclient.Client
	clients map[string]map[*Client]bool // channel -> set of clients
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:   redisClient,
		clients: make(map[string]map[*Client]bool),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (b *Broker) Subscribe(channel string) *Client {
	client := &Client{
		Channel: channel,
		Events:  make(chan Event, 100),
		Done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.clients[channel] == nil {
		b.clients[channel] = make(map[*Client]bool)
		go b.subscribeToRedis(channel)
	}
	b.clients[channel][client] = true
	clientCount := len(b.clients[channel])
	b.mu.Unlock()

	log.Info().
		Str("channel", channel).
		Int("clientCount", clientCount).
		Msg("event client subscribed")

	return client
}

func (b *Broker) Unsubscribe(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if clients, ok := b.clients[client.Channel]; ok {
		delete(clients, client)
		close(client.Done)

		if len(clients) == 0 {
			delete(b.clients, client.Channel)
		}

		log.Info().
			Str("channel", client.Channel).
			Int("clientCount", len(clients)).
			Msg("event client unsubscribed")
	}
}

// PublishSession publishes a public event on the session's channel.
func (b *Broker) PublishSession(ctx context.Context, sessionID string, event Event) error {
	return b.publish(ctx, redisclient.SessionChannel(sessionID), event)
}

// PublishParticipant publishes a private event on the participant's channel.
func (b *Broker) PublishParticipant(ctx context.Context, participantID string, event Event) error {
	return b.publish(ctx, redisclient.ParticipantChannel(participantID), event)
}

func (b *Broker) publish(ctx context.Context, channel string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, channel, data).Err()
}

func (b *Broker) subscribeToRedis(channel string) {
	pubsub := b.redis.Subscribe(b.ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()

	for {
		select {
		case <-b.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal event")
				continue
			}

			b.broadcast(channel, event)
		}
	}
}

func (b *Broker) broadcast(channel string, event Event) {
	b.mu.RLock()
	clients := b.clients[channel]
	b.mu.RUnlock()

	for client := range clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().
				Str("channel", channel).
				Msg("client event buffer full, dropping event")
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, clients := range b.clients {
		for client := range clients {
			close(client.Done)
		}
	}
	b.clients = make(map[string]map[*Client]bool)
}

func (b *Broker) ClientCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[channel])
}
