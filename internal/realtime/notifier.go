package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "notifications:"

func Channel(profileID uint) string {
	return channelPrefix + strconv.FormatUint(uint64(profileID), 10)
}

func parseChannel(channel string) (uint, error) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected channel %q", channel)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("unexpected channel %q", channel)
	}
	return uint(id), nil
}

// Notifier fans billing events out to websocket clients. With Redis every
// instance receives the event through its subscriber; without it only the
// local hub is reached.
type Notifier struct {
	hub *Hub
	rdb *redis.Client
	log zerolog.Logger
}

func NewNotifier(hub *Hub, rdb *redis.Client, log zerolog.Logger) *Notifier {
	return &Notifier{hub: hub, rdb: rdb, log: log.With().Str("component", "notifier").Logger()}
}

func (n *Notifier) Notify(ctx context.Context, profileID uint, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Error().Err(err).Uint("profile_id", profileID).Msg("marshal event")
		return
	}

	if n.rdb == nil {
		n.hub.SendToProfile(profileID, payload)
		return
	}
	if err := n.rdb.Publish(ctx, Channel(profileID), payload).Err(); err != nil {
		n.log.Warn().Err(err).Uint("profile_id", profileID).Msg("redis publish failed, delivering locally")
		n.hub.SendToProfile(profileID, payload)
	}
}

// Run relays published events into the hub until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	if n.rdb == nil {
		<-ctx.Done()
		return nil
	}

	sub := n.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe notifications: %w", err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			profileID, err := parseChannel(msg.Channel)
			if err != nil {
				n.log.Warn().Err(err).Msg("skip message")
				continue
			}
			n.hub.SendToProfile(profileID, []byte(msg.Payload))
		}
	}
}
