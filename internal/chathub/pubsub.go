package chathub

import (
	"encoding/json"
	"log"

	"tipsy/backend/internal/models"
	"tipsy/backend/internal/storage"
)

// StartPubSubListener bridges the Redis chat channel into the hub's
// broadcast loop. Messages published by any instance (including this
// one) arrive here and get delivered to local clients.
func (m *ManagerService) StartPubSubListener(rdb *storage.RedisService) {
	go func() {
		pubsub := rdb.SubscribeChat()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var chatMsg models.ChatMessage
			if err := json.Unmarshal([]byte(msg.Payload), &chatMsg); err != nil {
				log.Printf("Error unmarshalling Redis message: %v", err)
				continue
			}
			m.BroadcastCh <- chatMsg
		}
	}()
}
