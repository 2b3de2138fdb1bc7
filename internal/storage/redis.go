package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"tipsy/backend/internal/models"
)

// ChatChannel is the Redis pub/sub channel chat messages are
// broadcast on. Every running instance subscribes to it, so sessions
// survive being spread across processes.
const ChatChannel = "chat:broadcast"

// RedisService backs Snapshots with Redis and doubles as the chat
// message publisher.
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService wraps an already-connected client.
func NewRedisService(rdb *redis.Client) *RedisService {
	return &RedisService{
		Client: rdb,
		Ctx:    context.Background(),
	}
}

func (s *RedisService) Load(key string) ([]byte, bool, error) {
	blob, err := s.Client.Get(s.Ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (s *RedisService) Save(key string, value []byte) error {
	return s.Client.Set(s.Ctx, key, value, 0).Err()
}

func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// PublishMessage broadcasts a chat message to every subscribed
// instance.
func (s *RedisService) PublishMessage(sessionID string, msg models.ChatMessage) error {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Client.Publish(s.Ctx, ChatChannel, string(msgBytes)).Err()
}

// SubscribeChat returns the pub/sub handle for the chat broadcast
// channel. The caller owns closing it.
func (s *RedisService) SubscribeChat() *redis.PubSub {
	return s.Client.Subscribe(s.Ctx, ChatChannel)
}
