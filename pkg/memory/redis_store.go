// Package memory guarda o estado conversacional de curta duração em Redis:
// slots pendentes entre turnos e o lock de processamento por chat.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matheusvb/atendai/pkg/engine"
)

// Store define as operações de estado conversacional
type Store interface {
	SavePending(ctx context.Context, chatID string, state *engine.PendingState) error
	LoadPending(ctx context.Context, chatID string) (*engine.PendingState, error)
	ClearPending(ctx context.Context, chatID string) error

	// AcquireChatLock tenta marcar o chat como "em processamento". Retorna
	// false quando já existe um turno em andamento para o mesmo chat.
	AcquireChatLock(ctx context.Context, chatID string, ttl time.Duration) (bool, error)
	ReleaseChatLock(ctx context.Context, chatID string) error

	Ping(ctx context.Context) error
	Close() error
}

// RedisStore implementa Store sobre Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore cria o store conectado ao Redis da URL informada
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("URL do Redis inválida: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("erro ao conectar no Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) pendingKey(chatID string) string {
	return fmt.Sprintf("pending:%s", chatID)
}

func (r *RedisStore) lockKey(chatID string) string {
	return fmt.Sprintf("chatlock:%s", chatID)
}

// SavePending grava o estado de slots pendentes do chat com TTL
func (r *RedisStore) SavePending(ctx context.Context, chatID string, state *engine.PendingState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("erro ao serializar estado pendente: %w", err)
	}

	if err := r.client.Set(ctx, r.pendingKey(chatID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("erro ao salvar estado pendente: %w", err)
	}
	return nil
}

// LoadPending lê o estado pendente do chat. Retorna nil quando não há.
func (r *RedisStore) LoadPending(ctx context.Context, chatID string) (*engine.PendingState, error) {
	data, err := r.client.Get(ctx, r.pendingKey(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar estado pendente: %w", err)
	}

	var state engine.PendingState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("estado pendente corrompido: %w", err)
	}
	return &state, nil
}

// ClearPending remove o estado pendente do chat
func (r *RedisStore) ClearPending(ctx context.Context, chatID string) error {
	if err := r.client.Del(ctx, r.pendingKey(chatID)).Err(); err != nil {
		return fmt.Errorf("erro ao limpar estado pendente: %w", err)
	}
	return nil
}

// AcquireChatLock usa SET NX para garantir no máximo um turno em
// processamento por chat. O TTL evita lock órfão se o processo cair.
func (r *RedisStore) AcquireChatLock(ctx context.Context, chatID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.lockKey(chatID), time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao adquirir lock do chat: %w", err)
	}
	return ok, nil
}

// ReleaseChatLock libera o lock do chat
func (r *RedisStore) ReleaseChatLock(ctx context.Context, chatID string) error {
	if err := r.client.Del(ctx, r.lockKey(chatID)).Err(); err != nil {
		return fmt.Errorf("erro ao liberar lock do chat: %w", err)
	}
	return nil
}

// Ping verifica a conexão com o Redis
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close fecha a conexão com o Redis
func (r *RedisStore) Close() error {
	return r.client.Close()
}
