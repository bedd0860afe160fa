package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

// CanalCambios is the Redis Pub/Sub channel shared by every instance.
const CanalCambios = "sistemaventas:cambios"

// RedisBridge publishes local changes to Redis and replays changes made by
// other instances into the local hub. Own messages are recognized by Origen
// and skipped, since they were already delivered locally.
type RedisBridge struct {
	rdb    *redis.Client
	hub    *Hub
	origen string
}

func NewRedisBridge(rdb *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub, origen: uuid.NewString()}
}

// Publish delivers events locally first, then fans them out to other
// instances. Redis failures are logged and swallowed: local subscribers
// already saw the change and remote ones refetch on their next event.
func (b *RedisBridge) Publish(ctx context.Context, events ...Event) {
	b.hub.Publish(ctx, events...)
	if b.rdb == nil {
		return
	}
	for _, e := range events {
		e.Origen = b.origen
		payload, err := json.Marshal(e)
		if err != nil {
			continue
		}
		if err := b.rdb.Publish(ctx, CanalCambios, payload).Err(); err != nil {
			log.Warn().Err(err).Str("tabla", e.Tabla).Msg("realtime: no se pudo publicar en redis")
		}
	}
}

// Run relays remote events until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) (err error) {
	if b.rdb == nil {
		<-ctx.Done()
		return nil
	}
	ps := b.rdb.Subscribe(ctx, CanalCambios)
	defer func() { err = multierr.Append(err, ps.Close()) }()

	log.Info().Str("canal", CanalCambios).Str("origen", b.origen).Msg("realtime: escuchando cambios remotos")
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				log.Warn().Err(err).Msg("realtime: evento remoto inválido")
				continue
			}
			if e.Origen == b.origen {
				continue
			}
			b.hub.Publish(ctx, e)
		}
	}
}
