package clredis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store Redis partagé : stockage des captchas du login admin et
// compteurs temps réel des consentements
type RedisStore struct {
	client     *redis.Client
	expiration time.Duration
}

func New(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:     client,
		expiration: 5 * time.Minute,
	}
}

func (r *RedisStore) Set(id string, value string) error {
	ctx := context.Background()
	return r.client.Set(ctx, "captcha:"+id, value, r.expiration).Err()
}

func (r *RedisStore) Get(id string, clear bool) string {
	ctx := context.Background()
	key := "captcha:" + id
	val, _ := r.client.Get(ctx, key).Result()
	if clear {
		r.client.Del(ctx, key)
	}
	return val
}

func (r *RedisStore) Verify(id, answer string, clear bool) bool {
	v := r.Get(id, clear)
	return v == answer
}

// ===== Compteurs temps réel des consentements =====

func dailyKey(projectID string, day time.Time) string {
	return fmt.Sprintf("consents:daily:%s:%s", projectID, day.Format("2006-01-02"))
}

func visitorKey(projectID string, day time.Time) string {
	return fmt.Sprintf("consents:visitors:%s:%s", projectID, day.Format("2006-01-02"))
}

// RecordConsent incrémente les compteurs du jour pour un projet.
// Les clés expirent après 31 jours, l'historique long terme vit en base.
func (r *RedisStore) RecordConsent(ctx context.Context, projectID, fingerprint string, categories map[string]bool) {
	now := time.Now()

	key := dailyKey(projectID, now)
	r.client.HIncrBy(ctx, key, "total", 1)
	for category, granted := range categories {
		if granted {
			r.client.HIncrBy(ctx, key, category, 1)
		}
	}
	r.client.Expire(ctx, key, 31*24*time.Hour)

	// Marquer le fingerprint comme vu aujourd'hui
	vkey := visitorKey(projectID, now)
	r.client.SAdd(ctx, vkey, fingerprint)
	r.client.Expire(ctx, vkey, 31*24*time.Hour)
}

// RealtimeStats retourne les compteurs du jour pour un projet
func (r *RedisStore) RealtimeStats(ctx context.Context, projectID string) (map[string]interface{}, error) {
	now := time.Now()

	counters, err := r.client.HGetAll(ctx, dailyKey(projectID, now)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	uniqueVisitors, err := r.client.SCard(ctx, visitorKey(projectID, now)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	return map[string]interface{}{
		"today_counters":        counters,
		"today_unique_visitors": uniqueVisitors,
	}, nil
}
