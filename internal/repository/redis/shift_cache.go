// Package redis holds Redis-backed caches.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

const shiftKeyPrefix = "shift:snapshot:"

// ShiftCache stores shift template snapshots as JSON. A nil client makes
// every lookup a miss and every write a no-op.
type ShiftCache struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ shift.SnapshotCache = (*ShiftCache)(nil)

func NewShiftCache(client *goredis.Client, ttl time.Duration) *ShiftCache {
	return &ShiftCache{client: client, ttl: ttl}
}

func shiftKey(id string) string { return shiftKeyPrefix + id }

// cachedTemplate is the wire form of a template in Redis.
type cachedTemplate struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	StartTime    shift.TimeOfDay `json:"start_time"`
	EndTime      shift.TimeOfDay `json:"end_time"`
	BreakMinutes int             `json:"break_minutes"`
	Overnight    bool            `json:"overnight"`
	PayFactor    float64         `json:"pay_factor"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
}

func (c cachedTemplate) template() shift.Template {
	return shift.Template{
		ID:           c.ID,
		Code:         c.Code,
		Name:         c.Name,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		BreakMinutes: c.BreakMinutes,
		Overnight:    c.Overnight,
		PayFactor:    c.PayFactor,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		DeletedAt:    c.DeletedAt,
	}
}

func fromTemplate(t shift.Template) cachedTemplate {
	return cachedTemplate{
		ID:           t.ID,
		Code:         t.Code,
		Name:         t.Name,
		StartTime:    t.StartTime,
		EndTime:      t.EndTime,
		BreakMinutes: t.BreakMinutes,
		Overnight:    t.Overnight,
		PayFactor:    t.PayFactor,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		DeletedAt:    t.DeletedAt,
	}
}

// Get reports ok=false on a cache miss.
func (c *ShiftCache) Get(ctx context.Context, id string) (shift.Template, bool, error) {
	if c.client == nil {
		return shift.Template{}, false, nil
	}

	raw, err := c.client.Get(ctx, shiftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return shift.Template{}, false, nil
		}
		return shift.Template{}, false, fmt.Errorf("redis get %s: %w", shiftKey(id), err)
	}

	var cached cachedTemplate
	if err := json.Unmarshal(raw, &cached); err != nil {
		return shift.Template{}, false, fmt.Errorf("unmarshal cached shift %s: %w", id, err)
	}
	return cached.template(), true, nil
}

func (c *ShiftCache) Set(ctx context.Context, t shift.Template) error {
	if c.client == nil {
		return nil
	}

	payload, err := json.Marshal(fromTemplate(t))
	if err != nil {
		return fmt.Errorf("marshal shift %s: %w", t.ID, err)
	}
	if err := c.client.Set(ctx, shiftKey(t.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", shiftKey(t.ID), err)
	}
	return nil
}

func (c *ShiftCache) Invalidate(ctx context.Context, id string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, shiftKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", shiftKey(id), err)
	}
	return nil
}
