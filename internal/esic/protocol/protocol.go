// Package protocol allocates the public protocol codes printed on receipts.
// Uniqueness is the only property the lifecycle relies on; the encoding is
// chosen per deployment.
package protocol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "ESIC"

// Random issues "PREFIX-XXXXXXXX" codes from eight upper-case hex digits of a
// fresh UUID. Collisions are caught by the store's unique constraint.
type Random struct {
	prefix string
}

func NewRandom(prefix string) *Random {
	return &Random{prefix: prefixOrDefault(prefix)}
}

func (r *Random) Allocate(_ context.Context, _ time.Time) (string, error) {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return r.prefix + "-" + strings.ToUpper(hex[:8]), nil
}

// Sequence issues "PREFIX-YYYY-NNNNNN" codes from a per-year Redis counter,
// so numbering restarts every January in the reference zone.
type Sequence struct {
	client redis.Cmdable
	prefix string
	loc    *time.Location
}

func NewSequence(client redis.Cmdable, prefix string, loc *time.Location) *Sequence {
	if loc == nil {
		loc = time.UTC
	}
	return &Sequence{client: client, prefix: prefixOrDefault(prefix), loc: loc}
}

func (s *Sequence) Allocate(ctx context.Context, now time.Time) (string, error) {
	year := now.In(s.loc).Year()
	n, err := s.client.Incr(ctx, s.key(year)).Result()
	if err != nil {
		return "", fmt.Errorf("increment protocol sequence: %w", err)
	}
	return fmt.Sprintf("%s-%04d-%06d", s.prefix, year, n), nil
}

func (s *Sequence) key(year int) string {
	return fmt.Sprintf("protocol:%s:%04d", strings.ToLower(s.prefix), year)
}

func prefixOrDefault(prefix string) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}
