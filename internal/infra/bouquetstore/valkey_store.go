package bouquetstore

import (
	"context"

	"github.com/valkey-io/valkey-go"

	"github.com/florelle/fleuriste/internal/domain/bouquet"
)

// ValkeyStore keeps occasion counters in a Valkey sorted set.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "bouquet"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// IncrementOccasion bumps the counter for one occasion.
func (s *ValkeyStore) IncrementOccasion(ctx context.Context, occasion string) error {
	if occasion == "" {
		return nil
	}
	cmd := s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(occasion).Build()
	return s.client.Do(ctx, cmd).Error()
}

// TopOccasions returns the most frequent occasions, highest count first.
func (s *ValkeyStore) TopOccasions(ctx context.Context, limit int) ([]bouquet.OccasionCount, error) {
	if limit <= 0 {
		return nil, nil
	}
	cmd := s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(int64(limit - 1)).Withscores().Build()
	entries, err := s.client.Do(ctx, cmd).AsZScores()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]bouquet.OccasionCount, 0, len(entries))
	for _, entry := range entries {
		out = append(out, bouquet.OccasionCount{
			Occasion: entry.Member,
			Count:    int64(entry.Score),
		})
	}
	return out, nil
}

func (s *ValkeyStore) trendingKey() string {
	return s.prefix + ":occasions:trending"
}
