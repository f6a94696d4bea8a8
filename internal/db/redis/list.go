package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/haven/internal/db"
)

// PushCapped runs LPUSH and LTRIM in one pipelined round-trip.
func (s *Store) PushCapped(ctx context.Context, key string, value []byte, keep int) error {
	if keep <= 0 {
		return fmt.Errorf("keep must be positive, got %d", keep)
	}
	cmds := rueidis.Commands{
		s.b().Lpush().Key(key).Element(rueidis.BinaryString(value)).Build(),
		s.b().Ltrim().Key(key).Start(0).Stop(int64(keep - 1)).Build(),
	}
	results := s.client.DoMulti(ctx, cmds...)
	if err := results[0].Error(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	if err := results[1].Error(); err != nil {
		return &db.Error{Op: db.OpLTrim, Err: err}
	}
	return nil
}

// Range returns list elements between start and stop inclusive. A missing key yields an empty slice.
func (s *Store) Range(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}

	out := make([][]byte, 0, len(msgs))
	for i := range msgs {
		b, err := msgs[i].AsBytes()
		if err != nil {
			return nil, &db.Error{Op: db.OpLRange, Err: fmt.Errorf("element %d: %w", i, err)}
		}
		out = append(out, b)
	}
	return out, nil
}
