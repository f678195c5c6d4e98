//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"enricher/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	container *containers.RedisContainer
	store     *Redis
}

func (s *RedisStoreSuite) SetupSuite() {
	s.container = containers.NewRedisContainer(s.T())
	s.store = NewRedis(s.container.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.container.FlushAll(context.Background()))
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) TestGetOrLoad() {
	ctx := context.Background()

	s.Run("loads on miss and serves from redis afterwards", func() {
		calls := 0
		loader := func(context.Context) ([]byte, error) {
			calls++
			return []byte("loaded"), nil
		}

		v, err := s.store.GetOrLoad(ctx, "k1", time.Minute, loader)
		s.Require().NoError(err)
		s.Equal("loaded", string(v))

		v, err = s.store.GetOrLoad(ctx, "k1", time.Minute, loader)
		s.Require().NoError(err)
		s.Equal("loaded", string(v))
		s.Equal(1, calls)
	})

	s.Run("loader failure is returned and not cached", func() {
		boom := errors.New("upstream down")
		_, err := s.store.GetOrLoad(ctx, "k2", time.Minute, func(context.Context) ([]byte, error) {
			return nil, boom
		})
		s.Require().ErrorIs(err, boom)
		s.Require().NotErrorIs(err, ErrBackend)

		v, err := s.store.GetOrLoad(ctx, "k2", time.Minute, func(context.Context) ([]byte, error) {
			return []byte("recovered"), nil
		})
		s.Require().NoError(err)
		s.Equal("recovered", string(v))
	})

	s.Run("entries honor their ttl", func() {
		_, err := s.store.GetOrLoad(ctx, "k3", 500*time.Millisecond, func(context.Context) ([]byte, error) {
			return []byte("short-lived"), nil
		})
		s.Require().NoError(err)

		s.Eventually(func() bool {
			_, ok, err := s.store.Get(ctx, "k3")
			return err == nil && !ok
		}, 3*time.Second, 100*time.Millisecond)
	})
}

func (s *RedisStoreSuite) TestBackendFailure() {
	s.Run("a closed connection surfaces as ErrBackend", func() {
		broken := NewRedis(s.container.BrokenClient(s.T()))
		_, err := broken.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
			return []byte("never"), nil
		})
		s.Require().ErrorIs(err, ErrBackend)
	})
}

func (s *RedisStoreSuite) TestGetAndPut() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := s.store.Get(ctx, "k")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("v", string(v))
}
