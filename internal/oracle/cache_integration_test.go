//go:build integration

package oracle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"giggate/internal/oracle"
	platformredis "giggate/internal/platform/redis"
	id "giggate/pkg/domain"
	"giggate/pkg/testutil/containers"
)

const cachedIdentity = id.Identity("0xdddddddddddddddddddddddddddddddddddddddd")

type CacheSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	client *platformredis.Client
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())

	client, err := platformredis.New(s.redis.URL)
	s.Require().NoError(err)
	s.client = client
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) TestReadThroughCachesScore() {
	ctx := context.Background()
	source := oracle.NewStatic(map[id.Identity]id.TrustScore{cachedIdentity: 0.6})
	cache := oracle.NewCache(source, s.client, time.Minute, nil)

	score, err := cache.Score(ctx, cachedIdentity)
	s.Require().NoError(err)
	s.Equal(id.TrustScore(0.6), score)

	// The cached value shadows a source change until the TTL passes.
	source.SetScore(cachedIdentity, 0.9)
	score, err = cache.Score(ctx, cachedIdentity)
	s.Require().NoError(err)
	s.Equal(id.TrustScore(0.6), score)
}

func (s *CacheSuite) TestCachedScoreSurvivesSourceOutage() {
	ctx := context.Background()
	source := oracle.NewStatic(map[id.Identity]id.TrustScore{cachedIdentity: 0.4})
	cache := oracle.NewCache(source, s.client, time.Minute, nil)

	_, err := cache.Score(ctx, cachedIdentity)
	s.Require().NoError(err)

	source.SetDown(true)
	score, err := cache.Score(ctx, cachedIdentity)
	s.Require().NoError(err)
	s.Equal(id.TrustScore(0.4), score)
}

func (s *CacheSuite) TestExpiryFallsBackToSource() {
	ctx := context.Background()
	source := oracle.NewStatic(map[id.Identity]id.TrustScore{cachedIdentity: 0.3})
	cache := oracle.NewCache(source, s.client, 100*time.Millisecond, nil)

	_, err := cache.Score(ctx, cachedIdentity)
	s.Require().NoError(err)

	source.SetScore(cachedIdentity, 0.8)
	require.Eventually(s.T(), func() bool {
		score, err := cache.Score(ctx, cachedIdentity)
		return err == nil && score == 0.8
	}, 2*time.Second, 50*time.Millisecond, "fresh score should surface once the key expires")
}
