//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"siteguard/internal/schema/cache"
	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	"siteguard/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewRedis(s.redis.Client, cache.WithTTL(time.Minute))
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) defs() []*models.FieldDefinition {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	first, err := models.NewFieldDefinition(id.NewFieldID(), "first_name", "First Name", models.FieldTypeText, now)
	s.Require().NoError(err)
	expiry, err := models.NewFieldDefinition(id.NewFieldID(), "safety_training", "Safety Training", models.FieldTypeDateExpiry, now)
	s.Require().NoError(err)
	expiry.ComplianceRule = &models.Rule{CheckType: models.CheckDateNotExpired, WarningDays: 60}
	expiry.Configuration = models.Configuration{"warning_days": 60}
	return []*models.FieldDefinition{first, expiry}
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()

	_, ok := s.cache.Get(ctx)
	s.False(ok, "empty cache must miss")

	defs := s.defs()
	s.cache.Set(ctx, defs)

	got, ok := s.cache.Get(ctx)
	s.Require().True(ok)
	s.Require().Len(got, 2)
	s.Equal(defs[0].ID, got[0].ID)
	s.Equal(defs[1].Type, got[1].Type)
	s.Require().NotNil(got[1].ComplianceRule)
	s.Equal(models.CheckDateNotExpired, got[1].ComplianceRule.CheckType)
	s.Equal(60, got[1].WarningDays(), "configuration survives the round trip")
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()

	s.cache.Set(ctx, s.defs())
	s.cache.Invalidate(ctx)

	_, ok := s.cache.Get(ctx)
	s.False(ok)
}

func (s *RedisCacheSuite) TestCorruptPayloadSelfHeals() {
	ctx := context.Background()

	err := s.redis.Client.Set(ctx, "schema:definitions:v1", "{not json", 0).Err()
	s.Require().NoError(err)

	_, ok := s.cache.Get(ctx)
	s.False(ok, "corrupt payload reads as a miss")

	exists, err := s.redis.Client.Exists(ctx, "schema:definitions:v1").Result()
	s.Require().NoError(err)
	s.Zero(exists, "corrupt payload is dropped")
}

func (s *RedisCacheSuite) TestTTLExpiry() {
	ctx := context.Background()
	short := cache.NewRedis(s.redis.Client, cache.WithTTL(time.Second))

	short.Set(ctx, s.defs())
	_, ok := short.Get(ctx)
	s.Require().True(ok)

	time.Sleep(1500 * time.Millisecond)

	_, ok = short.Get(ctx)
	s.False(ok, "snapshot expires with the TTL")
}
