package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisRevocationsSuite struct {
	suite.Suite
	mini *miniredis.Miniredis
	revs *RedisRevocations
	ctx  context.Context
}

func TestRedisRevocationsSuite(t *testing.T) {
	suite.Run(t, new(RedisRevocationsSuite))
}

func (s *RedisRevocationsSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.revs = NewRedisRevocationsWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}))
	s.ctx = context.Background()
}

func (s *RedisRevocationsSuite) TearDownTest() {
	_ = s.revs.Close()
	s.mini.Close()
}

func (s *RedisRevocationsSuite) TestRevokeAndExpire() {
	revoked, err := s.revs.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.revs.Revoke(s.ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = s.revs.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)
	s.True(s.mini.TTL(revokedKey("jti-1")) > 0)

	s.mini.FastForward(2 * time.Hour)
	revoked, err = s.revs.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisRevocationsSuite) TestRevokeExpiredTokenIsNoop() {
	s.Require().NoError(s.revs.Revoke(s.ctx, "old", time.Now().Add(-time.Minute)))
	s.False(s.mini.Exists(revokedKey("old")))
}

func (s *RedisRevocationsSuite) TestRedisDown() {
	s.mini.Close()
	_, err := s.revs.IsRevoked(s.ctx, "jti-1")
	s.Error(err)
}

func TestMemoryRevocations(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRevocations()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Revoke(ctx, "a", now.Add(time.Minute)))
	revoked, _ := m.IsRevoked(ctx, "a")
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = m.IsRevoked(ctx, "a")
	assert.False(t, revoked)
}

func TestStatePublishAndUnsubscribe(t *testing.T) {
	st := NewState()
	var got []Event

	unsub := st.Subscribe("u1", func(e Event) { got = append(got, e) })
	st.Subscribe("u2", func(e Event) { t.Fatal("wrong subscriber notified") })

	st.Publish(Event{UID: "u1", SignedIn: true})
	require.Len(t, got, 1)
	assert.True(t, got[0].SignedIn)

	unsub()
	unsub()
	assert.Equal(t, 0, st.Subscribers("u1"))

	st.Publish(Event{UID: "u1", SignedIn: false})
	assert.Len(t, got, 1)
}

func TestStateCallbackMayUnsubscribe(t *testing.T) {
	st := NewState()
	calls := 0
	var unsub func()
	unsub = st.Subscribe("u1", func(Event) {
		calls++
		unsub()
	})
	st.Publish(Event{UID: "u1"})
	st.Publish(Event{UID: "u1"})
	assert.Equal(t, 1, calls)
}
