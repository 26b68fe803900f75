package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession_GeneratesAndReuses(t *testing.T) {
	svc := New()
	ctx := context.Background()

	a, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID())

	again, err := svc.CreateSession(ctx, a.ID())
	require.NoError(t, err)
	assert.Same(t, a, again)

	got, err := svc.GetSession(ctx, a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	assert.Equal(t, []string{a.ID()}, svc.ListSessionIds(ctx))
}

func TestGetSession_Missing(t *testing.T) {
	_, err := New().GetSession(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSession_FailureKeepsHistory(t *testing.T) {
	svc := New()
	s, err := svc.CreateSession(context.Background(), "web")
	require.NoError(t, err)

	s.Append("I have oily skin", "What is your budget?")
	s.Fail("1000 PKR", errors.New("rate limited"))

	turns, failed := s.View()
	require.Len(t, turns, 1)
	assert.Equal(t, "I have oily skin", turns[0].User)
	assert.Equal(t, "What is your budget?", turns[0].Assistant)

	require.NotNil(t, failed)
	assert.Equal(t, "1000 PKR", failed.User)
	assert.Equal(t, "rate limited", failed.Err)

	_, failed = s.View()
	assert.Nil(t, failed)
}

func TestSession_AppendClearsFailure(t *testing.T) {
	s, err := New().CreateSession(context.Background(), "")
	require.NoError(t, err)

	s.Fail("hi", errors.New("boom"))
	s.Append("hi", "hello")

	turns, failed := s.View()
	assert.Len(t, turns, 1)
	assert.Nil(t, failed)
}

func TestDeleteAndExpire(t *testing.T) {
	svc := New()
	ctx := context.Background()

	a, _ := svc.CreateSession(ctx, "a")
	_, _ = svc.CreateSession(ctx, "b")

	svc.DeleteSession(ctx, a.ID())
	assert.Equal(t, []string{"b"}, svc.ListSessionIds(ctx))

	assert.Equal(t, 0, svc.Expire(ctx, time.Hour))
	assert.Equal(t, 1, svc.Expire(ctx, -time.Second))
	assert.Empty(t, svc.ListSessionIds(ctx))
}
