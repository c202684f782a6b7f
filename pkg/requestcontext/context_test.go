package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"transparency/pkg/domain"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ok := Actor(ctx)
	assert.False(t, ok, "anonymous context has no actor")

	actor := domain.Actor{ID: 3, Role: domain.RoleManager, TenantID: 7}
	got, ok := Actor(WithActor(ctx, actor))
	assert.True(t, ok)
	assert.Equal(t, actor, got)
}

func TestNowPrefersInjectedTime(t *testing.T) {
	fixed := time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
}
