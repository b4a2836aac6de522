package useCases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
)

func TestMembership_JoinAndLeave(t *testing.T) {
	tg := newFakeTelegram()
	tg.addChannel("a", 1, 10)
	tg.addChannel("b", 2, 20)
	var out strings.Builder
	s := &recordingSleeper{}
	m := NewMembership(testLogger(), tg, NewPrinter(&out), s.sleep)

	outcomes, err := m.Run(context.Background(), []string{"@a", "t.me/nope/hash", "@b"}, domain.ActionJoin, time.Second)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Success)
	assert.ErrorIs(t, outcomes[1].Err, domain.ErrUnsupportedIdentifier)
	assert.True(t, outcomes[2].Success)
	assert.Equal(t, []int64{1, 2}, tg.joined)
	assert.Len(t, s.waits, 2)

	_, err = m.Run(context.Background(), []string{"@b"}, domain.ActionLeave, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, tg.left)
	assert.Contains(t, out.String(), "channel: @b, leave")
}
