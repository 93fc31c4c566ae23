package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
)

func newMessageService(t *testing.T, rm *fakeRM) *MessageService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	store := &memStore[models.Message]{visible: func(m models.Message, who string) bool {
		return m.SenderID == who || m.RecipientID == nil || *m.RecipientID == who
	}}
	return NewMessageService(db, rm, records.NewManager(records.Messages, store))
}

func strPtr(s string) *string { return &s }

func TestSend_TrimsAndBroadcasts(t *testing.T) {
	s := newMessageService(t, newFakeRM(alice, bob, mentor))

	m, err := s.Send(context.Background(), "  hello all \n", nil, mentor)
	require.NoError(t, err)
	assert.Equal(t, "hello all", m.Content)
	assert.Nil(t, m.RecipientID)
	assert.Equal(t, mentor.ID, m.SenderID)

	m, err = s.Send(context.Background(), "hi", strPtr("  "), alice)
	require.NoError(t, err)
	assert.Nil(t, m.RecipientID, "blank recipient is a broadcast")
}

func TestSend_Errors(t *testing.T) {
	s := newMessageService(t, newFakeRM(alice, bob))

	_, err := s.Send(context.Background(), "   ", nil, alice)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Send(context.Background(), "hi", strPtr("ghost"), alice)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMessages_ListVisibility(t *testing.T) {
	s := newMessageService(t, newFakeRM(alice, bob, mentor))
	ctx := context.Background()

	_, err := s.Send(ctx, "to bob", strPtr(bob.ID), alice)
	require.NoError(t, err)
	_, err = s.Send(ctx, "to alice", strPtr(alice.ID), mentor)
	require.NoError(t, err)
	_, err = s.Send(ctx, "everyone", nil, mentor)
	require.NoError(t, err)

	contents := func(ms []models.Message) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.Content)
		}
		return out
	}

	got, err := s.List(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"to bob", "everyone"}, contents(got))

	got, err = s.List(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"to bob", "to alice", "everyone"}, contents(got))
}
