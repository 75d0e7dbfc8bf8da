package services

import (
	"context"
	"testing"
	"time"

	"speakerbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerService_GetByID(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	svc := NewSpeakerService(speakers, newFakeSessionRepo(), 5*time.Second)

	sp, err := svc.GetByID(context.Background(), "sp-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", sp.FullName)

	_, err = svc.GetByID(context.Background(), "sp-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSpeakerService_Search_NeverReturnsNilSlice(t *testing.T) {
	svc := NewSpeakerService(newFakeSpeakerRepo(), newFakeSessionRepo(), 5*time.Second)

	speakers, total, err := svc.Search(context.Background(), "  nobody  ", "", domain.PaginationParams{Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, speakers)
	assert.Empty(t, speakers)
}

func TestSpeakerService_ListSessions_NeverReturnsNilSlice(t *testing.T) {
	svc := NewSpeakerService(newFakeSpeakerRepo(), newFakeSessionRepo(), 5*time.Second)

	sessions, err := svc.ListSessions(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}
