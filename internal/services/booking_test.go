package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"speakerbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func slot(day string, startHour, endHour int) (time.Time, time.Time) {
	d, _ := time.Parse(domain.DateLayout, day)
	return d.Add(time.Duration(startHour) * time.Hour), d.Add(time.Duration(endHour) * time.Hour)
}

// fakeSpeakerRepo is an in-memory SpeakerRepository for tests.
type fakeSpeakerRepo struct {
	byID map[string]*domain.Speaker
}

func newFakeSpeakerRepo(speakers ...*domain.Speaker) *fakeSpeakerRepo {
	f := &fakeSpeakerRepo{byID: make(map[string]*domain.Speaker)}
	for _, sp := range speakers {
		f.byID[sp.ID] = sp
	}
	return f
}

func (f *fakeSpeakerRepo) Search(ctx context.Context, query, specialty string, p domain.PaginationParams) ([]*domain.Speaker, int, error) {
	var out []*domain.Speaker
	for _, sp := range f.byID {
		out = append(out, sp)
	}
	return out, len(out), nil
}

func (f *fakeSpeakerRepo) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	if sp, ok := f.byID[id]; ok {
		return sp, nil
	}
	return nil, domain.ErrNotFound
}

// fakeSessionRepo is an in-memory SessionRepository for tests.
type fakeSessionRepo struct {
	byID    map[string]*domain.Session
	listErr error
}

func newFakeSessionRepo(sessions ...*domain.Session) *fakeSessionRepo {
	f := &fakeSessionRepo{byID: make(map[string]*domain.Session)}
	for _, s := range sessions {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSessionRepo) ListByIDs(ctx context.Context, ids []string) (map[string]*domain.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make(map[string]*domain.Session)
	for _, id := range ids {
		if s, ok := f.byID[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) List(ctx context.Context) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, nil
}

// fakeAssignmentRepo is an in-memory AssignmentRepository. It counts bulk
// reads so tests can assert the one-query-per-validation invariant.
type fakeAssignmentRepo struct {
	byID      map[string]*domain.Assignment
	nextID    int
	bulkReads int
	readErr   error
	writeErr  error
}

func newFakeAssignmentRepo(committed ...*domain.Assignment) *fakeAssignmentRepo {
	f := &fakeAssignmentRepo{byID: make(map[string]*domain.Assignment), nextID: 1}
	for _, a := range committed {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAssignmentRepo) committedByKey(key domain.BookingKey) []*domain.Assignment {
	var out []*domain.Assignment
	for _, a := range f.byID {
		if a.Key() == key {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeAssignmentRepo) ListCommittedByKeys(ctx context.Context, keys []domain.BookingKey) (map[domain.BookingKey][]*domain.Assignment, error) {
	f.bulkReads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make(map[domain.BookingKey][]*domain.Assignment)
	for _, k := range keys {
		if rows := f.committedByKey(k); rows != nil {
			out[k] = rows
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAssignmentRepo) ListBookedDates(ctx context.Context, speakerID, from, to string) ([]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	seen := make(map[string]struct{})
	var dates []string
	for _, a := range f.byID {
		if a.SpeakerID != speakerID || a.Date < from || a.Date > to {
			continue
		}
		if _, ok := seen[a.Date]; ok {
			continue
		}
		seen[a.Date] = struct{}{}
		dates = append(dates, a.Date)
	}
	return dates, nil
}

func (f *fakeAssignmentRepo) CreateChecked(ctx context.Context, a *domain.Assignment, check func(existing []*domain.Assignment) error) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if err := check(f.committedByKey(a.Key())); err != nil {
		return err
	}
	a.ID = fmt.Sprintf("as-%d", f.nextID)
	f.nextID++
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAssignmentRepo) UpdateSessionChecked(ctx context.Context, a *domain.Assignment, check func(existing []*domain.Assignment) error) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.byID[a.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := check(f.committedByKey(a.Key())); err != nil {
		return err
	}
	f.byID[a.ID] = a
	return nil
}

// fakeMailer records sends.
type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func testSession(id, day string, startHour, endHour int) *domain.Session {
	start, end := slot(day, startHour, endHour)
	now := time.Now()
	s := domain.NewSession("Talk "+id, "main", "", start, end, now, now)
	s.ID = id
	return s
}

func testSpeaker(id string) *domain.Speaker {
	now := time.Now()
	sp := domain.NewSpeaker("Ada", "Lovelace", "Ada Lovelace", "ada@example.com", "distributed systems", "", now, now)
	sp.ID = id
	return sp
}

func committedAssignment(id, speakerID, sessionID, day string, startHour, endHour int) *domain.Assignment {
	start, end := slot(day, startHour, endHour)
	now := time.Now()
	return &domain.Assignment{
		ID:        id,
		SpeakerID: speakerID,
		SessionID: sessionID,
		Date:      day,
		StartTime: start,
		EndTime:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestBookingService(speakers *fakeSpeakerRepo, sessions *fakeSessionRepo, assignments *fakeAssignmentRepo, mailer *fakeMailer) domain.BookingService {
	return NewBookingService(speakers, sessions, assignments, mailer, testLogger, 5*time.Second)
}

func TestBookingService_CommitAssignment_Success(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	assignments := newFakeAssignmentRepo()
	mailer := &fakeMailer{}
	svc := newTestBookingService(speakers, sessions, assignments, mailer)

	a, err := svc.CommitAssignment(context.Background(), "sp-1", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "as-1", a.ID)
	assert.Equal(t, "2026-03-14", a.Date)
	assert.Equal(t, []string{"ada@example.com"}, mailer.sent)
}

func TestBookingService_CommitAssignment_Conflict(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-2", "2026-03-14", 9, 11))
	assignments := newFakeAssignmentRepo(
		committedAssignment("as-1", "sp-1", "sess-1", "2026-03-14", 10, 12),
	)
	mailer := &fakeMailer{}
	svc := newTestBookingService(speakers, sessions, assignments, mailer)

	_, err := svc.CommitAssignment(context.Background(), "sp-1", "sess-2")

	require.ErrorIs(t, err, domain.ErrSchedulingConflict)
	assert.Len(t, assignments.byID, 1, "rejected assignment must not be persisted")
	assert.Empty(t, mailer.sent)
}

func TestBookingService_CommitAssignment_TouchingSlotAllowed(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-2", "2026-03-14", 10, 11))
	assignments := newFakeAssignmentRepo(
		committedAssignment("as-1", "sp-1", "sess-1", "2026-03-14", 9, 10),
	)
	svc := newTestBookingService(speakers, sessions, assignments, &fakeMailer{})

	a, err := svc.CommitAssignment(context.Background(), "sp-1", "sess-2")

	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
}

func TestBookingService_CommitAssignment_UnknownRefs(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	svc := newTestBookingService(speakers, sessions, newFakeAssignmentRepo(), &fakeMailer{})

	_, err := svc.CommitAssignment(context.Background(), "sp-missing", "sess-1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CommitAssignment(context.Background(), "sp-1", "sess-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CommitAssignment(context.Background(), "", "sess-1")
	require.ErrorIs(t, err, domain.ErrInvalidCandidate)
}

func TestBookingService_CommitAssignment_MailFailureDoesNotFailBooking(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	assignments := newFakeAssignmentRepo()
	svc := newTestBookingService(speakers, sessions, assignments, &fakeMailer{err: errors.New("smtp down")})

	a, err := svc.CommitAssignment(context.Background(), "sp-1", "sess-1")

	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
}

func TestBookingService_ReassignSession_NoOpUpdateOK(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	assignments := newFakeAssignmentRepo(
		committedAssignment("as-1", "sp-1", "sess-1", "2026-03-14", 9, 10),
	)
	svc := newTestBookingService(speakers, sessions, assignments, &fakeMailer{})

	a, err := svc.ReassignSession(context.Background(), "as-1", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "as-1", a.ID)
	assert.Equal(t, "sess-1", a.SessionID)
}

func TestBookingService_ReassignSession_ConflictWithOtherBooking(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-3", "2026-03-14", 10, 12))
	assignments := newFakeAssignmentRepo(
		committedAssignment("as-1", "sp-1", "sess-1", "2026-03-14", 9, 10),
		committedAssignment("as-2", "sp-1", "sess-2", "2026-03-14", 11, 13),
	)
	svc := newTestBookingService(speakers, sessions, assignments, &fakeMailer{})

	_, err := svc.ReassignSession(context.Background(), "as-1", "sess-3")

	require.ErrorIs(t, err, domain.ErrSchedulingConflict)
	assert.Equal(t, "sess-1", assignments.byID["as-1"].SessionID, "rejected update must not be persisted")
}

func TestBookingService_ReassignSession_UnknownAssignment(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	svc := newTestBookingService(speakers, sessions, newFakeAssignmentRepo(), &fakeMailer{})

	_, err := svc.ReassignSession(context.Background(), "as-missing", "sess-1")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_ValidateProposed_SingleBulkReadRegardlessOfBatchSize(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"), testSpeaker("sp-2"))
	sessions := newFakeSessionRepo(
		testSession("sess-1", "2026-03-14", 9, 10),
		testSession("sess-2", "2026-03-14", 10, 11),
		testSession("sess-3", "2026-03-15", 9, 10),
		testSession("sess-4", "2026-03-16", 9, 10),
	)
	assignments := newFakeAssignmentRepo()
	svc := newTestBookingService(speakers, sessions, assignments, &fakeMailer{})

	var proposals []*domain.BookingProposal
	for _, sessID := range []string{"sess-1", "sess-2", "sess-3", "sess-4"} {
		proposals = append(proposals,
			&domain.BookingProposal{SpeakerID: "sp-1", SessionID: sessID},
			&domain.BookingProposal{SpeakerID: "sp-2", SessionID: sessID},
		)
	}

	decisions, err := svc.ValidateProposed(context.Background(), proposals)

	require.NoError(t, err)
	require.Len(t, decisions, 8)
	assert.Equal(t, 1, assignments.bulkReads, "committed state must be read exactly once per batch")
}

func TestBookingService_ValidateProposed_MutualOverlapAllRejected(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(
		testSession("sess-1", "2026-03-14", 9, 12),
		testSession("sess-2", "2026-03-14", 10, 11),
		testSession("sess-3", "2026-03-14", 10, 13),
	)
	svc := newTestBookingService(speakers, sessions, newFakeAssignmentRepo(), &fakeMailer{})

	decisions, err := svc.ValidateProposed(context.Background(), []*domain.BookingProposal{
		{SpeakerID: "sp-1", SessionID: "sess-1"},
		{SpeakerID: "sp-1", SessionID: "sess-2"},
		{SpeakerID: "sp-1", SessionID: "sess-3"},
	})

	require.NoError(t, err)
	require.Len(t, decisions, 3)
	for i, d := range decisions {
		assert.Equal(t, domain.DecisionConflict, d.Code, "proposal %d", i)
		assert.Equal(t, "Speaker is already booked for this time.", d.Message)
	}
}

func TestBookingService_ValidateProposed_ScopingAcceptance(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"), testSpeaker("sp-2"))
	sessions := newFakeSessionRepo(
		testSession("sess-1", "2026-03-14", 9, 10),
		testSession("sess-2", "2026-03-15", 9, 10),
	)
	svc := newTestBookingService(speakers, sessions, newFakeAssignmentRepo(), &fakeMailer{})

	decisions, err := svc.ValidateProposed(context.Background(), []*domain.BookingProposal{
		// Same time, different speakers.
		{SpeakerID: "sp-1", SessionID: "sess-1"},
		{SpeakerID: "sp-2", SessionID: "sess-1"},
		// Same speaker, different date.
		{SpeakerID: "sp-1", SessionID: "sess-2"},
	})

	require.NoError(t, err)
	require.Len(t, decisions, 3)
	for i, d := range decisions {
		assert.Equal(t, domain.DecisionOK, d.Code, "proposal %d", i)
	}
}

func TestBookingService_ValidateProposed_UnknownSessionInvalidOthersJudged(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	svc := newTestBookingService(speakers, sessions, newFakeAssignmentRepo(), &fakeMailer{})

	decisions, err := svc.ValidateProposed(context.Background(), []*domain.BookingProposal{
		{SpeakerID: "sp-1", SessionID: "sess-missing"},
		{SpeakerID: "sp-1", SessionID: "sess-1"},
	})

	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, domain.DecisionInvalid, decisions[0].Code)
	assert.Equal(t, domain.DecisionOK, decisions[1].Code)
}

func TestBookingService_ValidateProposed_ReadFailureFailsWholeBatch(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	assignments := newFakeAssignmentRepo()
	assignments.readErr = errors.New("connection reset")
	svc := newTestBookingService(speakers, sessions, assignments, &fakeMailer{})

	decisions, err := svc.ValidateProposed(context.Background(), []*domain.BookingProposal{
		{SpeakerID: "sp-1", SessionID: "sess-1"},
	})

	require.Error(t, err)
	assert.Nil(t, decisions, "no candidate may be admitted when the bulk read fails")
}

func TestBookingService_ValidateProposed_UpdateExcludesOwnRow(t *testing.T) {
	speakers := newFakeSpeakerRepo(testSpeaker("sp-1"))
	sessions := newFakeSessionRepo(testSession("sess-1", "2026-03-14", 9, 10))
	assignments := newFakeAssignmentRepo(
		committedAssignment("as-1", "sp-1", "sess-1", "2026-03-14", 9, 10),
	)
	svc := newTestBookingService(speakers, sessions, assignments, &fakeMailer{})

	decisions, err := svc.ValidateProposed(context.Background(), []*domain.BookingProposal{
		{ID: "as-1", SpeakerID: "sp-1", SessionID: "sess-1"},
	})

	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, domain.DecisionOK, decisions[0].Code)
}
