package application

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeEventRepo mirrors the store's registration contract: capacity and
// duplicate checks happen atomically under one lock, full wins over
// duplicate.
type fakeEventRepo struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*entity.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[int64]*entity.Event{}}
}

func (r *fakeEventRepo) Create(_ context.Context, e *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	e.Status = entity.EventStatusActive
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	cp.Attendees = append([]entity.Attendee(nil), e.Attendees...)
	return &cp, nil
}

func (r *fakeEventRepo) FindAll(ctx context.Context) ([]*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Event, 0, len(r.events))
	for _, e := range r.events {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *fakeEventRepo) FindByOwner(ctx context.Context, ownerID string) ([]*entity.Event, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, e := range all {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) FindByAttendee(ctx context.Context, userID string) ([]*entity.Event, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, e := range all {
		if e.HasAttendee(userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Update(_ context.Context, id int64, patch *entity.EventPatch) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.StartDate != nil {
		e.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		e.EndDate = *patch.EndDate
	}
	if patch.Deadline != nil {
		e.Deadline = *patch.Deadline
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Capacity != nil {
		e.Capacity = *patch.Capacity
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.Image != nil {
		e.Image = *patch.Image
	}
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) RegisterAttendee(_ context.Context, eventID int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	if len(e.Attendees) >= e.Capacity {
		return repository.ErrEventFull
	}
	if e.HasAttendee(userID) {
		return repository.ErrAlreadyRegistered
	}
	e.Attendees = append(e.Attendees, entity.Attendee{
		UserID:       userID,
		Username:     "u-" + userID,
		Email:        userID + "@example.com",
		RegisteredAt: time.Now(),
	})
	return nil
}

func (r *fakeEventRepo) UnregisterAttendee(_ context.Context, eventID int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, a := range e.Attendees {
		if a.UserID == userID {
			e.Attendees = append(e.Attendees[:i], e.Attendees[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotRegistered
}

type fakeImageStore struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	uploadID int
}

func (s *fakeImageStore) Upload(_ context.Context, _ io.Reader, originalName, kind, entityID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadID++
	url := fmt.Sprintf("https://storage.googleapis.com/test-bucket/%s/%s/%d-%s", kind, entityID, s.uploadID, originalName)
	s.uploads = append(s.uploads, url)
	return url, nil
}

func (s *fakeImageStore) Delete(_ context.Context, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, imageURL)
	return nil
}

func (s *fakeImageStore) Replace(ctx context.Context, r io.Reader, originalName, oldURL, kind, entityID string) (string, error) {
	if r == nil {
		return "", nil
	}
	if oldURL != "" {
		_ = s.Delete(ctx, oldURL)
	}
	return s.Upload(ctx, r, originalName, kind, entityID)
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEventFixture() (*EventService, *fakeEventRepo, *fakeImageStore, *fakePublisher, *fakeClock) {
	repo := newFakeEventRepo()
	images := &fakeImageStore{}
	pub := &fakePublisher{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewEventService(repo, images, testLogger(), clock, pub, nil, "")
	return svc, repo, images, pub, clock
}

func validCreateInput(base time.Time) CreateEventInput {
	return CreateEventInput{
		Title:       "Go Meetup",
		Description: "Monthly meetup",
		StartDate:   base.Add(72 * time.Hour),
		EndDate:     base.Add(75 * time.Hour),
		Deadline:    base.Add(48 * time.Hour),
		Location:    "Jakarta",
		Capacity:    2,
	}
}

func TestCreateEventValidatesDates(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	in := validCreateInput(clock.Now())
	in.EndDate = in.StartDate.Add(-time.Hour)
	_, err := svc.Create(ctx, "owner-1", in)
	assert.ErrorIs(t, err, ErrEndBeforeStart)

	in = validCreateInput(clock.Now())
	in.Deadline = in.StartDate.Add(time.Hour)
	_, err = svc.Create(ctx, "owner-1", in)
	assert.ErrorIs(t, err, ErrDeadlineTooLate)

	in = validCreateInput(clock.Now())
	in.EndDate = in.StartDate
	_, err = svc.Create(ctx, "owner-1", in)
	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestCreateEventUploadsImageUnderEventFolder(t *testing.T) {
	svc, repo, images, _, clock := newEventFixture()
	ctx := context.Background()

	in := validCreateInput(clock.Now())
	in.Image = &ImageUpload{Reader: strReader("fake-bytes"), Filename: "banner.png"}
	e, err := svc.Create(ctx, "owner-1", in)
	require.NoError(t, err)
	require.Len(t, images.uploads, 1)
	assert.Equal(t, images.uploads[0], e.Image)
	assert.Contains(t, e.Image, "/event/1/")

	stored, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Image, stored.Image)
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	e, err := svc.Create(ctx, "owner-1", validCreateInput(clock.Now()))
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.Update(ctx, "owner-2", e.ID, &entity.EventPatch{Title: &title}, nil)
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := svc.Update(ctx, "owner-1", e.ID, &entity.EventPatch{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", updated.Title)
}

func TestUpdateEventRevalidatesDatesAgainstStoredValues(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	e, err := svc.Create(ctx, "owner-1", validCreateInput(clock.Now()))
	require.NoError(t, err)

	// Moving the start past the stored end must fail even though the patch
	// itself looks consistent.
	badStart := e.EndDate.Add(time.Hour)
	_, err = svc.Update(ctx, "owner-1", e.ID, &entity.EventPatch{StartDate: &badStart}, nil)
	assert.ErrorIs(t, err, ErrEndBeforeStart)

	badDeadline := e.StartDate.Add(time.Minute)
	_, err = svc.Update(ctx, "owner-1", e.ID, &entity.EventPatch{Deadline: &badDeadline}, nil)
	assert.ErrorIs(t, err, ErrDeadlineTooLate)
}

func TestDeleteEventNotifiesAttendeesAndRemovesImage(t *testing.T) {
	svc, _, images, pub, clock := newEventFixture()
	ctx := context.Background()

	in := validCreateInput(clock.Now())
	in.Image = &ImageUpload{Reader: strReader("img"), Filename: "banner.jpg"}
	e, err := svc.Create(ctx, "owner-1", in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, testUser("alice"), e.ID)
	require.NoError(t, err)
	_, err = svc.Register(ctx, testUser("bob"), e.ID)
	require.NoError(t, err)
	registrations := pub.count()

	require.ErrorIs(t, svc.Delete(ctx, "owner-2", e.ID), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, "owner-1", e.ID))

	assert.Len(t, images.deletes, 1)
	// one cancellation job per attendee on top of the registration jobs
	assert.Equal(t, registrations+2, pub.count())

	_, err = svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegisterRejectsAfterDeadline(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	e, err := svc.Create(ctx, "owner-1", validCreateInput(clock.Now()))
	require.NoError(t, err)

	clock.Set(e.Deadline.Add(time.Second))
	_, err = svc.Register(ctx, testUser("alice"), e.ID)
	assert.ErrorIs(t, err, ErrDeadlinePassed)

	// exactly at the deadline still goes through
	clock.Set(e.Deadline)
	_, err = svc.Register(ctx, testUser("alice"), e.ID)
	assert.NoError(t, err)
}

func TestRegisterFullWinsOverDuplicate(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	in := validCreateInput(clock.Now())
	in.Capacity = 1
	e, err := svc.Create(ctx, "owner-1", in)
	require.NoError(t, err)

	got, err := svc.Register(ctx, testUser("alice"), e.ID)
	require.NoError(t, err)
	assert.True(t, got.HasAttendee("alice"))

	_, err = svc.Register(ctx, testUser("bob"), e.ID)
	assert.ErrorIs(t, err, ErrEventFull)

	// alice retrying against a full event sees full, not duplicate
	_, err = svc.Register(ctx, testUser("alice"), e.ID)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	e, err := svc.Create(ctx, "owner-1", validCreateInput(clock.Now()))
	require.NoError(t, err)

	_, err = svc.Register(ctx, testUser("alice"), e.ID)
	require.NoError(t, err)
	_, err = svc.Register(ctx, testUser("alice"), e.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestConcurrentRegistrationNeverOverbooks(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	in := validCreateInput(clock.Now())
	in.Capacity = 5
	e, err := svc.Create(ctx, "owner-1", in)
	require.NoError(t, err)

	const attempts = 50
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, testUser(fmt.Sprintf("user-%d", i)), e.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrEventFull)
		}
	}
	assert.Equal(t, in.Capacity, ok)

	final, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, final.Attendees, in.Capacity)
}

func TestUnregister(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	e, err := svc.Create(ctx, "owner-1", validCreateInput(clock.Now()))
	require.NoError(t, err)

	_, err = svc.Unregister(ctx, "alice", e.ID)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = svc.Register(ctx, testUser("alice"), e.ID)
	require.NoError(t, err)

	// unregistering after the deadline is allowed
	clock.Set(e.Deadline.Add(time.Hour))
	got, err := svc.Unregister(ctx, "alice", e.ID)
	require.NoError(t, err)
	assert.False(t, got.HasAttendee("alice"))
}

func TestListByAttendeeAndOwner(t *testing.T) {
	svc, _, _, _, clock := newEventFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, "owner-1", validCreateInput(clock.Now()))
	require.NoError(t, err)

	second := validCreateInput(clock.Now())
	second.StartDate = second.StartDate.Add(24 * time.Hour)
	second.EndDate = second.EndDate.Add(24 * time.Hour)
	e2, err := svc.Create(ctx, "owner-2", second)
	require.NoError(t, err)

	_, err = svc.Register(ctx, testUser("alice"), e2.ID)
	require.NoError(t, err)

	owned, err := svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, first.ID, owned[0].ID)

	attending, err := svc.ListByAttendee(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, attending, 1)
	assert.Equal(t, e2.ID, attending[0].ID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testUser(id string) *entity.User {
	return &entity.User{ID: id, Username: "u-" + id, Email: id + "@example.com", Role: entity.RoleUser}
}

func strReader(s string) io.Reader { return strings.NewReader(s) }
