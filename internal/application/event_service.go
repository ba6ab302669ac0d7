package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/domain/repository"
	"github.com/eventsphere/eventsphere-api/pkg/mailer"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrNotOwner          = errors.New("not authorized")
	ErrEndBeforeStart    = errors.New("end date must be after start date")
	ErrDeadlineTooLate   = errors.New("registration deadline must be before the start date")
	ErrDeadlinePassed    = errors.New("registration deadline has passed")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrNotRegistered     = errors.New("not registered for this event")
)

const imageKindEvent = "event"

// EventService implements event CRUD and registration. Elasticsearch
// indexing and queue publishing are best-effort side effects: failures are
// logged at Warn and never fail the request.
type EventService struct {
	Repo    repository.EventRepository
	Images  ImageStore
	Logger  *logrus.Logger
	Clock   Clock
	Pub     Publisher
	ES      *elasticsearch.Client
	ESIndex string
}

func NewEventService(repo repository.EventRepository, images ImageStore, logger *logrus.Logger, clock Clock, pub Publisher, es *elasticsearch.Client, esIndex string) *EventService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &EventService{Repo: repo, Images: images, Logger: logger, Clock: clock, Pub: pub, ES: es, ESIndex: esIndex}
}

type CreateEventInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Deadline    time.Time
	Location    string
	Capacity    int
	Image       *ImageUpload
}

// Create persists the event, then attaches the image (the row has to exist
// first so the blob lands in the events/{id}/ folder).
func (s *EventService) Create(ctx context.Context, ownerID string, in CreateEventInput) (*entity.Event, error) {
	if !in.StartDate.Before(in.EndDate) {
		return nil, ErrEndBeforeStart
	}
	if !in.Deadline.Before(in.StartDate) {
		return nil, ErrDeadlineTooLate
	}

	e := &entity.Event{
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Deadline:    in.Deadline,
		Location:    in.Location,
		Capacity:    in.Capacity,
		OwnerID:     ownerID,
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}

	if in.Image != nil {
		url, err := s.Images.Upload(ctx, in.Image.Reader, in.Image.Filename, imageKindEvent, strconv.FormatInt(e.ID, 10))
		if err != nil {
			return nil, err
		}
		updated, err := s.Repo.Update(ctx, e.ID, &entity.EventPatch{Image: &url})
		if err != nil {
			return nil, err
		}
		e = updated
	}

	s.indexEvent(ctx, e)
	return e, nil
}

// Update applies a partial patch. Only the owner may update; the
// deadline/start ordering is re-validated against the patched values,
// falling back to the stored ones for fields the patch omits.
func (s *EventService) Update(ctx context.Context, callerID string, eventID int64, patch *entity.EventPatch, image *ImageUpload) (*entity.Event, error) {
	e, err := s.get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	start := e.StartDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	end := e.EndDate
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	deadline := e.Deadline
	if patch.Deadline != nil {
		deadline = *patch.Deadline
	}
	if !start.Before(end) {
		return nil, ErrEndBeforeStart
	}
	if !deadline.Before(start) {
		return nil, ErrDeadlineTooLate
	}

	if image != nil {
		url, err := s.Images.Replace(ctx, image.Reader, image.Filename, e.Image, imageKindEvent, strconv.FormatInt(eventID, 10))
		if err != nil {
			return nil, err
		}
		if url != "" {
			patch.Image = &url
		}
	}

	if patch.Empty() {
		return e, nil
	}

	updated, err := s.Repo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	s.indexEvent(ctx, updated)
	return updated, nil
}

// Delete removes the event. The blob delete is best-effort; the row delete
// is not rolled back when storage hiccups, so users never keep seeing a
// dead event because of an orphaned image.
func (s *EventService) Delete(ctx context.Context, callerID string, eventID int64) error {
	e, err := s.get(ctx, eventID)
	if err != nil {
		return err
	}
	if e.OwnerID != callerID {
		return ErrNotOwner
	}

	if e.Image != "" {
		if err := s.Images.Delete(ctx, e.Image); err != nil {
			s.Logger.WithError(err).WithField("event_id", eventID).Warn("event image delete failed")
		}
	}

	if err := s.Repo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	s.removeEventIndex(ctx, eventID)
	s.notifyCancelled(ctx, e)
	return nil
}

// Register checks the deadline, then hands the capacity and duplicate
// checks to the store's atomic conditional insert. Returns the refreshed
// event on success.
func (s *EventService) Register(ctx context.Context, user *entity.User, eventID int64) (*entity.Event, error) {
	e, err := s.get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if s.Clock.Now().After(e.Deadline) {
		return nil, ErrDeadlinePassed
	}

	if err := s.Repo.RegisterAttendee(ctx, eventID, user.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repository.ErrEventFull):
			return nil, ErrEventFull
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return nil, ErrAlreadyRegistered
		default:
			return nil, err
		}
	}

	s.notifyRegistered(ctx, user, e)
	return s.get(ctx, eventID)
}

// Unregister has no deadline restriction: attendees may back out after
// registration has closed.
func (s *EventService) Unregister(ctx context.Context, userID string, eventID int64) (*entity.Event, error) {
	if _, err := s.get(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.Repo.UnregisterAttendee(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrNotRegistered) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return s.get(ctx, eventID)
}

func (s *EventService) Get(ctx context.Context, eventID int64) (*entity.Event, error) {
	return s.get(ctx, eventID)
}

func (s *EventService) ListAll(ctx context.Context) ([]*entity.Event, error) {
	return s.Repo.FindAll(ctx)
}

func (s *EventService) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Event, error) {
	return s.Repo.FindByOwner(ctx, ownerID)
}

func (s *EventService) ListByAttendee(ctx context.Context, userID string) ([]*entity.Event, error) {
	return s.Repo.FindByAttendee(ctx, userID)
}

func (s *EventService) get(ctx context.Context, eventID int64) (*entity.Event, error) {
	e, err := s.Repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EventService) notifyRegistered(ctx context.Context, user *entity.User, e *entity.Event) {
	if s.Pub == nil {
		return
	}
	job := mailer.RegistrationConfirmed(user.Email, user.Username, e.Title, e.StartDate)
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("event_id", e.ID).Warn("publish registration notification failed")
	}
}

func (s *EventService) notifyCancelled(ctx context.Context, e *entity.Event) {
	if s.Pub == nil {
		return
	}
	for _, a := range e.Attendees {
		job := mailer.EventCancelled(a.Email, a.Username, e.Title)
		if err := s.Pub.PublishJSON(ctx, job); err != nil {
			s.Logger.WithError(err).WithField("event_id", e.ID).Warn("publish cancellation notification failed")
		}
	}
}

func (s *EventService) indexEvent(ctx context.Context, e *entity.Event) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          e.ID,
		"title":       e.Title,
		"description": e.Description,
		"location":    e.Location,
		"status":      e.Status,
		"start_date":  e.StartDate.Format(time.RFC3339Nano),
		"owner_id":    e.OwnerID,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: strconv.FormatInt(e.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("event_id", e.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("event_id", e.ID).Warn("es index response error")
	}
}

func (s *EventService) removeEventIndex(ctx context.Context, eventID int64) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: strconv.FormatInt(eventID, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("event_id", eventID).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match query over title, description, and location.
func (s *EventService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "location"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
