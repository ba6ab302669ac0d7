package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eventsphere/eventsphere-api/internal/application"
	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/pkg/response"
)

type EventHandler struct {
	Svc    *application.EventService
	Logger *logrus.Logger
}

func NewEventHandler(svc *application.EventService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{Svc: svc, Logger: logger}
}

type eventResponse struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	StartDate     time.Time         `json:"startDate"`
	EndDate       time.Time         `json:"endDate"`
	Deadline      time.Time         `json:"deadline"`
	Location      string            `json:"location"`
	Capacity      int               `json:"capacity"`
	Image         string            `json:"image,omitempty"`
	Status        string            `json:"status"`
	OwnerID       string            `json:"ownerId"`
	OwnerName     string            `json:"ownerName,omitempty"`
	OwnerEmail    string            `json:"ownerEmail,omitempty"`
	AttendeeCount int               `json:"attendeeCount"`
	Attendees     []entity.Attendee `json:"attendees"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// eventDetail decorates the single-event view with the caller's own
// relationship to the event.
type eventDetail struct {
	eventResponse
	IsOwner    bool `json:"isOwner"`
	IsAttendee bool `json:"isAttendee"`
}

func toEventResponse(e *entity.Event) eventResponse {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []entity.Attendee{}
	}
	return eventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		Deadline:      e.Deadline,
		Location:      e.Location,
		Capacity:      e.Capacity,
		Image:         e.Image,
		Status:        e.Status,
		OwnerID:       e.OwnerID,
		OwnerName:     e.OwnerName,
		OwnerEmail:    e.OwnerEmail,
		AttendeeCount: len(attendees),
		Attendees:     attendees,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEventList(events []*entity.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

// List GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list events failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list events", nil)
		return
	}
	response.Success(c, http.StatusOK, toEventList(events), "events", nil)
}

// ListOwned GET /api/events/owner: events owned by the caller.
func (h *EventHandler) ListOwned(c *gin.Context) {
	u := currentUser(c)
	events, err := h.Svc.ListByOwner(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("list owned events failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list events", nil)
		return
	}
	response.Success(c, http.StatusOK, toEventList(events), "events", nil)
}

// ListRegistered GET /api/events/registered: events the caller attends.
func (h *EventHandler) ListRegistered(c *gin.Context) {
	u := currentUser(c)
	events, err := h.Svc.ListByAttendee(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("list registered events failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list events", nil)
		return
	}
	response.Success(c, http.StatusOK, toEventList(events), "events", nil)
}

// Get GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondEventErr(c, err, "get event failed")
		return
	}
	u := currentUser(c)
	detail := eventDetail{
		eventResponse: toEventResponse(e),
		IsOwner:       e.OwnerID == u.ID,
		IsAttendee:    e.HasAttendee(u.ID),
	}
	response.Success(c, http.StatusOK, detail, "event", nil)
}

// Create POST /api/events: multipart form with an optional image file.
func (h *EventHandler) Create(c *gin.Context) {
	u := currentUser(c)

	title := strings.TrimSpace(c.PostForm("title"))
	description := c.PostForm("description")
	location := strings.TrimSpace(c.PostForm("location"))
	if title == "" || description == "" || location == "" {
		response.Error[any](c, http.StatusBadRequest, "title, description and location are required", nil)
		return
	}

	start, err := parseFormTime(c.PostForm("startDate"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid startDate", nil)
		return
	}
	end, err := parseFormTime(c.PostForm("endDate"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid endDate", nil)
		return
	}
	deadline, err := parseFormTime(c.PostForm("deadline"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid deadline", nil)
		return
	}
	capacity, err := strconv.Atoi(c.PostForm("capacity"))
	if err != nil || capacity < 1 {
		response.Error[any](c, http.StatusBadRequest, "capacity must be a positive integer", nil)
		return
	}

	in := application.CreateEventInput{
		Title:       title,
		Description: description,
		StartDate:   start,
		EndDate:     end,
		Deadline:    deadline,
		Location:    location,
		Capacity:    capacity,
	}

	img, closeImg, err := formImage(c, "image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image upload", nil)
		return
	}
	defer closeImg()
	in.Image = img

	e, err := h.Svc.Create(c.Request.Context(), u.ID, in)
	if err != nil {
		h.respondEventErr(c, err, "create event failed")
		return
	}
	response.Success(c, http.StatusCreated, toEventResponse(e), "event created", nil)
}

// Update PUT /api/events/:id: multipart form, absent fields stay unchanged.
func (h *EventHandler) Update(c *gin.Context) {
	u := currentUser(c)
	id, ok := eventID(c)
	if !ok {
		return
	}

	patch := &entity.EventPatch{}
	if v, ok := c.GetPostForm("title"); ok {
		t := strings.TrimSpace(v)
		if t == "" {
			response.Error[any](c, http.StatusBadRequest, "title cannot be empty", nil)
			return
		}
		patch.Title = &t
	}
	if v, ok := c.GetPostForm("description"); ok {
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("location"); ok {
		l := strings.TrimSpace(v)
		if l == "" {
			response.Error[any](c, http.StatusBadRequest, "location cannot be empty", nil)
			return
		}
		patch.Location = &l
	}
	if v, ok := c.GetPostForm("startDate"); ok {
		t, err := parseFormTime(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid startDate", nil)
			return
		}
		patch.StartDate = &t
	}
	if v, ok := c.GetPostForm("endDate"); ok {
		t, err := parseFormTime(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid endDate", nil)
			return
		}
		patch.EndDate = &t
	}
	if v, ok := c.GetPostForm("deadline"); ok {
		t, err := parseFormTime(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid deadline", nil)
			return
		}
		patch.Deadline = &t
	}
	if v, ok := c.GetPostForm("capacity"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Error[any](c, http.StatusBadRequest, "capacity must be a positive integer", nil)
			return
		}
		patch.Capacity = &n
	}
	if v, ok := c.GetPostForm("status"); ok {
		switch v {
		case entity.EventStatusActive, entity.EventStatusCancelled, entity.EventStatusCompleted:
			patch.Status = &v
		default:
			response.Error[any](c, http.StatusBadRequest, "invalid status", nil)
			return
		}
	}

	img, closeImg, err := formImage(c, "image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image upload", nil)
		return
	}
	defer closeImg()

	e, err := h.Svc.Update(c.Request.Context(), u.ID, id, patch, img)
	if err != nil {
		h.respondEventErr(c, err, "update event failed")
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(e), "event updated", nil)
}

// Delete DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	u := currentUser(c)
	id, ok := eventID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), u.ID, id); err != nil {
		h.respondEventErr(c, err, "delete event failed")
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "event deleted", nil)
}

// Register POST /api/events/:id/register
func (h *EventHandler) Register(c *gin.Context) {
	u := currentUser(c)
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := h.Svc.Register(c.Request.Context(), u, id)
	if err != nil {
		h.respondEventErr(c, err, "register for event failed")
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(e), "registered", nil)
}

// Unregister DELETE /api/events/:id/unregister
func (h *EventHandler) Unregister(c *gin.Context) {
	u := currentUser(c)
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := h.Svc.Unregister(c.Request.Context(), u.ID, id)
	if err != nil {
		h.respondEventErr(c, err, "unregister from event failed")
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(e), "unregistered", nil)
}

// Search GET /api/events/search?q=...&size=...
func (h *EventHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("event search failed")
		response.Error[any](c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}

func (h *EventHandler) respondEventErr(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, application.ErrEventNotFound):
		response.Error[any](c, http.StatusNotFound, "event not found", nil)
	case errors.Is(err, application.ErrNotOwner):
		response.Error[any](c, http.StatusForbidden, "only the event owner may do this", nil)
	case errors.Is(err, application.ErrEndBeforeStart),
		errors.Is(err, application.ErrDeadlineTooLate),
		errors.Is(err, application.ErrDeadlinePassed),
		errors.Is(err, application.ErrEventFull),
		errors.Is(err, application.ErrAlreadyRegistered),
		errors.Is(err, application.ErrNotRegistered):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error(logMsg)
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
	}
}

func eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error[any](c, http.StatusBadRequest, "invalid event id", nil)
		return 0, false
	}
	return id, true
}

// parseFormTime accepts RFC 3339 first, then the datetime-local format
// browsers submit without a zone.
func parseFormTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", raw)
}

// formImage pulls an optional file field out of the multipart form. The
// returned closer is always safe to defer.
func formImage(c *gin.Context, field string) (*application.ImageUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &application.ImageUpload{Reader: f, Filename: fh.Filename}, func() { closeMultipart(f) }, nil
}

func closeMultipart(f multipart.File) {
	_ = f.Close()
}
