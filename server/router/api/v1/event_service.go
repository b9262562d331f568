package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/stan0424/calendar-app/plugin/normalizer"
	apierrors "github.com/stan0424/calendar-app/server/internal/errors"
	"github.com/stan0424/calendar-app/store"
)

// EventPayload is the wire form of an event. Times are RFC 3339 UTC.
type EventPayload struct {
	UID          string     `json:"uid"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	AllDay       bool       `json:"allDay"`
	FlightNumber string     `json:"flightNumber,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	MidStops     []string   `json:"midStops,omitempty"`
	CreatedTime  time.Time  `json:"createdTime"`
	UpdatedTime  time.Time  `json:"updatedTime"`
}

// CreateEventRequest carries the raw fields of a new event. Time fields
// accept local wall-clock strings as well as offset-qualified instants.
type CreateEventRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	AllDay       bool   `json:"allDay"`
	FlightNumber string `json:"flightNumber"`
}

// UpdateEventRequest is a partial update; nil fields are left untouched.
type UpdateEventRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	StartTime    *string `json:"startTime"`
	EndTime      *string `json:"endTime"`
	AllDay       *bool   `json:"allDay"`
	FlightNumber *string `json:"flightNumber"`
}

// CreateEvent handles POST /api/v1/events.
func (s *APIV1Service) CreateEvent(c echo.Context) error {
	req := &CreateEventRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if req.Title == "" {
		return writeError(c, apierrors.InvalidArgument("title is required"))
	}

	event, err := s.createEventFromArgs(c.Request().Context(), normalizer.EventArgs{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
	}, req.FlightNumber)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, s.convertEvent(event))
}

// createEventFromArgs is the single creation path shared by the REST
// handler, the assistant, and the LINE webhook.
func (s *APIV1Service) createEventFromArgs(ctx context.Context, args normalizer.EventArgs, flightNumber string) (*store.Event, error) {
	resolved := normalizer.Resolve(args, s.now())

	description := args.Description
	summary := normalizer.Reconcile(description)
	description = normalizer.RenderAugmented(description, summary, normalizer.ReconcileOptions{})

	if flightNumber == "" {
		flightNumber = normalizer.ExtractFlightNumber(args.Title, description)
	}

	endTs := resolved.End.Unix()
	event, err := s.Store.CreateEvent(ctx, &store.Event{
		UID:          shortuuid.New(),
		Title:        args.Title,
		Description:  description,
		Location:     args.Location,
		StartTs:      resolved.Start.Unix(),
		EndTs:        &endTs,
		AllDay:       resolved.AllDay,
		FlightNumber: flightNumber,
	})
	if err != nil {
		return nil, apierrors.Internal("failed to create event", err)
	}
	return event, nil
}

// ListEvents handles GET /api/v1/events with optional start/end range.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	find := &store.FindEvent{}

	if v := c.QueryParam("start"); v != "" {
		t := normalizer.ParseLocal(v)
		if t == nil {
			return writeError(c, apierrors.InvalidArgument("unparseable start"))
		}
		ts := t.Unix()
		find.StartTs = &ts
	}
	if v := c.QueryParam("end"); v != "" {
		t := normalizer.ParseLocal(v)
		if t == nil {
			return writeError(c, apierrors.InvalidArgument("unparseable end"))
		}
		ts := t.Unix()
		find.EndTs = &ts
	}

	list, err := s.Store.ListEvents(c.Request().Context(), find)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list events", err))
	}

	payloads := make([]*EventPayload, 0, len(list))
	for _, event := range list {
		payloads = append(payloads, s.convertEvent(event))
	}
	return c.JSON(http.StatusOK, payloads)
}

// GetEvent handles GET /api/v1/events/:uid.
func (s *APIV1Service) GetEvent(c echo.Context) error {
	event, err := s.findEventByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s.convertEvent(event))
}

// UpdateEvent handles PATCH /api/v1/events/:uid.
func (s *APIV1Service) UpdateEvent(c echo.Context) error {
	req := &UpdateEventRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}

	ctx := c.Request().Context()
	event, err := s.findEventByUID(ctx, c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}

	if err := s.applyEventUpdate(ctx, event, req); err != nil {
		return writeError(c, err)
	}

	event, err = s.findEventByUID(ctx, event.UID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s.convertEvent(event))
}

// applyEventUpdate merges a partial update onto an existing event. Any change
// touching the time fields or the description re-runs full time resolution,
// so an embedded document date keeps its authority over declared fields.
func (s *APIV1Service) applyEventUpdate(ctx context.Context, event *store.Event, req *UpdateEventRequest) error {
	update := &store.UpdateEvent{
		ID:           event.ID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		FlightNumber: req.FlightNumber,
	}

	if req.Description != nil {
		summary := normalizer.Reconcile(*req.Description)
		augmented := normalizer.RenderAugmented(*req.Description, summary, normalizer.ReconcileOptions{})
		update.Description = &augmented
	}

	if req.StartTime != nil || req.EndTime != nil || req.AllDay != nil || req.Description != nil {
		args := normalizer.EventArgs{
			Description: event.Description,
			StartTime:   event.ParseStartTime().Format(time.RFC3339),
			AllDay:      event.AllDay,
		}
		if end := event.ParseEndTime(); end != nil {
			args.EndTime = end.Format(time.RFC3339)
		}
		if update.Description != nil {
			args.Description = *update.Description
		}
		if req.StartTime != nil {
			args.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			args.EndTime = *req.EndTime
		}
		if req.AllDay != nil {
			args.AllDay = *req.AllDay
		}

		resolved := normalizer.Resolve(args, s.now())
		startTs := resolved.Start.Unix()
		endTs := resolved.End.Unix()
		update.StartTs = &startTs
		update.EndTs = &endTs
		update.AllDay = &resolved.AllDay
	}

	if err := s.Store.UpdateEvent(ctx, update); err != nil {
		return apierrors.Internal("failed to update event", err)
	}
	return nil
}

// DeleteEvent handles DELETE /api/v1/events/:uid.
func (s *APIV1Service) DeleteEvent(c echo.Context) error {
	ctx := c.Request().Context()
	event, err := s.findEventByUID(ctx, c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}

	if err := s.Store.DeleteEvent(ctx, &store.DeleteEvent{ID: event.ID}); err != nil {
		return writeError(c, apierrors.Internal("failed to delete event", err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) findEventByUID(ctx context.Context, uid string) (*store.Event, error) {
	if uid == "" {
		return nil, apierrors.InvalidArgument("uid is required")
	}
	event, err := s.Store.GetEvent(ctx, &store.FindEvent{UID: &uid})
	if err != nil {
		return nil, apierrors.Internal("failed to get event", err)
	}
	if event == nil {
		return nil, apierrors.NotFound("event not found: " + uid)
	}
	return event, nil
}

func (s *APIV1Service) convertEvent(event *store.Event) *EventPayload {
	payload := &EventPayload{
		UID:          event.UID,
		Title:        event.Title,
		Description:  event.Description,
		Location:     event.Location,
		StartTime:    event.ParseStartTime(),
		EndTime:      event.ParseEndTime(),
		AllDay:       event.AllDay,
		FlightNumber: event.FlightNumber,
		Phone:        normalizer.ExtractPhone(event.Description),
		MidStops:     normalizer.Reconcile(event.Description).MidStops,
		CreatedTime:  time.Unix(event.CreatedTs, 0).UTC(),
		UpdatedTime:  time.Unix(event.UpdatedTs, 0).UTC(),
	}
	return payload
}
