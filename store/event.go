package store

import (
	"context"
	"time"
)

// Event is the object representing a transfer event.
// StartTs and EndTs are Unix seconds of UTC instants; AllDay events span
// whole local days and EndTs is exactly 24h past StartTs.
type Event struct {
	ID        int32
	UID       string
	CreatorID int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Title        string
	Description  string
	Location     string
	StartTs      int64
	EndTs        *int64
	AllDay       bool
	FlightNumber string
}

// FindEvent is the find condition for event.
type FindEvent struct {
	ID        *int32
	UID       *string
	CreatorID *int32

	// Time range filters; events overlapping [StartTs, EndTs) match.
	StartTs *int64
	EndTs   *int64

	RowStatus *RowStatus

	Limit  *int
	Offset *int
}

// UpdateEvent is the update request for event. Nil fields are untouched.
type UpdateEvent struct {
	ID           int32
	UID          *string
	UpdatedTs    *int64
	RowStatus    *RowStatus
	Title        *string
	Description  *string
	Location     *string
	StartTs      *int64
	EndTs        *int64
	AllDay       *bool
	FlightNumber *string
}

// DeleteEvent is the delete request for event.
type DeleteEvent struct {
	ID int32
}

// CreateEvent creates a new event.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	event, err := s.driver.CreateEvent(ctx, create)
	if err != nil {
		return nil, err
	}
	s.eventCache.Set(event.UID, event)
	return event, nil
}

// ListEvents lists events with filter.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent gets a single event, from cache when looked up by uid.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	if find.UID != nil {
		if cached, ok := s.eventCache.Get(*find.UID); ok {
			if event, ok := cached.(*Event); ok {
				return event, nil
			}
		}
	}

	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	event := list[0]
	s.eventCache.Set(event.UID, event)
	return event, nil
}

// UpdateEvent updates an event.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) error {
	if err := s.driver.UpdateEvent(ctx, update); err != nil {
		return err
	}
	// The uid is not always at hand here; drop the whole cache rather than
	// risk serving a stale row.
	s.eventCache.Clear()
	return nil
}

// DeleteEvent deletes an event.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	if err := s.driver.DeleteEvent(ctx, delete); err != nil {
		return err
	}
	s.eventCache.Clear()
	return nil
}

// ParseStartTime parses the event start time to time.Time.
func (e *Event) ParseStartTime() time.Time {
	return time.Unix(e.StartTs, 0).UTC()
}

// ParseEndTime parses the event end time to time.Time.
func (e *Event) ParseEndTime() *time.Time {
	if e.EndTs == nil {
		return nil
	}
	t := time.Unix(*e.EndTs, 0).UTC()
	return &t
}

// IsActiveAt checks if the event is active at the given time.
func (e *Event) IsActiveAt(ts int64) bool {
	if ts < e.StartTs {
		return false
	}
	if e.EndTs == nil {
		return e.StartTs <= ts
	}
	return ts <= *e.EndTs
}

// ConflictWith checks if this event overlaps another in time.
func (e *Event) ConflictWith(other *Event) bool {
	eEnd := e.EndTs
	if eEnd == nil {
		eEnd = &e.StartTs
	}
	otherEnd := other.EndTs
	if otherEnd == nil {
		otherEnd = &other.StartTs
	}
	return e.StartTs <= *otherEnd && other.StartTs <= *eEnd
}
