package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"backoffice/internal/model"
)

// listEvents returns the caller's own events, optionally restricted to
// those overlapping the [start, end] window. Ownership scoping happens
// here on every read; nothing of other users' calendars leaks out.
func (s *Server) listEvents(c echo.Context) error {
	caller := currentUser(c)

	fields := map[string]string{}
	var windowStart, windowEnd *time.Time
	if raw := c.QueryParam("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fields["start"] = "must be an RFC3339 timestamp"
		} else {
			windowStart = &t
		}
	}
	if raw := c.QueryParam("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fields["end"] = "must be an RFC3339 timestamp"
		} else {
			windowEnd = &t
		}
	}
	if len(fields) > 0 {
		return errValidation(fields)
	}

	q := s.db.Where("user_id = ?", caller.ID)
	if windowStart != nil {
		// An event without an end overlaps iff its start is in range.
		q = q.Where("COALESCE(end_at, start_at) >= ?", *windowStart)
	}
	if windowEnd != nil {
		q = q.Where("start_at <= ?", *windowEnd)
	}

	var events []model.CalendarEvent
	if err := q.Order("start_at ASC").Find(&events).Error; err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

type createEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	AllDay      bool       `json:"allDay"`
	Color       string     `json:"color"`
}

func (r *createEventRequest) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = "required"
	}
	if r.Start == nil {
		fields["start"] = "required"
	} else if r.End != nil && r.End.Before(*r.Start) {
		fields["end"] = "must not be before start"
	}
	return fields
}

// createEvent always assigns ownership to the caller; the payload cannot
// create an event on someone else's calendar.
func (s *Server) createEvent(c echo.Context) error {
	caller := currentUser(c)

	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}
	if fields := req.validate(); len(fields) > 0 {
		return errValidation(fields)
	}

	event := model.CalendarEvent{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Start:       *req.Start,
		End:         req.End,
		AllDay:      req.AllDay,
		Color:       req.Color,
		UserID:      caller.ID,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return translateDB(err, "event")
	}
	return c.JSON(http.StatusCreated, event)
}

type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	AllDay      *bool      `json:"allDay"`
	Color       *string    `json:"color"`
}

// updateEvent checks existence and ownership before it looks at the
// payload: a non-owner gets a 403 even for a payload that would not
// validate.
func (s *Server) updateEvent(c echo.Context) error {
	caller := currentUser(c)
	id := c.Param("id")

	var event model.CalendarEvent
	if err := s.db.First(&event, "id = ?", id).Error; err != nil {
		return translateDB(err, "event")
	}
	if event.UserID != caller.ID {
		return errForbidden("not the event owner")
	}

	var req updateEventRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}

	fields := map[string]string{}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		fields["title"] = "must not be empty"
	}
	start := event.Start
	if req.Start != nil {
		start = *req.Start
	}
	end := event.End
	if req.End != nil {
		end = req.End
	}
	if end != nil && end.Before(start) {
		fields["end"] = "must not be before start"
	}
	if len(fields) > 0 {
		return errValidation(fields)
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	event.Start = start
	event.End = end
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if req.Color != nil {
		event.Color = *req.Color
	}

	if err := s.db.Save(&event).Error; err != nil {
		return translateDB(err, "event")
	}
	return c.JSON(http.StatusOK, event)
}

func (s *Server) deleteEvent(c echo.Context) error {
	caller := currentUser(c)
	id := c.Param("id")

	var event model.CalendarEvent
	if err := s.db.First(&event, "id = ?", id).Error; err != nil {
		return translateDB(err, "event")
	}
	if event.UserID != caller.ID {
		return errForbidden("not the event owner")
	}

	if err := s.db.Delete(&event).Error; err != nil {
		return translateDB(err, "event")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted", "id": event.ID})
}
