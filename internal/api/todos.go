package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"backoffice/internal/model"
)

// priorityOrder sorts HIGH before MEDIUM before LOW; the enum is stored
// as text so plain column ordering would be alphabetical.
const priorityOrder = "CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END"

var todoSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"deadline":  "deadline",
	"text":      "text",
	"priority":  priorityOrder,
}

// todoPayload is a todo plus the assigned user's public fields.
type todoPayload struct {
	model.Todo
	User *model.PublicUser `json:"user"`
}

func toTodoPayload(t model.Todo) todoPayload {
	p := todoPayload{Todo: t}
	if t.User != nil {
		pub := t.User.Public()
		p.User = &pub
	}
	return p
}

// listTodos answers the paginated todo query. Default order is priority
// ascending (HIGH first) then creation descending.
func (s *Server) listTodos(c echo.Context) error {
	fields := map[string]string{}
	p := parsePageParams(c, fields)

	q := s.db.Model(&model.Todo{})
	if raw := c.QueryParam("completed"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			fields["completed"] = "must be true or false"
		} else {
			q = q.Where("completed = ?", done)
		}
	}
	if raw := c.QueryParam("priority"); raw != "" {
		if !model.ValidPriority(model.Priority(raw)) {
			fields["priority"] = "must be one of HIGH, MEDIUM, LOW"
		} else {
			q = q.Where("priority = ?", raw)
		}
	}
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fields["userId"] = "must be a positive integer"
		} else {
			q = q.Where("user_id = ?", uint(id))
		}
	}
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("LOWER(text) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	order := priorityOrder + " ASC, created_at DESC"
	if sortBy := c.QueryParam("sortBy"); sortBy != "" {
		col, ok := todoSortColumns[sortBy]
		if !ok {
			fields["sortBy"] = "unknown sort key"
		} else {
			dir := "ASC"
			switch c.QueryParam("sortOrder") {
			case "", "asc":
			case "desc":
				dir = "DESC"
			default:
				fields["sortOrder"] = "must be asc or desc"
			}
			order = col + " " + dir
		}
	}

	if len(fields) > 0 {
		return errValidation(fields)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errInternal(err)
	}

	var todos []model.Todo
	err := q.Preload("User").Order(order).Offset(p.offset()).Limit(p.Limit).Find(&todos).Error
	if err != nil {
		return errInternal(err)
	}

	data := make([]todoPayload, 0, len(todos))
	for _, t := range todos {
		data = append(data, toTodoPayload(t))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    data,
		"meta":    newPageMeta(p, total),
	})
}

type createTodoRequest struct {
	Text     string         `json:"text"`
	Priority model.Priority `json:"priority"`
	Deadline *time.Time     `json:"deadline"`
	UserID   *uint          `json:"userId"`
}

func (s *Server) createTodo(c echo.Context) error {
	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}

	fields := map[string]string{}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		fields["text"] = "required"
	} else if utf8.RuneCountInString(text) > model.MaxTodoTextLen {
		fields["text"] = fmt.Sprintf("must be at most %d characters", model.MaxTodoTextLen)
	}
	if req.Priority != "" && !model.ValidPriority(req.Priority) {
		fields["priority"] = "must be one of HIGH, MEDIUM, LOW"
	}
	if req.UserID != nil {
		if err := s.userExists(*req.UserID); err != nil {
			var ae *apiError
			if errors.As(err, &ae) && ae.Code == http.StatusNotFound {
				fields["userId"] = "user does not exist"
			} else {
				return err
			}
		}
	}
	if len(fields) > 0 {
		return errValidation(fields)
	}

	todo := model.Todo{
		Text:     text,
		Priority: model.PriorityMedium,
		Deadline: req.Deadline,
		UserID:   req.UserID,
	}
	if req.Priority != "" {
		todo.Priority = req.Priority
	}

	if err := s.db.Create(&todo).Error; err != nil {
		return translateDB(err, "todo")
	}
	if todo.UserID != nil {
		if err := s.db.Preload("User").First(&todo, "id = ?", todo.ID).Error; err != nil {
			return errInternal(err)
		}
	}
	return c.JSON(http.StatusCreated, toTodoPayload(todo))
}

type updateTodoRequest struct {
	Text      *string         `json:"text"`
	Completed *bool           `json:"completed"`
	Priority  *model.Priority `json:"priority"`
	Deadline  *time.Time      `json:"deadline"`
	// A zero userId clears the assignment; any other value reassigns.
	UserID *uint `json:"userId"`
}

func (s *Server) updateTodo(c echo.Context) error {
	id := c.Param("id")

	var req updateTodoRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}

	fields := map[string]string{}
	if req.Text != nil {
		t := strings.TrimSpace(*req.Text)
		if t == "" {
			fields["text"] = "must not be empty"
		} else if utf8.RuneCountInString(t) > model.MaxTodoTextLen {
			fields["text"] = fmt.Sprintf("must be at most %d characters", model.MaxTodoTextLen)
		}
	}
	if req.Priority != nil && !model.ValidPriority(*req.Priority) {
		fields["priority"] = "must be one of HIGH, MEDIUM, LOW"
	}
	if req.UserID != nil && *req.UserID != 0 {
		if err := s.userExists(*req.UserID); err != nil {
			var ae *apiError
			if errors.As(err, &ae) && ae.Code == http.StatusNotFound {
				fields["userId"] = "user does not exist"
			} else {
				return err
			}
		}
	}
	if len(fields) > 0 {
		return errValidation(fields)
	}

	var todo model.Todo
	if err := s.db.First(&todo, "id = ?", id).Error; err != nil {
		return translateDB(err, "todo")
	}

	if req.Text != nil {
		todo.Text = strings.TrimSpace(*req.Text)
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	if req.Deadline != nil {
		todo.Deadline = req.Deadline
	}
	if req.UserID != nil {
		if *req.UserID == 0 {
			todo.UserID = nil
			todo.User = nil
		} else {
			todo.UserID = req.UserID
		}
	}

	if err := s.db.Save(&todo).Error; err != nil {
		return translateDB(err, "todo")
	}
	if todo.UserID != nil {
		if err := s.db.Preload("User").First(&todo, "id = ?", todo.ID).Error; err != nil {
			return errInternal(err)
		}
	}
	return c.JSON(http.StatusOK, toTodoPayload(todo))
}

func (s *Server) deleteTodo(c echo.Context) error {
	id := c.Param("id")

	var todo model.Todo
	if err := s.db.First(&todo, "id = ?", id).Error; err != nil {
		return translateDB(err, "todo")
	}
	if err := s.db.Delete(&todo).Error; err != nil {
		return translateDB(err, "todo")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "todo deleted",
		"id":      todo.ID,
	})
}

// userExists checks a foreign user reference before it is written.
func (s *Server) userExists(id uint) error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errInternal(fmt.Errorf("user existence check: %w", err))
	}
	if count == 0 {
		return errNotFound("user")
	}
	return nil
}
