package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"backoffice/internal/model"
)

// itemSortColumns whitelists sortBy values and maps them onto columns.
var itemSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"storeName": "store_name",
	"name":      "name",
	"quantity":  "quantity",
	"status":    "status",
}

// itemFields whitelists the fields= projection.
var itemFields = map[string]func(*model.Item) any{
	"id":             func(i *model.Item) any { return i.ID },
	"storeName":      func(i *model.Item) any { return i.StoreName },
	"name":           func(i *model.Item) any { return i.Name },
	"quantity":       func(i *model.Item) any { return i.Quantity },
	"spec":           func(i *model.Item) any { return i.Spec },
	"deliveryMethod": func(i *model.Item) any { return i.DeliveryMethod },
	"note":           func(i *model.Item) any { return i.Note },
	"status":         func(i *model.Item) any { return i.Status },
	"createdAt":      func(i *model.Item) any { return i.CreatedAt },
	"updatedAt":      func(i *model.Item) any { return i.UpdatedAt },
}

// listItems answers the paginated item query. Filters: storeName exact,
// status exact, search substring on name. The count and the window fetch
// run against the same filtered query.
func (s *Server) listItems(c echo.Context) error {
	fields := map[string]string{}
	p := parsePageParams(c, fields)

	q := s.db.Model(&model.Item{})
	if store := c.QueryParam("storeName"); store != "" {
		q = q.Where("store_name = ?", store)
	}
	if status := c.QueryParam("status"); status != "" {
		if !model.ValidItemStatus(model.ItemStatus(status)) {
			fields["status"] = "must be one of UNCONFIRMED, IN_PROGRESS, COMPLETED"
		} else {
			q = q.Where("status = ?", status)
		}
	}
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	order := "created_at DESC"
	if sortBy := c.QueryParam("sortBy"); sortBy != "" {
		col, ok := itemSortColumns[sortBy]
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

	var projection []string
	if raw := c.QueryParam("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if _, ok := itemFields[f]; !ok {
				fields["fields"] = "unknown field " + f
				break
			}
			projection = append(projection, f)
		}
	}

	if len(fields) > 0 {
		return errValidation(fields)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errInternal(err)
	}

	var items []model.Item
	if err := q.Order(order).Offset(p.offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		return errInternal(err)
	}

	meta := newPageMeta(p, total)
	var payload any = items
	if len(projection) > 0 {
		projected := make([]map[string]any, 0, len(items))
		for i := range items {
			row := make(map[string]any, len(projection))
			for _, f := range projection {
				row[f] = itemFields[f](&items[i])
			}
			projected = append(projected, row)
		}
		payload = projected
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":       payload,
		"totalItems":  total,
		"currentPage": meta.CurrentPage,
		"totalPages":  meta.TotalPages,
	})
}

type createItemRequest struct {
	StoreName      string               `json:"storeName"`
	Name           string               `json:"name"`
	Quantity       *int                 `json:"quantity"`
	Spec           string               `json:"spec"`
	DeliveryMethod model.DeliveryMethod `json:"deliveryMethod"`
	Note           string               `json:"note"`
	Status         model.ItemStatus     `json:"status"`
}

func (r *createItemRequest) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(r.StoreName) == "" {
		fields["storeName"] = "required"
	}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "required"
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		fields["quantity"] = "must be >= 0"
	}
	if !model.ValidDeliveryMethod(r.DeliveryMethod) {
		fields["deliveryMethod"] = "must be DIRECT or COURIER"
	}
	if r.Status != "" && !model.ValidItemStatus(r.Status) {
		fields["status"] = "must be one of UNCONFIRMED, IN_PROGRESS, COMPLETED"
	}
	return fields
}

func (s *Server) createItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}
	if fields := req.validate(); len(fields) > 0 {
		return errValidation(fields)
	}

	item := model.Item{
		StoreName:      strings.TrimSpace(req.StoreName),
		Name:           strings.TrimSpace(req.Name),
		Spec:           req.Spec,
		DeliveryMethod: req.DeliveryMethod,
		Note:           req.Note,
		Status:         model.StatusUnconfirmed,
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Status != "" {
		item.Status = req.Status
	}

	if err := s.db.Create(&item).Error; err != nil {
		return translateDB(err, "item")
	}
	return c.JSON(http.StatusCreated, item)
}

type updateItemRequest struct {
	StoreName      *string               `json:"storeName"`
	Name           *string               `json:"name"`
	Quantity       *int                  `json:"quantity"`
	Spec           *string               `json:"spec"`
	DeliveryMethod *model.DeliveryMethod `json:"deliveryMethod"`
	Note           *string               `json:"note"`
	Status         *model.ItemStatus     `json:"status"`
}

func (r *updateItemRequest) validate() map[string]string {
	fields := map[string]string{}
	if r.StoreName != nil && strings.TrimSpace(*r.StoreName) == "" {
		fields["storeName"] = "must not be empty"
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = "must not be empty"
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		fields["quantity"] = "must be >= 0"
	}
	if r.DeliveryMethod != nil && !model.ValidDeliveryMethod(*r.DeliveryMethod) {
		fields["deliveryMethod"] = "must be DIRECT or COURIER"
	}
	if r.Status != nil && !model.ValidItemStatus(*r.Status) {
		fields["status"] = "must be one of UNCONFIRMED, IN_PROGRESS, COMPLETED"
	}
	return fields
}

// updateItem applies only the supplied fields. The modification
// timestamp refreshes on every successful update.
func (s *Server) updateItem(c echo.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}
	if fields := req.validate(); len(fields) > 0 {
		return errValidation(fields)
	}

	var item model.Item
	if err := s.db.First(&item, id).Error; err != nil {
		return translateDB(err, "item")
	}

	if req.StoreName != nil {
		item.StoreName = strings.TrimSpace(*req.StoreName)
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Spec != nil {
		item.Spec = *req.Spec
	}
	if req.DeliveryMethod != nil {
		item.DeliveryMethod = *req.DeliveryMethod
	}
	if req.Note != nil {
		item.Note = *req.Note
	}
	if req.Status != nil {
		item.Status = *req.Status
	}

	if err := s.db.Save(&item).Error; err != nil {
		return translateDB(err, "item")
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) deleteItem(c echo.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	var item model.Item
	if err := s.db.First(&item, id).Error; err != nil {
		return translateDB(err, "item")
	}
	if err := s.db.Delete(&item).Error; err != nil {
		return translateDB(err, "item")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted", "id": item.ID})
}

type batchStatusRequest struct {
	IDs    []uint           `json:"ids"`
	Status model.ItemStatus `json:"status"`
}

// batchItemStatus changes the status of each listed item independently.
// Missing ids fail individually; there is no rollback of the ones that
// succeeded.
func (s *Server) batchItemStatus(c echo.Context) error {
	var req batchStatusRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}
	fields := map[string]string{}
	if len(req.IDs) == 0 {
		fields["ids"] = "required"
	}
	if !model.ValidItemStatus(req.Status) {
		fields["status"] = "must be one of UNCONFIRMED, IN_PROGRESS, COMPLETED"
	}
	if len(fields) > 0 {
		return errValidation(fields)
	}

	var failed []uint
	updated := 0
	for _, id := range req.IDs {
		res := s.db.Model(&model.Item{}).Where("id = ?", id).Update("status", req.Status)
		if res.Error != nil || res.RowsAffected == 0 {
			failed = append(failed, id)
			continue
		}
		updated++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"updated":   updated,
		"failed":    len(failed),
		"failedIds": failed,
	})
}

type batchDeleteRequest struct {
	IDs []uint `json:"ids"`
}

func (s *Server) batchDeleteItems(c echo.Context) error {
	var req batchDeleteRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}
	if len(req.IDs) == 0 {
		return errValidation(map[string]string{"ids": "required"})
	}

	var failed []uint
	deleted := 0
	for _, id := range req.IDs {
		res := s.db.Delete(&model.Item{}, id)
		if res.Error != nil || res.RowsAffected == 0 {
			failed = append(failed, id)
			continue
		}
		deleted++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"deleted":   deleted,
		"failed":    len(failed),
		"failedIds": failed,
	})
}

func parseItemID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errValidation(map[string]string{"id": "must be a positive integer"})
	}
	return uint(id), nil
}
