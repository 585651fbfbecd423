package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"backoffice/internal/model"
)

type storeQuantity struct {
	StoreName     string `json:"storeName"`
	TotalQuantity int    `json:"totalQuantity"`
}

type storeCount struct {
	StoreName string `json:"storeName"`
	Count     int64  `json:"count"`
}

type groupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type dashboardTotals struct {
	Items       int64 `json:"items"`
	Unconfirmed int64 `json:"unconfirmed"`
	InProgress  int64 `json:"inProgress"`
	Completed   int64 `json:"completed"`
}

// dashboard computes the summary aggregates over the item table, one
// group-by per figure. Read-only; fine for the table sizes this tool
// sees.
func (s *Server) dashboard(c echo.Context) error {
	items := func() *gorm.DB { return s.db.Model(&model.Item{}) }

	var quantityByStore []storeQuantity
	err := items().
		Select("store_name AS store_name, SUM(quantity) AS total_quantity").
		Group("store_name").
		Scan(&quantityByStore).Error
	if err != nil {
		return errInternal(err)
	}

	var byDelivery []groupCount
	err = items().
		Select("delivery_method AS key, COUNT(*) AS count").
		Group("delivery_method").
		Scan(&byDelivery).Error
	if err != nil {
		return errInternal(err)
	}

	var byStatus []groupCount
	err = items().
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return errInternal(err)
	}

	var unconfirmedByStore []storeCount
	err = items().
		Select("store_name AS store_name, COUNT(*) AS count").
		Where("status = ?", model.StatusUnconfirmed).
		Group("store_name").
		Scan(&unconfirmedByStore).Error
	if err != nil {
		return errInternal(err)
	}

	var inProgressByStore []storeCount
	err = items().
		Select("store_name AS store_name, COUNT(*) AS count").
		Where("status = ?", model.StatusInProgress).
		Group("store_name").
		Scan(&inProgressByStore).Error
	if err != nil {
		return errInternal(err)
	}

	var totals dashboardTotals
	if err := items().Count(&totals.Items).Error; err != nil {
		return errInternal(err)
	}
	for _, g := range byStatus {
		switch model.ItemStatus(g.Key) {
		case model.StatusUnconfirmed:
			totals.Unconfirmed = g.Count
		case model.StatusInProgress:
			totals.InProgress = g.Count
		case model.StatusCompleted:
			totals.Completed = g.Count
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totals":                totals,
		"quantityByStore":       quantityByStore,
		"countByDeliveryMethod": byDelivery,
		"countByStatus":         byStatus,
		"unconfirmedByStore":    unconfirmedByStore,
		"inProgressByStore":     inProgressByStore,
	})
}
