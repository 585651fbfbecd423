// Package model defines the persisted records and their closed enum sets.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role controls write access through the API gate.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// DeliveryMethod for stock items.
type DeliveryMethod string

const (
	DeliveryDirect  DeliveryMethod = "DIRECT"
	DeliveryCourier DeliveryMethod = "COURIER"
)

// ItemStatus tracks an item's progress.
type ItemStatus string

const (
	StatusUnconfirmed ItemStatus = "UNCONFIRMED"
	StatusInProgress  ItemStatus = "IN_PROGRESS"
	StatusCompleted   ItemStatus = "COMPLETED"
)

// Priority orders todos; HIGH sorts first.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// MaxTodoTextLen bounds the free-text field of a Todo.
const MaxTodoTextLen = 200

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

func ValidDeliveryMethod(m DeliveryMethod) bool {
	return m == DeliveryDirect || m == DeliveryCourier
}

func ValidItemStatus(s ItemStatus) bool {
	return s == StatusUnconfirmed || s == StatusInProgress || s == StatusCompleted
}

func ValidPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// User is an internal account. Todos and events are removed with it.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"not null;default:USER" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Todos  []Todo          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Events []CalendarEvent `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// PublicUser is the subset of User safe to embed in responses.
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Item is a stock record. Items have no owner; any authenticated writer
// may edit them.
type Item struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreName      string         `gorm:"not null;index" json:"storeName"`
	Name           string         `gorm:"not null" json:"name"`
	Quantity       int            `gorm:"not null;default:0" json:"quantity"`
	Spec           string         `json:"spec"`
	DeliveryMethod DeliveryMethod `gorm:"not null" json:"deliveryMethod"`
	Note           string         `json:"note"`
	Status         ItemStatus     `gorm:"not null;default:UNCONFIRMED;index" json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Todo is a task, optionally assigned to a user. A nil UserID marks a
// common task visible to everyone.
type Todo struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Text      string     `gorm:"size:200;not null" json:"text"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	Priority  Priority   `gorm:"not null;default:MEDIUM;index" json:"priority"`
	Deadline  *time.Time `json:"deadline"`
	UserID    *uint      `gorm:"index" json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns the opaque id when the caller did not.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// CalendarEvent is a scheduled entry strictly scoped to its owner.
type CalendarEvent struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Start       time.Time  `gorm:"column:start_at;not null;index" json:"start"`
	End         *time.Time `gorm:"column:end_at" json:"end"`
	AllDay      bool       `gorm:"not null;default:false" json:"allDay"`
	Color       string     `json:"color"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
