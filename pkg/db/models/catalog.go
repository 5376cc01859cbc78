package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

// Product carries the catalog price and the aggregate quantity across stores.
type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Price     int64     `gorm:"column:price;not null" json:"price"`
	Quantity  int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProductStore is the per-store stock record orders reserve against.
type ProductStore struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID  uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index" json:"productId"`
	StoreID    uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index" json:"storeId"`
	Quantity   int        `gorm:"column:quantity;not null;default:0" json:"quantity"`
	ExpiryDate *time.Time `gorm:"column:expiry_date" json:"expiryDate,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
}

func (ProductStore) TableName() string { return "product_stores" }

func (ps *ProductStore) BeforeCreate(*gorm.DB) error {
	ensureID(&ps.ID)
	return nil
}

type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Address   string    `gorm:"column:address;type:text;not null" json:"address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Store) TableName() string { return "stores" }

func (s *Store) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// User is read by the engine to resolve couriers and notification recipients.
type User struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email     string           `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	FirstName string           `gorm:"column:first_name;type:text" json:"firstName"`
	LastName  string           `gorm:"column:last_name;type:text" json:"lastName"`
	Role      enums.UserRole   `gorm:"column:role;type:text;not null" json:"role"`
	StoreID   *uuid.UUID       `gorm:"column:store_id;type:uuid" json:"storeId,omitempty"`
	Status    enums.UserStatus `gorm:"column:status;type:text;not null;default:ACTIVE" json:"status"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	if u.Status == "" {
		u.Status = enums.UserStatusActive
	}
	return nil
}
