package ds

import "time"

// Survey is a site visit; photos taken during it point back to it.
type Survey struct {
	ID          uint   `gorm:"primaryKey"`
	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"type:varchar(150);not null"`
	Room        string `gorm:"type:varchar(100)"`
	Notes       string `gorm:"type:text"`
	SurveyedAt  time.Time
	CreatedByID uint `gorm:"not null"`
	CreatedAt   time.Time

	Photos []Photo `gorm:"foreignKey:SurveyID"`
}

type Photo struct {
	ID           uint   `gorm:"primaryKey"`
	ProjectID    uint   `gorm:"not null;index"`
	SurveyID     *uint  `gorm:"index"`
	ObjectKey    string `gorm:"type:varchar(255);not null"`
	FileName     string `gorm:"type:varchar(255)"`
	Caption      string `gorm:"type:varchar(255)"`
	Room         string `gorm:"type:varchar(100)"`
	ContentType  string `gorm:"type:varchar(50)"`
	Size         int64
	UploadedByID uint `gorm:"not null"`
	CreatedAt    time.Time
}

// document categories
const (
	DocContract = "contract"
	DocDrawing  = "drawing"
	DocInvoice  = "invoice"
	DocOther    = "other"
)

type Document struct {
	ID           uint   `gorm:"primaryKey"`
	ProjectID    uint   `gorm:"not null;index"`
	Category     string `gorm:"type:varchar(20);default:'other';not null"`
	FileName     string `gorm:"type:varchar(255);not null"`
	ObjectKey    string `gorm:"type:varchar(255);not null"`
	ContentType  string `gorm:"type:varchar(100)"`
	Size         int64
	UploadedByID uint `gorm:"not null"`
	CreatedAt    time.Time
}

// Models lists every table, in dependency order, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Supplier{},
		&SpecItem{},
		&RFQ{},
		&RFQItem{},
		&RFQSupplier{},
		&SupplierQuote{},
		&SupplierQuoteItem{},
		&Order{},
		&OrderItem{},
		&ClientQuote{},
		&LineItem{},
		&Payment{},
		&Task{},
		&Survey{},
		&Photo{},
		&Document{},
	}
}
