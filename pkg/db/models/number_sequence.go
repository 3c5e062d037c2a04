package models

// NumberSequence backs monotonic, human-readable document numbering
// (order and invoice numbers), partitioned by year.
type NumberSequence struct {
	Name      string `gorm:"column:name;primaryKey"`
	Year      int    `gorm:"column:year;primaryKey"`
	LastValue int64  `gorm:"column:last_value;not null;default:0"`
}
