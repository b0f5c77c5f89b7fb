package models

// Type oturumların spor dalını tanımlar (seed ile yüklenir).
type Type struct {
	BaseModel
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string `gorm:"type:text"`
}

const (
	TypeNameBadminton  = "BADMINTON"
	TypeNamePickleball = "PICKLEBALL"
	TypeNameVolleyball = "VOLLEYBALL"
	TypeNameOther      = "OTHER"
)
