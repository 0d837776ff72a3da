package entity

// Volume 卷/部实体
type Volume struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID int64  `json:"project_id" gorm:"not null;uniqueIndex:uq_volumes_project_index,priority:1"`
	Title     string `json:"title" gorm:"type:varchar(255);not null"`
	Index     int    `json:"index" gorm:"column:index;not null;default:0;uniqueIndex:uq_volumes_project_index,priority:2"`

	Chapters []Chapter `json:"-" gorm:"constraint:OnDelete:SET NULL"`
}

// TableName 指定表名
func (Volume) TableName() string {
	return "volumes"
}

// NewVolume 创建新卷
func NewVolume(projectID int64, index int, title string) *Volume {
	return &Volume{
		ProjectID: projectID,
		Index:     index,
		Title:     title,
	}
}
