package models

import "time"

// OrgMember links a user to a company account. Company-scoped billing
// actions require a verified membership row for the acting user.
type OrgMember struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrgID     string    `gorm:"column:org_id;type:varchar(64);not null;uniqueIndex:unique_org_user,priority:1" json:"org_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:unique_org_user,priority:2" json:"user_id"`
	Verified  bool      `gorm:"column:verified;not null;default:false" json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrgMember) TableName() string {
	return "org_member"
}
