package model

type UserRole string

const (
	Student UserRole = "student"
	Faculty UserRole = "faculty"
	Admin   UserRole = "admin"
)

// RotationRole is the role a student currently holds inside their study group.
type RotationRole string

const (
	RotationTeacher     RotationRole = "teacher"
	RotationFacilitator RotationRole = "facilitator"
	RotationAssessor    RotationRole = "assessor"
)

// swagger:model
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:255;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student'" json:"role"`

	GroupID      *uint        `gorm:"index" json:"groupId,omitempty"`
	Group        *StudyGroup  `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	RotationRole RotationRole `gorm:"size:20" json:"rotationRole,omitempty"`

	// AttendanceRate is maintained by faculty, 0..1.
	AttendanceRate float64 `gorm:"default:0.95" json:"attendanceRate"`

	Disabled bool `gorm:"default:false" json:"disabled"`
}

func (User) TableName() string {
	return "users"
}
