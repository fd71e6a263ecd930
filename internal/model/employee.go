package model

// Employee 员工表，对应 employees
//
// EmployeeCode 为人工分配的工号（对外 JSON 字段沿用 employee_id），
// 与 Email 一起仅在在职员工范围内唯一
type Employee struct {
	ID           string `gorm:"type:uuid;primaryKey"                        json:"id"`
	EmployeeCode string `gorm:"column:employee_code;type:varchar(20);not null" json:"employee_id"`
	FullName     string `gorm:"type:varchar(100);not null"                  json:"full_name"`
	Email        string `gorm:"type:varchar(255);not null"                  json:"email"`
	Department   string `gorm:"type:varchar(100);not null"                  json:"department"`
	IsActive     bool   `gorm:"not null"                                   json:"is_active"`
	BaseModel

	// 关联：删除员工时级联删除考勤
	Attendance []Attendance `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }
