package shared

// Protected resource families.
const (
	ResourceStudent    = "student"
	ResourceTeacher    = "teacher"
	ResourceDepartment = "department"
	ResourceGrade      = "grade"
	ResourceClass      = "class"
	ResourceModule     = "module"

	ResourceRole       = "role"
	ResourcePermission = "permission"
)

// CoreResources lists every resource family the platform protects.
func CoreResources() []string {
	return []string{
		ResourceStudent,
		ResourceTeacher,
		ResourceDepartment,
		ResourceGrade,
		ResourceClass,
		ResourceModule,
		ResourceRole,
		ResourcePermission,
	}
}
