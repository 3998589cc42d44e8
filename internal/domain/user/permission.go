package user

type Permission string

const (
	// Self service
	PermissionAttendanceLog     Permission = "attendance.log"
	PermissionMetricsViewOwn    Permission = "metrics.view_own"
	PermissionExcuseRequest     Permission = "excuse.request"
	PermissionScheduleView      Permission = "schedule.view"
	PermissionMetricsViewAll    Permission = "metrics.view_all"
	PermissionWindowManage      Permission = "window.manage"
	PermissionPeriodManage      Permission = "period.manage"
	PermissionExcuseManage      Permission = "excuse.manage"
	PermissionReportsView       Permission = "reports.view"
	PermissionUserManage        Permission = "user.manage"
	PermissionExcuseRequestView Permission = "excuse.request_view_all"
)

var memberPermissions = []Permission{
	PermissionAttendanceLog,
	PermissionMetricsViewOwn,
	PermissionExcuseRequest,
	PermissionScheduleView,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: append(append([]Permission{}, memberPermissions...),
		PermissionMetricsViewAll,
		PermissionWindowManage,
		PermissionPeriodManage,
		PermissionExcuseManage,
		PermissionReportsView,
		PermissionUserManage,
		PermissionExcuseRequestView,
	),
	RoleMember: memberPermissions,
}
