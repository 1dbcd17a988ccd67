package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"course:enroll",
		"course:progress",
		"lecture:view",
		"assignment:view",
		"assignment:submit",
		"quiz:view",
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
		"user:change_password",
	},
	"teacher": {
		"course:create",
		"course:view",
		"course:update-own",
		"course:delete-own",
		"lecture:view",
		"lecture:manage-own",
		"assignment:view",
		"assignment:manage-own",
		"assignment:grade-own",
		"quiz:view",
		"quiz:manage-own",
		"attempt:view-all",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
