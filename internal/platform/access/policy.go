// Package access implements the role-based write policy consulted before
// every mutating domain operation. Reads are safe and always pass; the
// administrator capability is an explicit bypass composed on top of the
// per-resource role table rather than another entry in the role enum.
package access

// Operation classifies an access request.
type Operation string

const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)

// Resource names the entity kinds the policy table covers.
type Resource string

const (
	ResourcePractitioner Resource = "practitioner"
	ResourcePatient      Resource = "patient"
	ResourceAppointment  Resource = "appointment"
	ResourceRecord       Resource = "record"
)

const adminRole = "admin"

// writerRole is the single non-admin role permitted to write each resource.
// Practitioner and patient profiles are admin-managed; appointments and
// medical records belong to practitioner schedule management.
var writerRole = map[Resource]string{
	ResourcePractitioner: adminRole,
	ResourcePatient:      adminRole,
	ResourceAppointment:  "practitioner",
	ResourceRecord:       "practitioner",
}

// Allow is a pure decision function: the same (role, op, resource) input
// always yields the same decision. Read operations return true for every
// role; the admin capability satisfies every write check.
func Allow(role string, op Operation, resource Resource) bool {
	if op == OpRead {
		return true
	}
	if role == adminRole {
		return true
	}
	return writerRole[resource] == role
}
