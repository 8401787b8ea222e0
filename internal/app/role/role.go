package role

type Role int

const (
	Designer Role = iota // 0
	Manager              // 1
	Admin                // 2
)

func (r Role) String() string {
	switch r {
	case Designer:
		return "designer"
	case Manager:
		return "manager"
	case Admin:
		return "admin"
	}
	return "unknown"
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r >= Designer && r <= Admin
}

// All roles may use the project workspace.
var All = []Role{Designer, Manager, Admin}

// Procurement roles may commit money: send orders, accept quotes, record payments.
var Procurement = []Role{Manager, Admin}
