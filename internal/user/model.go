package user

type Role string

const (
	RoleCustomer Role = "customer"
	RoleFarmer   Role = "farmer"
	RoleDelivery Role = "delivery"
)

// ValidRole reports whether the given role is one of the closed set.
// Roles are fixed at registration time; there is no role-change path.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleFarmer, RoleDelivery:
		return true
	}
	return false
}

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Password     string `json:"-"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Principal is the authenticated caller identity resolved from a JWT.
// Every service operation trusts it was verified at the transport layer.
type Principal struct {
	ID   int64
	Role Role
}
