package domain

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Address struct {
	City         string `json:"city"`
	CityRef      string `json:"cityRef"`
	Warehouse    string `json:"warehouse"`
	WarehouseRef string `json:"warehouseRef"`
}

type User struct {
	ID          string `db:"id" json:"id"`
	Email       string `db:"email" json:"email"`
	Hash        string `db:"password_hash" json:"-"`
	FirstName   string `db:"first_name" json:"firstName,omitempty"`
	LastName    string `db:"last_name" json:"lastName,omitempty"`
	MiddleName  string `db:"middle_name" json:"middleName,omitempty"`
	Phone       string `db:"phone" json:"phone,omitempty"`
	Avatar      string `db:"avatar" json:"avatar,omitempty"`
	Role        string `db:"role" json:"role"`
	AddressJSON string `db:"saved_address_json" json:"-"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
	UpdatedAt   string `db:"updated_at" json:"updatedAt,omitempty"`

	SavedAddress *Address `db:"-" json:"savedAddress,omitempty"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Author is the public face of a user attached to reviews.
type Author struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Role      string `json:"role,omitempty"`
}
