package domain

// Customer is a registered buyer with a configured ticket discount percent.
type Customer struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Discount int
}
