package model

import "encoding/json"

// RawObject is one source JSON object with its values left undecoded.
type RawObject map[string]json.RawMessage

// User is a row of the user table. ID comes verbatim from the source.
// Text columns are nil when the source value is null or absent.
type User struct {
	ID       int64   `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Website  *string `json:"website"`
	Name     *string `json:"name"`
}

// Address is a row of the address table, owned by a User.
type Address struct {
	ID      int64   `json:"id"`
	Street  *string `json:"street"`
	Suite   *string `json:"suite"`
	City    *string `json:"city"`
	Zipcode *string `json:"zipcode"`
	UserID  int64   `json:"user_id"`
	Geo     *Geo    `json:"geo"`
}

// Geo is a row of the geo table, owned by an Address. AddressID is zero
// until the owning Address has been written and received its key.
type Geo struct {
	ID        int64    `json:"id"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	AddressID int64    `json:"address_id"`
}

// Company is a row of the company table, owned by a User.
type Company struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	CatchPhrase *string `json:"catchPhrase"`
	BS          *string `json:"bs"`
	UserID      int64   `json:"user_id"`
}

// Graph is the record set produced from one source object.
type Graph struct {
	User    *User
	Address *Address
	Company *Company

	// Dropped lists the dotted paths of list-valued fields that were skipped.
	Dropped []string
}

// Geo returns the Geo owned by the graph's Address, or nil.
func (g *Graph) Geo() *Geo {
	if g == nil || g.Address == nil {
		return nil
	}
	return g.Address.Geo
}

// Values returns the user's column values in UserTable.InsertColumns order.
func (u *User) Values() []any {
	return []any{u.ID, nullable(u.Username), nullable(u.Email), nullable(u.Phone), nullable(u.Website), nullable(u.Name)}
}

// Values returns the address's column values in AddressTable.InsertColumns order.
func (a *Address) Values() []any {
	return []any{nullable(a.Street), nullable(a.Suite), nullable(a.City), nullable(a.Zipcode), a.UserID}
}

// Values returns the geo's column values in GeoTable.InsertColumns order.
func (g *Geo) Values() []any {
	return []any{nullable(g.Lat), nullable(g.Lng), g.AddressID}
}

// nullable returns nil for a missing value so drivers bind SQL NULL.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// Values returns the company's column values in CompanyTable.InsertColumns order.
func (c *Company) Values() []any {
	return []any{nullable(c.Name), nullable(c.CatchPhrase), nullable(c.BS), c.UserID}
}

// String returns a pointer to s, for building rows by hand.
func String(s string) *string {
	return &s
}
