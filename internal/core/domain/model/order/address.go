package order

import (
	"errors"
	"fmt"
	"strings"

	"lastmile/internal/pkg/errs"
)

// Address is the postal delivery address of an order. The geographic position
// used for routing is kept separately as the order's delivery location.
type Address struct {
	street     string
	city       string
	postalCode string
	country    string
}

// NewAddress trims every part and requires street, city and country.
func NewAddress(street, city, postalCode, country string) (Address, error) {
	a := Address{
		street:     strings.TrimSpace(street),
		city:       strings.TrimSpace(city),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.TrimSpace(country),
	}

	var errStreet, errCity, errCountry error
	if a.street == "" {
		errStreet = errs.NewValueIsRequiredError("street")
	}
	if a.city == "" {
		errCity = errs.NewValueIsRequiredError("city")
	}
	if a.country == "" {
		errCountry = errs.NewValueIsRequiredError("country")
	}
	if err := errors.Join(errStreet, errCity, errCountry); err != nil {
		return Address{}, err
	}

	return a, nil
}

func (a Address) Street() string     { return a.street }
func (a Address) City() string       { return a.city }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }

// IsZero reports whether the address was never set.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) String() string {
	if a.postalCode == "" {
		return fmt.Sprintf("%s, %s, %s", a.street, a.city, a.country)
	}
	return fmt.Sprintf("%s, %s %s, %s", a.street, a.postalCode, a.city, a.country)
}
