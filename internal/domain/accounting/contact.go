package accounting

import "errors"

// Fallback values used when an order carries no usable customer identity.
const (
	FallbackLastName    = "Kunde"
	FallbackCompanyName = "Unbekannt"
)

var ErrContactNameRequired = errors.New("contact needs a company name or a person name")

// Salutation values accepted by the remote API.
const (
	SalutationMr  = "Herr"
	SalutationMrs = "Frau"
)

// Company identifies a business customer.
type Company struct {
	Name string
}

// Person identifies a private customer.
type Person struct {
	Salutation string
	FirstName  string
	LastName   string
}

// Address is a postal address attached to a contact or invoice.
type Address struct {
	Street      string
	Zip         string
	City        string
	CountryCode string
}

// ContactDraft describes a customer record to create on the remote system.
// Exactly one of Company or Person must be set.
type ContactDraft struct {
	Company        *Company
	Person         *Person
	Email          string
	Phone          string
	BillingAddress *Address
}

// Validate ensures the draft can be accepted by the remote API.
func (d *ContactDraft) Validate() error {
	if d.Company == nil && d.Person == nil {
		return ErrContactNameRequired
	}
	if d.Person != nil && d.Person.LastName == "" {
		return ErrContactNameRequired
	}
	if d.Company != nil && d.Company.Name == "" {
		return ErrContactNameRequired
	}
	return nil
}

// Contact is a customer record as stored on the remote system.
type Contact struct {
	ID             string
	Company        *Company
	Person         *Person
	Email          string
	Phone          string
	BillingAddress *Address
}
