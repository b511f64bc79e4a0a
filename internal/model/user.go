package model

import (
	"encoding/xml"
	"strings"
	"time"
)

// User is the record served through API templates.
// It carries no persistence tags; repositories map columns explicitly.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins first and last name with a single space.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// APIAttribute exposes the attributes API templates may reference.
func (u *User) APIAttribute(name string) (any, bool) {
	switch name {
	case "id":
		return u.ID, true
	case "first_name":
		return u.FirstName, true
	case "last_name":
		return u.LastName, true
	case "full_name":
		return u.FullName(), true
	case "created_at":
		return u.CreatedAt, true
	default:
		return nil, false
	}
}

// UserAPIName is the model name users are registered under in API templates.
const UserAPIName = "user"

// UserInput is the attribute set accepted when creating a user.
type UserInput struct {
	FirstName string `json:"first_name" xml:"first-name" form:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" xml:"last-name" form:"last_name" validate:"required,max=255"`
}

// UnmarshalXML reads the attributes from the children of start. Element
// names may be dasherized (first-name) or underscored (first_name); unknown
// elements are skipped.
func (in *UserInput) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			var dst *string
			switch strings.ReplaceAll(el.Name.Local, "-", "_") {
			case "first_name":
				dst = &in.FirstName
			case "last_name":
				dst = &in.LastName
			}
			if dst == nil {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := d.DecodeElement(dst, &el); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}
