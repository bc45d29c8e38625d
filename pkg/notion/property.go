package notion

import (
	"encoding/json"
	"fmt"
)

// PropertyType is the kind of a document property.
type PropertyType string

const (
	PropertyTypeNumber         PropertyType = "number"
	PropertyTypeURL            PropertyType = "url"
	PropertyTypeSelect         PropertyType = "select"
	PropertyTypeMultiSelect    PropertyType = "multiSelect"
	PropertyTypeStatus         PropertyType = "status"
	PropertyTypeDate           PropertyType = "date"
	PropertyTypeEmail          PropertyType = "email"
	PropertyTypePhoneNumber    PropertyType = "phoneNumber"
	PropertyTypeCheckbox       PropertyType = "checkbox"
	PropertyTypeFiles          PropertyType = "files"
	PropertyTypeCreatedBy      PropertyType = "createdBy"
	PropertyTypeCreatedTime    PropertyType = "createdTime"
	PropertyTypeLastEditedBy   PropertyType = "lastEditedBy"
	PropertyTypeLastEditedTime PropertyType = "lastEditedTime"
	PropertyTypeStringFormula  PropertyType = "stringFormula"
	PropertyTypeDateFormula    PropertyType = "dateFormula"
	PropertyTypeNumberFormula  PropertyType = "numberFormula"
	PropertyTypeBooleanFormula PropertyType = "booleanFormula"
	PropertyTypeButton         PropertyType = "button"
	PropertyTypeUniqueID       PropertyType = "uniqueId"
	PropertyTypeVerification   PropertyType = "verification"
	PropertyTypeTitle          PropertyType = "title"
	PropertyTypeRichText       PropertyType = "richText"
	PropertyTypePeople         PropertyType = "people"
	PropertyTypeRelation       PropertyType = "relation"
	PropertyTypeRollup         PropertyType = "rollup"
)

// Property is a single typed value on a document. The dynamic type of Value is
// fixed by Type:
//
//	number, numberFormula                    *float64
//	url, select, status, email, phoneNumber,
//	stringFormula                            *string
//	multiSelect, relation                    []string
//	date, dateFormula                        *Date
//	checkbox                                 bool
//	booleanFormula                           *bool
//	files                                    []File
//	createdBy, lastEditedBy, createdTime,
//	lastEditedTime                           string
//	uniqueId                                 UniqueID
//	verification                             Verification
//	title, richText                          RichText
//	people                                   []Person
//	button, rollup                           nil
type Property struct {
	Type     PropertyType `json:"type"`
	NotionID string       `json:"notionId"`
	Name     string       `json:"name"`
	Value    any          `json:"value"`
}

type UniqueID struct {
	Prefix *string  `json:"prefix"`
	Number *float64 `json:"number"`
}

type Verification struct {
	Status VerificationStatus `json:"status"`
}

// Person is a reference to a Notion user. Only NotionID is set until the
// document is cached, at which point the remaining fields are copied from the
// cached user.
type Person struct {
	NotionID string `json:"notionId"`
	Name     string `json:"name,omitempty"`
	Avatar   *File  `json:"avatar,omitempty"`
	IsBot    bool   `json:"isBot,omitempty"`
}

// PropertySchema describes one column of a database.
type PropertySchema struct {
	NotionID    string `json:"notionId"`
	DisplayName string `json:"displayName"`
	// GeneratedName is the lower camel case form of DisplayName with special
	// characters removed.
	GeneratedName string       `json:"generatedName"`
	Type          PropertyType `json:"type"`
	AllowedValues []string     `json:"allowedValues,omitempty"`
}

// newPropertyValue returns a pointer to an empty value of the Go type used for
// the property type, or nil for types that carry no value.
func newPropertyValue(t PropertyType) (any, error) {
	switch t {
	case PropertyTypeNumber, PropertyTypeNumberFormula:
		return new(*float64), nil
	case PropertyTypeURL, PropertyTypeSelect, PropertyTypeStatus, PropertyTypeEmail,
		PropertyTypePhoneNumber, PropertyTypeStringFormula:
		return new(*string), nil
	case PropertyTypeMultiSelect, PropertyTypeRelation:
		return new([]string), nil
	case PropertyTypeDate, PropertyTypeDateFormula:
		return new(*Date), nil
	case PropertyTypeCheckbox:
		return new(bool), nil
	case PropertyTypeBooleanFormula:
		return new(*bool), nil
	case PropertyTypeFiles:
		return new([]File), nil
	case PropertyTypeCreatedBy, PropertyTypeLastEditedBy, PropertyTypeCreatedTime,
		PropertyTypeLastEditedTime:
		return new(string), nil
	case PropertyTypeUniqueID:
		return new(UniqueID), nil
	case PropertyTypeVerification:
		return new(Verification), nil
	case PropertyTypeTitle, PropertyTypeRichText:
		return new(RichText), nil
	case PropertyTypePeople:
		return new([]Person), nil
	case PropertyTypeButton, PropertyTypeRollup:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown property type %q", t)
}

// UnmarshalJSON decodes Value into the Go type used for the property type.
func (p *Property) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     PropertyType    `json:"type"`
		NotionID string          `json:"notionId"`
		Name     string          `json:"name"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	target, err := newPropertyValue(raw.Type)
	if err != nil {
		return err
	}

	p.Type = raw.Type
	p.NotionID = raw.NotionID
	p.Name = raw.Name
	p.Value = nil

	if target == nil {
		return nil
	}
	if len(raw.Value) > 0 {
		if err := json.Unmarshal(raw.Value, target); err != nil {
			return fmt.Errorf("error decoding value of property %q: %w", raw.Name, err)
		}
	}

	switch v := target.(type) {
	case **float64:
		p.Value = *v
	case **string:
		p.Value = *v
	case *[]string:
		p.Value = *v
	case **Date:
		p.Value = *v
	case *bool:
		p.Value = *v
	case **bool:
		p.Value = *v
	case *[]File:
		p.Value = *v
	case *string:
		p.Value = *v
	case *UniqueID:
		p.Value = *v
	case *Verification:
		p.Value = *v
	case *RichText:
		p.Value = *v
	case *[]Person:
		p.Value = *v
	}

	return nil
}
