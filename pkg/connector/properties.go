package connector

import (
	"context"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

// mapProperty converts a page property value. ok is false if the property type
// is not supported, in which case the property is dropped.
func (c *Connector) mapProperty(ctx context.Context, name string, v apiPropertyValue) (notion.Property, bool, error) {
	prop := notion.Property{NotionID: v.ID, Name: name}

	switch v.Type {
	case "number":
		prop.Type, prop.Value = notion.PropertyTypeNumber, v.Number
	case "url":
		prop.Type, prop.Value = notion.PropertyTypeURL, v.URL
	case "select":
		prop.Type, prop.Value = notion.PropertyTypeSelect, optionName(v.Select)
	case "multi_select":
		names := make([]string, 0, len(v.MultiSelect))
		for _, o := range v.MultiSelect {
			names = append(names, o.Name)
		}
		prop.Type, prop.Value = notion.PropertyTypeMultiSelect, names
	case "status":
		prop.Type, prop.Value = notion.PropertyTypeStatus, optionName(v.Status)
	case "date":
		prop.Type, prop.Value = notion.PropertyTypeDate, mapDate(v.Date)
	case "email":
		prop.Type, prop.Value = notion.PropertyTypeEmail, v.Email
	case "phone_number":
		prop.Type, prop.Value = notion.PropertyTypePhoneNumber, v.PhoneNumber
	case "checkbox":
		prop.Type, prop.Value = notion.PropertyTypeCheckbox, v.Checkbox
	case "files":
		files, err := c.mapFiles(ctx, v.Files)
		if err != nil {
			return prop, false, err
		}
		prop.Type, prop.Value = notion.PropertyTypeFiles, files
	case "created_by":
		prop.Type, prop.Value = notion.PropertyTypeCreatedBy, userID(v.CreatedBy)
	case "created_time":
		prop.Type, prop.Value = notion.PropertyTypeCreatedTime, v.CreatedTime
	case "last_edited_by":
		prop.Type, prop.Value = notion.PropertyTypeLastEditedBy, userID(v.LastEditedBy)
	case "last_edited_time":
		prop.Type, prop.Value = notion.PropertyTypeLastEditedTime, v.LastEditedTime
	case "formula":
		return c.mapFormula(prop, v.Formula)
	case "button":
		prop.Type = notion.PropertyTypeButton
	case "unique_id":
		uid := notion.UniqueID{}
		if v.UniqueID != nil {
			uid.Prefix, uid.Number = v.UniqueID.Prefix, v.UniqueID.Number
		}
		prop.Type, prop.Value = notion.PropertyTypeUniqueID, uid
	case "verification":
		status := notion.VerificationUnverified
		if v.Verification != nil && v.Verification.State != "" {
			status = notion.VerificationStatus(v.Verification.State)
		}
		prop.Type, prop.Value = notion.PropertyTypeVerification, notion.Verification{Status: status}
	case "title":
		prop.Type, prop.Value = notion.PropertyTypeTitle, mapRichText(v.Title)
	case "rich_text":
		prop.Type, prop.Value = notion.PropertyTypeRichText, mapRichText(v.RichText)
	case "people":
		people := make([]notion.Person, 0, len(v.People))
		for _, u := range v.People {
			people = append(people, notion.Person{NotionID: u.ID})
		}
		prop.Type, prop.Value = notion.PropertyTypePeople, people
	case "relation":
		ids := make([]string, 0, len(v.Relation))
		for _, r := range v.Relation {
			ids = append(ids, r.ID)
		}
		prop.Type, prop.Value = notion.PropertyTypeRelation, ids
	case "rollup":
		prop.Type = notion.PropertyTypeRollup
	default:
		c.logger.Warn("unknown property type, skipping", "property", name, "type", v.Type)
		return prop, false, nil
	}

	return prop, true, nil
}

// mapFormula resolves a formula property to the type of its computed value.
func (c *Connector) mapFormula(prop notion.Property, f *apiFormula) (notion.Property, bool, error) {
	if f == nil {
		prop.Type = notion.PropertyTypeStringFormula
		prop.Value = (*string)(nil)
		return prop, true, nil
	}

	switch f.Type {
	case "string":
		prop.Type, prop.Value = notion.PropertyTypeStringFormula, f.String
	case "number":
		prop.Type, prop.Value = notion.PropertyTypeNumberFormula, f.Number
	case "boolean":
		prop.Type, prop.Value = notion.PropertyTypeBooleanFormula, f.Boolean
	case "date":
		prop.Type, prop.Value = notion.PropertyTypeDateFormula, mapDate(f.Date)
	default:
		c.logger.Warn("unknown formula type, skipping", "property", prop.Name, "type", f.Type)
		return prop, false, nil
	}
	return prop, true, nil
}

func optionName(o *apiSelectOption) *string {
	if o == nil {
		return nil
	}
	name := o.Name
	return &name
}

func userID(u *apiUser) string {
	if u == nil {
		return ""
	}
	return u.ID
}
