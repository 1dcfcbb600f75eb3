package notion

import "strings"

// PropertyType is the type tag carried by every Notion property
type PropertyType string

const (
	TypeTitle       PropertyType = "title"
	TypeRichText    PropertyType = "rich_text"
	TypeCheckbox    PropertyType = "checkbox"
	TypeNumber      PropertyType = "number"
	TypeSelect      PropertyType = "select"
	TypeMultiSelect PropertyType = "multi_select"
	TypeDate        PropertyType = "date"
	TypeCreatedTime PropertyType = "created_time"
	TypeFormula     PropertyType = "formula"
	TypeURL         PropertyType = "url"
)

// Page is one record of a database
type Page struct {
	ID          string              `json:"id"`
	URL         string              `json:"url"`
	CreatedTime string              `json:"created_time"`
	Properties  map[string]Property `json:"properties"`
}

// Property is a typed property value. Only the field matching Type is populated;
// unknown types decode with every field empty.
type Property struct {
	ID          string         `json:"id,omitempty"`
	Type        PropertyType   `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Checkbox    bool           `json:"checkbox,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	CreatedTime string         `json:"created_time,omitempty"`
	Formula     *FormulaValue  `json:"formula,omitempty"`
	URL         *string        `json:"url,omitempty"`
}

// RichText is a single text run
type RichText struct {
	PlainText string `json:"plain_text"`
}

// SelectOption is a select or multi-select label
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is the payload of a date property
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// FormulaValue is the computed result of a formula property
type FormulaValue struct {
	Type    string   `json:"type"`
	Number  *float64 `json:"number,omitempty"`
	String  *string  `json:"string,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
}

// Extract returns the plain value of the named property. Missing properties and
// unrecognized types yield Null.
func Extract(page Page, name string) Value {
	prop, ok := page.Properties[name]
	if !ok {
		return Null()
	}
	return prop.Value()
}

// Value flattens the property according to its type tag
func (p Property) Value() Value {
	switch p.Type {
	case TypeTitle:
		return String(joinText(p.Title))
	case TypeRichText:
		return String(joinText(p.RichText))
	case TypeCheckbox:
		return Bool(p.Checkbox)
	case TypeNumber:
		if p.Number == nil {
			return Null()
		}
		return Number(*p.Number)
	case TypeSelect:
		if p.Select == nil {
			return Null()
		}
		return String(p.Select.Name)
	case TypeMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return List(names)
	case TypeDate:
		if p.Date == nil {
			return Null()
		}
		return String(p.Date.Start)
	case TypeCreatedTime:
		return String(p.CreatedTime)
	case TypeFormula:
		if p.Formula == nil {
			return Null()
		}
		if p.Formula.Number != nil {
			return Number(*p.Formula.Number)
		}
		if p.Formula.String != nil {
			return String(*p.Formula.String)
		}
		return Null()
	case TypeURL:
		if p.URL == nil {
			return Null()
		}
		return String(*p.URL)
	default:
		return Null()
	}
}

func joinText(runs []RichText) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.PlainText)
	}
	return sb.String()
}
