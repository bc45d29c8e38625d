package connector

import "encoding/json"

// Wire types for the subset of the Notion REST API used by the connector.

type apiList[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

type apiAnnotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

type apiRichText struct {
	Type        string         `json:"type"`
	PlainText   string         `json:"plain_text"`
	Href        *string        `json:"href"`
	Annotations apiAnnotations `json:"annotations"`
	Text        *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
	Mention *struct {
		Type string `json:"type"`
	} `json:"mention,omitempty"`
	Equation *struct {
		Expression string `json:"expression"`
	} `json:"equation,omitempty"`
}

type apiExternal struct {
	URL string `json:"url"`
}

type apiHostedFile struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time"`
}

// apiFile is a file object. Either External or File is set depending on Type.
type apiFile struct {
	Type     string         `json:"type"`
	Name     string         `json:"name,omitempty"`
	External *apiExternal   `json:"external,omitempty"`
	File     *apiHostedFile `json:"file,omitempty"`
}

func (f *apiFile) url() string {
	switch {
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

type apiIcon struct {
	Type     string         `json:"type"`
	Emoji    string         `json:"emoji,omitempty"`
	External *apiExternal   `json:"external,omitempty"`
	File     *apiHostedFile `json:"file,omitempty"`
}

type apiUser struct {
	Object    string  `json:"object"`
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type apiParent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

type apiSelectOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiDate struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone"`
}

type apiFormula struct {
	Type    string   `json:"type"`
	String  *string  `json:"string"`
	Number  *float64 `json:"number"`
	Boolean *bool    `json:"boolean"`
	Date    *apiDate `json:"date"`
}

type apiPropertyValue struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Number         *float64          `json:"number"`
	URL            *string           `json:"url"`
	Select         *apiSelectOption  `json:"select"`
	MultiSelect    []apiSelectOption `json:"multi_select"`
	Status         *apiSelectOption  `json:"status"`
	Date           *apiDate          `json:"date"`
	Email          *string           `json:"email"`
	PhoneNumber    *string           `json:"phone_number"`
	Checkbox       bool              `json:"checkbox"`
	Files          []apiFile         `json:"files"`
	CreatedBy      *apiUser          `json:"created_by"`
	CreatedTime    string            `json:"created_time"`
	LastEditedBy   *apiUser          `json:"last_edited_by"`
	LastEditedTime string            `json:"last_edited_time"`
	Formula        *apiFormula       `json:"formula"`
	UniqueID       *struct {
		Prefix *string  `json:"prefix"`
		Number *float64 `json:"number"`
	} `json:"unique_id"`
	Verification *struct {
		State string `json:"state"`
	} `json:"verification"`
	Title    []apiRichText `json:"title"`
	RichText []apiRichText `json:"rich_text"`
	People   []apiUser     `json:"people"`
	Relation []struct {
		ID string `json:"id"`
	} `json:"relation"`
}

type apiPage struct {
	Object         string                      `json:"object"`
	ID             string                      `json:"id"`
	URL            string                      `json:"url"`
	CreatedTime    string                      `json:"created_time"`
	LastEditedTime string                      `json:"last_edited_time"`
	Parent         apiParent                   `json:"parent"`
	Cover          *apiFile                    `json:"cover"`
	Icon           *apiIcon                    `json:"icon"`
	Properties     map[string]apiPropertyValue `json:"properties"`
}

type apiOptions struct {
	Options []apiSelectOption `json:"options"`
}

type apiDatabaseProperty struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Select      *apiOptions `json:"select,omitempty"`
	MultiSelect *apiOptions `json:"multi_select,omitempty"`
	Status      *apiOptions `json:"status,omitempty"`
}

type apiDatabase struct {
	Object         string                         `json:"object"`
	ID             string                         `json:"id"`
	URL            string                         `json:"url"`
	Title          []apiRichText                  `json:"title"`
	CreatedTime    string                         `json:"created_time"`
	LastEditedTime string                         `json:"last_edited_time"`
	Cover          *apiFile                       `json:"cover"`
	Icon           *apiIcon                       `json:"icon"`
	Properties     map[string]apiDatabaseProperty `json:"properties"`
}

// apiBlock is a block object. The type-specific payload lives under a key
// named after the block type, so it is captured raw and decoded on demand.
type apiBlock struct {
	Object      string          `json:"object"`
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	HasChildren bool            `json:"has_children"`
	Payload     json.RawMessage `json:"-"`
}

func (b *apiBlock) UnmarshalJSON(data []byte) error {
	type plain apiBlock
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	p.Payload = fields[p.Type]

	*b = apiBlock(p)
	return nil
}

// apiBlockPayload is the union of every block payload field the connector
// reads. Media blocks embed a file object, so its fields appear here too.
type apiBlockPayload struct {
	RichText     []apiRichText `json:"rich_text"`
	Color        string        `json:"color"`
	IsToggleable bool          `json:"is_toggleable"`
	Checked      bool          `json:"checked"`
	SyncedFrom   *struct {
		BlockID string `json:"block_id"`
	} `json:"synced_from"`
	Title           string          `json:"title"`
	Expression      string          `json:"expression"`
	Language        string          `json:"language"`
	Caption         []apiRichText   `json:"caption"`
	Icon            *apiIcon        `json:"icon"`
	Type            string          `json:"type"`
	PageID          string          `json:"page_id"`
	DatabaseID      string          `json:"database_id"`
	CommentID       string          `json:"comment_id"`
	HasColumnHeader bool            `json:"has_column_header"`
	HasRowHeader    bool            `json:"has_row_header"`
	TableWidth      int             `json:"table_width"`
	Cells           [][]apiRichText `json:"cells"`
	URL             string          `json:"url"`
	Name            string          `json:"name"`
	External        *apiExternal    `json:"external"`
	File            *apiHostedFile  `json:"file"`
}

func (p *apiBlockPayload) file() *apiFile {
	return &apiFile{Type: p.Type, Name: p.Name, External: p.External, File: p.File}
}

type apiSearchFilter struct {
	Value    string `json:"value"`
	Property string `json:"property"`
}

type apiSearchRequest struct {
	Filter apiSearchFilter `json:"filter"`
}

type apiQueryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}
