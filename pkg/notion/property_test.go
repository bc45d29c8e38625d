package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyUnmarshalJSON(t *testing.T) {
	data := []byte(`[
		{"type":"number","notionId":"a","name":"Count","value":3},
		{"type":"select","notionId":"b","name":"Stage","value":null},
		{"type":"multiSelect","notionId":"c","name":"Tags","value":["go","notion"]},
		{"type":"dateFormula","notionId":"d","name":"Due","value":{"start":"2024-01-02"}},
		{"type":"checkbox","notionId":"e","name":"Done","value":true},
		{"type":"people","notionId":"f","name":"Owner","value":[{"notionId":"u1","name":"Ada","isBot":false}]},
		{"type":"title","notionId":"title","name":"Name","value":[{"type":"text","text":"Hello","annotations":{"bold":false,"italic":false,"strikethrough":false,"underline":false,"code":false}}]},
		{"type":"rollup","notionId":"g","name":"Sum"},
		{"type":"uniqueId","notionId":"h","name":"ID","value":{"prefix":"DOC","number":7}}
	]`)

	var props []Property
	require.NoError(t, json.Unmarshal(data, &props))
	require.Len(t, props, 9)

	n, ok := props[0].Value.(*float64)
	require.True(t, ok)
	assert.Equal(t, 3.0, *n)

	s, ok := props[1].Value.(*string)
	require.True(t, ok)
	assert.Nil(t, s)

	assert.Equal(t, []string{"go", "notion"}, props[2].Value)

	d, ok := props[3].Value.(*Date)
	require.True(t, ok)
	assert.Equal(t, "2024-01-02", d.Start)

	assert.Equal(t, true, props[4].Value)

	people, ok := props[5].Value.([]Person)
	require.True(t, ok)
	require.Len(t, people, 1)
	assert.Equal(t, "Ada", people[0].Name)

	title, ok := props[6].Value.(RichText)
	require.True(t, ok)
	assert.Equal(t, "Hello", title.PlainText())

	assert.Nil(t, props[7].Value)

	uid, ok := props[8].Value.(UniqueID)
	require.True(t, ok)
	require.NotNil(t, uid.Prefix)
	assert.Equal(t, "DOC", *uid.Prefix)
}

func TestPropertyUnmarshalJSONUnknownType(t *testing.T) {
	var p Property
	err := json.Unmarshal([]byte(`{"type":"hologram","name":"x"}`), &p)
	assert.Error(t, err)
}
