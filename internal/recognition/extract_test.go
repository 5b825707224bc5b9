package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
)

func mustParse(t *testing.T, body string) *Record {
	t.Helper()
	resp, err := Parse([]byte(body))
	require.NoError(t, err)
	rec := resp.First()
	require.NotNil(t, rec)
	return rec
}

func TestExtractPrefersNamedObject(t *testing.T) {
	rec := mustParse(t, `{"records":[{"_objects":[
		{"name":"Slab Label","_identification":{"best_match":{"name":"Label"}}},
		{"name":"Card","_tags":{"Grade":[{"name":"10"}],"Company":[{"name":"PSA"}],"Subcategory":[{"name":"Baseball"}]},
		 "_identification":{"best_match":{"name":"Best"},"alternatives":[{"name":"Alt 1"},{"name":"Alt 2"}]}}
	]}]}`)

	ext := Extract(rec, nil)
	require.Len(t, ext.Candidates, 3)
	assert.Equal(t, "Best", ext.Candidates[0].Name)
	assert.Equal(t, "Alt 1", ext.Candidates[1].Name)
	assert.Equal(t, "Alt 2", ext.Candidates[2].Name)
	assert.Equal(t, &domain.ClassificationTags{Grade: "10", GradeCompany: "PSA", Subcategory: "Baseball"}, ext.Tags)
	assert.Equal(t, "Card", ext.Object.Name)
}

func TestExtractFallsBackToIdentifiedObject(t *testing.T) {
	rec := mustParse(t, `{"records":[{"_objects":[
		{"name":"Hand"},
		{"name":"Thing","_identification":{"alternatives":[{"name":"Only Alt"}]}}
	]}]}`)

	ext := Extract(rec, nil)
	require.Len(t, ext.Candidates, 1)
	assert.Equal(t, "Only Alt", ext.Candidates[0].Name)
	assert.Nil(t, ext.Tags)
}

func TestExtractNoObjectIsEmpty(t *testing.T) {
	rec := mustParse(t, `{"records":[{"_objects":[{"name":"Hand"}]}]}`)
	assert.True(t, Extract(rec, nil).Empty())
	assert.True(t, Extract(nil, nil).Empty())
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected Category
	}{
		{
			name:     "comics by object name",
			body:     `{"records":[{"_objects":[{"name":"Comics","_tags":{"Subcategory":[{"name":"Marvel"}]}}]}]}`,
			expected: Category{Kind: KindComics, Subcategory: "Marvel"},
		},
		{
			name:     "card with game tag",
			body:     `{"records":[{"_objects":[{"name":"Card","_tags":{"Category":[{"name":"Card/Trading Card Game"}],"Subcategory":[{"name":"Pokemon"}]}}]}]}`,
			expected: Category{Kind: KindCard, Subcategory: "Pokemon"},
		},
		{
			name:     "kind from top category tag",
			body:     `{"records":[{"_objects":[{"name":"Object","_tags":{"Top Category":[{"name":"Comics"}]}}]}]}`,
			expected: Category{Kind: KindComics, Subcategory: "Comics"},
		},
		{
			name:     "subcategory from sport tag",
			body:     `{"records":[{"_objects":[{"name":"Card","_tags":{"Sport":[{"name":"Basketball"}]}}]}]}`,
			expected: Category{Kind: KindCard, Subcategory: "Basketball"},
		},
		{
			name:     "category tag wins over sport",
			body:     `{"records":[{"_objects":[{"name":"Card","_tags":{"Sport":[{"name":"Basketball"}],"Category":[{"name":"Card/Sport Card"}]}}]}]}`,
			expected: Category{Kind: KindCard, Subcategory: "Card/Sport Card"},
		},
		{
			name:     "nothing detected",
			body:     `{"records":[{"_objects":[]}]}`,
			expected: Category{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(mustParse(t, tt.body), nil))
		})
	}
}

func TestCountObjects(t *testing.T) {
	rec := mustParse(t, `{"records":[{"_objects":[{"name":"Card"},{"name":"card"},{"name":"Hand"}]}]}`)
	assert.Equal(t, 2, CountObjects(rec, nil))
	assert.Equal(t, 1, CountObjects(rec, []string{"hand"}))
	assert.Zero(t, CountObjects(nil, nil))
}

func TestFirstOCR(t *testing.T) {
	rec := mustParse(t, `{"records":[{"_objects":[{"name":"Card","_identification":{"alternatives":[{"name":"First"},{"name":"Second"}]}}]}]}`)
	match, _ := FirstOCR(rec, nil)
	require.NotNil(t, match)
	assert.Equal(t, "First", match.Name)

	empty := mustParse(t, `{"records":[{"_objects":[{"name":"Card"}]}]}`)
	match, tags := FirstOCR(empty, nil)
	assert.Nil(t, match)
	assert.Nil(t, tags)
}

func TestKeywords(t *testing.T) {
	rec := mustParse(t, `{"records":[{"_ocr":"Mike Trout 2011","_objects":[{"name":"Card","text":"Topps Update",
		"_identification":{"best_match":{"name":"Mike Trout"}}}]}]}`)
	assert.Equal(t, []string{"mike", "trout", "2011", "topps", "update"}, Keywords(rec))
	assert.Nil(t, Keywords(nil))
}
