package encoder

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/mcncl/gloss/internal/decoder"
	"github.com/mcncl/gloss/internal/models"
	"github.com/mcncl/gloss/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type language string

const (
	languageGo   language = "go"
	languageRust language = "rust"
)

var languages = decoder.StringEnum(languageGo, languageRust)

type owner struct {
	ID    int
	Login string
}

func decodeOwner(obj models.JSONObject) (owner, bool) {
	id, ok := decoder.Int(obj, "id")
	if !ok {
		return owner{}, false
	}
	login, ok := decoder.String(obj, "login")
	if !ok {
		return owner{}, false
	}
	return owner{ID: id, Login: login}, true
}

func (o owner) ToJSON() models.JSONObject {
	return Merge(
		Value("id", &o.ID),
		Value("login", &o.Login),
	)
}

// repo has a required ID and optional everything else.
type repo struct {
	ID          int
	Name        *string
	Private     *bool
	Stars       *int64
	Score       *float64
	Ratio       *float32
	Topics      []string
	Owner       *owner
	Forks       []owner
	Language    *language
	Languages   []language
	CreatedAt   *time.Time
	HTMLURL     *url.URL
	OwnerCity   *string
	Milestones  []time.Time
	MirrorURLs  []*url.URL
	Description *string
}

func decodeRepo(obj models.JSONObject) (repo, bool) {
	id, ok := decoder.Int(obj, "id")
	if !ok {
		return repo{}, false
	}
	r := repo{ID: id}
	if v, ok := decoder.String(obj, "name"); ok {
		r.Name = &v
	}
	if v, ok := decoder.Bool(obj, "private"); ok {
		r.Private = &v
	}
	if v, ok := decoder.Int64(obj, "stars"); ok {
		r.Stars = &v
	}
	if v, ok := decoder.Float64(obj, "score"); ok {
		r.Score = &v
	}
	if v, ok := decoder.Float32(obj, "ratio"); ok {
		r.Ratio = &v
	}
	if v, ok := decoder.Strings(obj, "topics"); ok {
		r.Topics = v
	}
	if v, ok := decoder.Model(obj, "owner", decodeOwner); ok {
		r.Owner = &v
	}
	if v, ok := decoder.Models(obj, "forks", decodeOwner); ok {
		r.Forks = v
	}
	if v, ok := decoder.EnumValue(obj, "language", languages); ok {
		r.Language = &v
	}
	if v, ok := decoder.EnumValues(obj, "languages", languages); ok {
		r.Languages = v
	}
	if v, ok := decoder.Date(obj, "created_at", decoder.ISO8601); ok {
		r.CreatedAt = &v
	}
	if v, ok := decoder.URL(obj, "html_url"); ok {
		r.HTMLURL = v
	}
	if v, ok := decoder.String(obj, "location.city"); ok {
		r.OwnerCity = &v
	}
	if v, ok := decoder.Dates(obj, "milestones", decoder.ISO8601); ok {
		r.Milestones = v
	}
	if v, ok := decoder.URLs(obj, "mirrors"); ok {
		r.MirrorURLs = v
	}
	if v, ok := decoder.String(obj, "description"); ok {
		r.Description = &v
	}
	return r, true
}

func encodeRepo(r repo) models.JSONObject {
	return Merge(
		Value("id", &r.ID),
		Value("name", r.Name),
		Value("private", r.Private),
		Value("stars", r.Stars),
		Value("score", r.Score),
		Value("ratio", r.Ratio),
		Values("topics", r.Topics),
		Model("owner", r.Owner, func(o owner) models.JSONObject { return o.ToJSON() }),
		Objects("forks", r.Forks),
		EnumValue("language", r.Language, languages),
		EnumValues("languages", r.Languages, languages),
		Date("created_at", r.CreatedAt, decoder.ISO8601),
		URL("html_url", r.HTMLURL),
		Value("location.city", r.OwnerCity),
		Dates("milestones", r.Milestones, decoder.ISO8601),
		URLs("mirrors", r.MirrorURLs),
		Value("description", r.Description),
	)
}

const fullRepoJSON = `{
	"id": 1296269,
	"name": "Hello-World",
	"private": false,
	"stars": 80,
	"score": 9.5,
	"ratio": 0.25,
	"topics": ["octocat", "api"],
	"owner": {"id": 1, "login": "octocat"},
	"forks": [{"id": 2, "login": "hubot"}, {"id": 3, "login": "monalisa"}],
	"language": "go",
	"languages": ["go", "rust"],
	"created_at": "2011-01-26T19:01:12Z",
	"html_url": "https://github.com/octocat/Hello-World",
	"location": {"city": "San Francisco"},
	"milestones": ["2011-01-26T19:01:12Z", "2012-02-27T20:02:13Z"],
	"mirrors": ["https://gitlab.com/octocat/Hello-World"]
}`

func parseObject(t *testing.T, s string) models.JSONObject {
	t.Helper()
	obj, err := parser.ParseObject([]byte(s))
	require.NoError(t, err)
	return obj
}

func TestRoundTrip(t *testing.T) {
	original, ok := decodeRepo(parseObject(t, fullRepoJSON))
	require.True(t, ok)
	require.NotNil(t, original.Owner)
	require.Len(t, original.Forks, 2)
	assert.Nil(t, original.Description, "a field missing from the source stays absent")

	encoded := encodeRepo(original)
	decoded, ok := decodeRepo(encoded)
	require.True(t, ok)
	assert.Equal(t, original, decoded)

	// The same holds after going through bytes.
	data, err := Marshal(encoded)
	require.NoError(t, err)
	fromBytes, ok := decodeRepo(parseObject(t, string(data)))
	require.True(t, ok)
	assert.Equal(t, original, fromBytes)
}

func TestRoundTripMinimal(t *testing.T) {
	original, ok := decodeRepo(parseObject(t, `{"id": 7}`))
	require.True(t, ok)

	encoded := encodeRepo(original)
	assert.Equal(t, models.JSONObject{"id": 7}, encoded)

	decoded, ok := decodeRepo(encoded)
	require.True(t, ok)
	assert.Equal(t, original, decoded)
}

func TestAbsentFieldsAreOmittedNotNull(t *testing.T) {
	var name *string
	var topics []string
	var created *time.Time
	var link *url.URL
	var lang *language
	var o *owner

	obj := Merge(
		Value("name", name),
		Values("topics", topics),
		Date("created_at", created, decoder.ISO8601),
		URL("html_url", link),
		EnumValue("language", lang, languages),
		Model("owner", o, func(o owner) models.JSONObject { return o.ToJSON() }),
	)
	assert.Empty(t, obj)

	data, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestEmptySliceEncodesAsEmptyArray(t *testing.T) {
	obj := Values("topics", []string{})
	assert.Equal(t, models.JSONObject{"topics": models.JSONArray{}}, obj)

	topics, ok := decoder.Strings(obj, "topics")
	require.True(t, ok)
	assert.Empty(t, topics)
}

func TestEncodeScalars(t *testing.T) {
	b := true
	i := 3
	f := float32(1.5)
	s := "abc"

	assert.Equal(t, models.JSONObject{"b": true}, Value("b", &b))
	assert.Equal(t, models.JSONObject{"i": 3}, Value("i", &i))
	assert.Equal(t, models.JSONObject{"f": float32(1.5)}, Value("f", &f))
	assert.Equal(t, models.JSONObject{"s": "abc"}, Value("s", &s))
	assert.Equal(t, models.JSONObject{"xs": models.JSONArray{1, 2}}, Values("xs", []int{1, 2}))
}

func TestEncodeEnum(t *testing.T) {
	lang := languageRust
	assert.Equal(t, models.JSONObject{"language": "rust"}, EnumValue("language", &lang, languages))

	unknown := language("cobol")
	assert.Empty(t, EnumValue("language", &unknown, languages))
	assert.Empty(t, EnumValues("languages", []language{languageGo, unknown}, languages))
}

func TestEncodeNilEnumIsAbsent(t *testing.T) {
	lang := languageGo
	var none *decoder.Enum[language, string]

	assert.NotPanics(t, func() {
		assert.Empty(t, EnumValue("language", &lang, none))
		assert.Empty(t, EnumValues("languages", []language{languageGo}, none))
	})
}

func TestEncodeDateUsesFormat(t *testing.T) {
	when := time.Date(2015, 8, 8, 21, 57, 13, 0, time.UTC)

	obj := Date("date", &when, decoder.ISO8601)
	assert.Equal(t, models.JSONObject{"date": "2015-08-08T21:57:13Z"}, obj)

	tokyo := time.FixedZone("JST", 9*60*60)
	custom := decoder.DateFormat{Layout: "2006/01/02 15:04", Location: tokyo}
	assert.Equal(t, models.JSONObject{"date": "2015/08/09 06:57"}, Date("date", &when, custom))
}

func TestEncodeURL(t *testing.T) {
	u, ok := decoder.ParseURL("http://github.com")
	require.True(t, ok)

	assert.Equal(t, models.JSONObject{"url": "http://github.com"}, URL("url", u))
	assert.Empty(t, URLs("urls", []*url.URL{u, nil}))
}

func TestEncodeModelsSkipsWholeArrayOnFailure(t *testing.T) {
	encode := func(o owner) models.JSONObject {
		if o.Login == "" {
			return nil
		}
		return o.ToJSON()
	}

	obj := Models("owners", []owner{{ID: 1, Login: "a"}, {ID: 2}}, encode)
	assert.Empty(t, obj)
}

func TestMergeKeyPaths(t *testing.T) {
	city := "Paris"
	zip := "75001"
	login := "octocat"

	obj := Merge(
		Value("owner.login", &login),
		Value("owner.address.city", &city),
		Value("owner.address.zip", &zip),
	)

	assert.Equal(t, models.JSONObject{
		"owner": models.JSONObject{
			"login": "octocat",
			"address": models.JSONObject{
				"city": "Paris",
				"zip":  "75001",
			},
		},
	}, obj)
}

func TestMergeDoesNotModifyFragments(t *testing.T) {
	a := models.JSONObject{"owner": models.JSONObject{"login": "a"}}
	b := models.JSONObject{"owner": models.JSONObject{"id": 1}}

	merged := Merge(a, b)

	assert.Equal(t, models.JSONObject{"owner": models.JSONObject{"login": "a", "id": 1}}, merged)
	assert.Equal(t, models.JSONObject{"owner": models.JSONObject{"login": "a"}}, a)
	assert.Equal(t, models.JSONObject{"owner": models.JSONObject{"id": 1}}, b)
}

func TestMergeLaterWins(t *testing.T) {
	merged := Merge(models.JSONObject{"a": 1}, models.JSONObject{"a": 2})
	assert.Equal(t, models.JSONObject{"a": 2}, merged)
}

func TestMarshal(t *testing.T) {
	obj := models.JSONObject{"b": "x", "a": json.Number("1"), "c": models.JSONArray{true}}

	data, err := Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":"x","c":[true]}`, string(data))

	indented, err := MarshalIndent(obj, 2)
	require.NoError(t, err)
	assert.Contains(t, string(indented), "\n  \"a\": 1")
}

func TestRekey(t *testing.T) {
	obj := models.JSONObject{
		"stargazersCount": 1,
		"owner":           models.JSONObject{"htmlUrl": "x"},
		"forks":           models.JSONArray{models.JSONObject{"fullName": "y"}},
	}

	snake := Rekey(obj, KeyStyleSnake)
	assert.Equal(t, models.JSONObject{
		"stargazers_count": 1,
		"owner":            models.JSONObject{"html_url": "x"},
		"forks":            models.JSONArray{models.JSONObject{"full_name": "y"}},
	}, snake)

	assert.Equal(t, obj, Rekey(obj, KeyStyleNone))
	assert.Contains(t, Rekey(obj, KeyStyleKebab), "stargazers-count")
	assert.Nil(t, Rekey(nil, KeyStyleSnake))
}

func TestParseKeyStyle(t *testing.T) {
	s, err := ParseKeyStyle("Lower_Camel")
	require.NoError(t, err)
	assert.Equal(t, KeyStyleLowerCamel, s)

	s, err = ParseKeyStyle("")
	require.NoError(t, err)
	assert.Equal(t, KeyStyleNone, s)

	_, err = ParseKeyStyle("shouting")
	assert.Error(t, err)
}
