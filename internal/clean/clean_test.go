package clean

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"abbrev with period", "N. Charleston Ave.", "N. Charleston Avenue"},
		{"unit marker", "Northeast 82nd Avenue #D", "Northeast 82nd Avenue"},
		{"unit marker numeric", "Southwest Main Street #101", "Southwest Main Street"},
		{"unit marker alnum", "Northeast Sandy Boulevard #C113", "Northeast Sandy Boulevard"},
		{"override full address", "8202 SE Flavel St, Portland, OR 97266", "8202 SE Flavel Street"},
		{"override leading space", " Southeast Hwy 212", "Southeast Highway 212"},
		{"override duplicate", "Southeast Stark Street;SE Stark St", "Southeast Stark Street"},
		{"override sentinel", "unknown", "N/A"},
		{"override case", "gresham", "Gresham"},
		{"override wins over suffix", "Southeast Hwy 212", "Southeast Highway 212"},
		{"St", "SE Division St", "SE Division Street"},
		{"st. lowercase", "NE Glisan st.", "NE Glisan Street"},
		{"AVE upper", "SE 82ND AVE", "SE 82ND Avenue"},
		{"Rd", "Sunnyside Rd", "Sunnyside Road"},
		{"Dr.", "Kruse Way Dr.", "Kruse Way Drive"},
		{"Blvd", "Martin Luther King Jr Blvd", "Martin Luther King Jr Boulevard"},
		{"Cir", "Oak Cir", "Oak Circle"},
		{"Hwy", "Pacific Hwy", "Pacific Highway"},
		{"Pkwy", "Sunset Pkwy", "Sunset Parkway"},
		{"Pky", "Murray Pky", "Murray Parkway"},
		{"already clean", "Southeast Hawthorne Boulevard", "Southeast Hawthorne Boulevard"},
		{"unit token without hash", "Northeast 82nd Avenue E", "Northeast 82nd Avenue E"},
		{"unknown suffix", "Northwest Lovejoy Terrace", "Northwest Lovejoy Terrace"},
		{"empty", "", ""},
		{"trailing space", "SE Division St ", "SE Division St "},
		{"every occurrence", "Ave Maria Ave", "Avenue Maria Avenue"},
		{"token inside a word", "SE Stark St", "SE Streetark Street"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UpdateName(tt.in))
		})
	}
}

func TestUpdateName_Idempotent(t *testing.T) {
	inputs := []string{
		"N. Charleston Ave.",
		"Northeast 82nd Avenue #D",
		"8202 SE Flavel St, Portland, OR 97266",
		"North Missouri Ave-Michigan Ave Alley",
		"US 26 (OR)",
		"North Marine Srive",
		"unknown",
		"SE Division St",
		"Sunnyside Rd.",
		"Southeast Hawthorne Boulevard",
		"SE Stark St",
		"NE Stanton St",
		"Ave Maria Ave",
	}
	for _, in := range inputs {
		once := UpdateName(in)
		assert.Equal(t, once, UpdateName(once), "input %q", in)
	}
}

func TestUpdateZip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"97266-1234", "97266"},
		{"Portland, OR 97213", "97213"},
		{"97201", "97201"},
		{"", ""},
		{"OR 97035", "OR 97035"},
		// Hyphen rule takes precedence; the prefix rule is not reached.
		{"Portland, OR 97213-1234", "Portland, OR 97213"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, UpdateZip(tt.in))
		})
	}
}

func TestUpdateZip_Idempotent(t *testing.T) {
	for _, in := range []string{"97266-1234", "Portland, OR 97213", "97201", "9720"} {
		once := UpdateZip(in)
		assert.Equal(t, once, UpdateZip(once), "input %q", in)
	}
}

func TestUpdateStateName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"OR", "Oregon"},
		{"ORs", "Oregon"},
		{"Or", "Oregon"},
		{"or", "Oregon"},
		{"WA", "Washington"},
		{"wa", "Washington"},
		{"Wa", "Washington"},
		{"1401 N.E. 68th Avenue  Portland, OR 97213", "Oregon"},
		{"Oregon", "Oregon"},
		{"CA", "CA"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := UpdateStateName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, UpdateStateName(got))
		})
	}
}

func TestTrailingToken(t *testing.T) {
	tok, ok := TrailingToken("N. Charleston Ave.")
	require.True(t, ok)
	assert.Equal(t, "Ave.", tok)

	tok, ok = TrailingToken("Northeast 82nd Avenue #D")
	require.True(t, ok)
	assert.Equal(t, "D", tok)

	_, ok = TrailingToken("")
	assert.False(t, ok)

	_, ok = TrailingToken("Main St ")
	assert.False(t, ok)
}

func TestRulesApply(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, "SE Division Street", r.Apply(KeyStreet, "SE Division St"))
	assert.Equal(t, "97266", r.Apply(KeyPostcode, "97266-1234"))
	assert.Equal(t, "Washington", r.Apply(KeyState, "WA"))
	assert.Equal(t, "SE Division St", r.Apply("name", "SE Division St"))
}

func TestDefaultRules_ReturnsCopies(t *testing.T) {
	r := DefaultRules()
	r.States["CA"] = "California"
	assert.Equal(t, "CA", DefaultRules().State("CA"))
	assert.Equal(t, "CA", UpdateStateName("CA"))
}

func TestLoadRules_EmptyPath(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), r)
}

func TestLoadRules_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
street_overrides:
  "SW Broadway Dr;Broadway": "Southwest Broadway Drive"
street_suffixes:
  Ln: Lane
unit_suffixes: ["B"]
states:
  ID: Idaho
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, "Southwest Broadway Drive", r.Street("SW Broadway Dr;Broadway"))
	assert.Equal(t, "Foster Lane", r.Street("Foster Ln"))
	assert.Equal(t, "Main Street", r.Street("Main Street #B"))
	assert.Equal(t, "Idaho", r.State("ID"))
	// Defaults survive the merge.
	assert.Equal(t, "Oregon", r.State("OR"))
	assert.Equal(t, "Main Street", r.Street("Main St"))
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("states: [not, a, map"), 0o644))
	_, err = LoadRules(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse rules file")

	empty := filepath.Join(t.TempDir(), "empty-unit.yaml")
	require.NoError(t, os.WriteFile(empty, []byte(`unit_suffixes: [""]`), 0o644))
	_, err = LoadRules(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty unit suffix")
}
