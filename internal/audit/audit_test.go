package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/osmprep/internal/clean"
)

const sample = `<osm>
 <node id="1" lat="0" lon="0">
  <tag k="addr:street" v="N. Charleston Ave."/>
  <tag k="addr:postcode" v="97266-1234"/>
  <tag k="addr:state" v="OR"/>
 </node>
 <node id="2" lat="0" lon="0">
  <tag k="addr:street" v="Northeast 82nd Avenue #D"/>
  <tag k="addr:street" v="SE Division Street"/>
  <tag k="addr:postcode" v="97201"/>
  <tag k="addr:state" v="Oregon"/>
 </node>
 <way id="3">
  <tag k="addr:street" v="Foster Ave."/>
  <tag k="addr:postcode" v="Portland, OR 97213"/>
  <tag k="addr:state" v="wa"/>
  <tag k="name" v="Something St"/>
 </way>
</osm>`

func TestRun(t *testing.T) {
	rep, err := Run(context.Background(), strings.NewReader(sample), clean.DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, []string{"Ave.", "D"}, rep.StreetTypes())
	assert.Equal(t, []Finding{
		{Value: "Foster Ave.", Cleaned: "Foster Avenue"},
		{Value: "N. Charleston Ave.", Cleaned: "N. Charleston Avenue"},
	}, rep.Streets["Ave."])
	assert.Equal(t, []Finding{
		{Value: "Northeast 82nd Avenue #D", Cleaned: "Northeast 82nd Avenue"},
	}, rep.Streets["D"])

	assert.Equal(t, []Finding{
		{Value: "97266-1234", Cleaned: "97266"},
		{Value: "Portland, OR 97213", Cleaned: "97213"},
	}, rep.Zips)

	assert.Equal(t, []Finding{
		{Value: "OR", Cleaned: "Oregon"},
		{Value: "wa", Cleaned: "Washington"},
	}, rep.States)

	for _, f := range rep.Zips {
		assert.True(t, f.Changed())
	}
}

func TestRun_Empty(t *testing.T) {
	rep, err := Run(context.Background(), strings.NewReader(`<osm/>`), clean.DefaultRules())
	require.NoError(t, err)
	assert.Empty(t, rep.Streets)
	assert.Empty(t, rep.Zips)
	assert.Empty(t, rep.States)
}

func TestRun_ReadError(t *testing.T) {
	_, err := Run(context.Background(), strings.NewReader(`<osm><node>`), clean.DefaultRules())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit: read element")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, strings.NewReader(sample), clean.DefaultRules())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit: read element")
	assert.Contains(t, err.Error(), "context canceled")
}

func TestFinding_Changed(t *testing.T) {
	assert.False(t, Finding{Value: "Oregon", Cleaned: "Oregon"}.Changed())
	assert.True(t, Finding{Value: "OR", Cleaned: "Oregon"}.Changed())
}
