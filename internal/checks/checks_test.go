package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas-checks/internal/atlas"
	"atlas-checks/internal/config"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/geo"
)

type edgeRule struct {
	base  *BaseCheck
	panic bool
}

func (r *edgeRule) ValidCheckForObject(e atlas.Entity) bool { return e.Type() == atlas.ItemEdge }

func (r *edgeRule) Flag(e atlas.Entity) (*flag.CheckFlag, bool) {
	if r.panic {
		panic("boom")
	}
	return r.base.CreateFlagFor(e, r.base.LocalizedInstruction(0, e.OsmIdentifier())), true
}

func newEdgeCheck(t *testing.T, yaml string) (*BaseCheck, *edgeRule) {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	rule := &edgeRule{}
	rule.base = NewBaseCheck("TestCheck", cfg, rule, "Way {0,number,#} needs review.")
	return rule.base, rule
}

func testAtlas(t *testing.T) *atlas.Atlas {
	t.Helper()
	a, err := atlas.NewBuilder("test").
		AddNode(1000000, geo.NewLocation(0, 0), atlas.Tags{"iso_country_code": "USA"}).
		AddNode(2000000, geo.NewLocation(0, 0.001), atlas.Tags{"iso_country_code": "USA"}).
		AddEdge(5000001, 1000000, 2000000, nil, atlas.Tags{"highway": "primary", "iso_country_code": "USA"}).
		AddEdge(6000001, 2000000, 1000000, nil, atlas.Tags{"highway": "primary", "man_made": "pier"}).
		Build()
	require.NoError(t, err)
	return a
}

func TestBaseCheckFlags(t *testing.T) {
	base, _ := newEdgeCheck(t, "")
	a := testAtlas(t)

	flags := base.Flags(a)
	require.Len(t, flags, 1)
	assert.Equal(t, "5000001", flags[0].Identifier)
	assert.Equal(t, "TestCheck", flags[0].ChallengeName)
	assert.Equal(t, []string{"Way 5 needs review."}, flags[0].Instructions())
}

func TestBaseCheckAcceptPiersAndFilter(t *testing.T) {
	base, _ := newEdgeCheck(t, "TestCheck:\n  accept.piers: true\n  tags.filter: man_made->pier\n")
	flags := base.Flags(testAtlas(t))
	require.Len(t, flags, 1)
	assert.Equal(t, "6000001", flags[0].Identifier)
}

func TestBaseCheckRecoversPanic(t *testing.T) {
	base, rule := newEdgeCheck(t, "")
	rule.panic = true
	assert.NotPanics(t, func() {
		assert.Empty(t, base.Flags(testAtlas(t)))
	})
}

func TestValidCheckForCountry(t *testing.T) {
	base, _ := newEdgeCheck(t, "TestCheck.countries.blacklist: [fra]\n")
	assert.True(t, base.ValidCheckForCountry("USA"))
	assert.False(t, base.ValidCheckForCountry("FRA"))

	base, _ = newEdgeCheck(t, "TestCheck.countries.whitelist: DEU\nTestCheck.countries.blacklist: DEU\n")
	assert.True(t, base.ValidCheckForCountry("deu"))
	assert.False(t, base.ValidCheckForCountry("USA"))
}

func TestLocalizedInstruction(t *testing.T) {
	base, _ := newEdgeCheck(t, `
TestCheck:
  locale: fr
  flags:
    en: ["English {0}"]
    fr: ["Français {0}"]
`)
	assert.Equal(t, "Français 7", base.LocalizedInstruction(0, 7))
	assert.Equal(t, "", base.LocalizedInstruction(1, int64(3)))

	base, _ = newEdgeCheck(t, "TestCheck.locale: de\nTestCheck.flags:\n  en: [\"English {0}\"]\n")
	assert.Equal(t, "English x", base.LocalizedInstruction(0, "x"))
}

func TestFlaggedSet(t *testing.T) {
	base, _ := newEdgeCheck(t, "")
	assert.False(t, base.IsFlagged(5))
	base.MarkAsFlagged(5, 6)
	assert.True(t, base.IsFlagged(6))
	assert.Equal(t, 2, base.FlaggedCount())
	base.Clear()
	assert.False(t, base.IsFlagged(5))
}

func TestChallengeFromConfig(t *testing.T) {
	base, _ := newEdgeCheck(t, `
TestCheck:
  challenge:
    description: Roads to review
    difficulty: normal
    defaultPriority: low
    highPriorityRule: '{"condition":"OR","rules":["highway=motorway"]}'
`)
	c := base.Challenge()
	assert.Equal(t, "TestCheck", c.Name)
	assert.Equal(t, "Roads to review", c.Description)
	assert.Equal(t, 2, c.Difficulty.Value())
	assert.Equal(t, 2, c.DefaultPriority.Value())
	rules := c.HighPriorityRule["rules"].([]any)
	require.Len(t, rules, 1)
	assert.Equal(t, "highway.motorway", rules[0].(map[string]any)["value"])

	empty, _ := newEdgeCheck(t, "")
	assert.Equal(t, 1, empty.Challenge().Difficulty.Value())
	assert.Equal(t, -1, empty.Challenge().DefaultPriority.Value())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		template string
		args     []any
		want     string
	}{
		{"no args {0}", nil, "no args {0}"},
		{"Way {0,number,#} is floating", []any{int64(123456789)}, "Way 123456789 is floating"},
		{"{0} and {1}", []any{"a", 2.5}, "a and 2.5"},
		{"{0,number,#.##} m", []any{12.3456}, "12.35 m"},
		{"{0,number,#.##} m", []any{12.0}, "12 m"},
		{"{0,number,0.00}", []any{1.5}, "1.50"},
		{"{0,number,#}", []any{2.6}, "3"},
		{"ids {0}", []any{[]int64{1, 2}}, "ids [1, 2]"},
		{"tiny {0}", []any{0.0001}, "tiny 0"},
		{"big {0}", []any{12345678.0}, "big 12345678"},
		{"missing {3}", []any{1}, "missing {3}"},
		{"open {0", []any{1}, "open {0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.template, tt.args...), tt.template)
	}
}

func TestTaggableFilter(t *testing.T) {
	f, err := ParseTaggableFilter("highway->motorway,trunk|name->*&oneway->!yes")
	require.NoError(t, err)

	assert.True(t, f.Test(atlas.Tags{"highway": "trunk"}))
	assert.False(t, f.Test(atlas.Tags{"highway": "primary"}))
	assert.True(t, f.Test(atlas.Tags{"name": "Main"}))
	assert.False(t, f.Test(atlas.Tags{"name": "Main", "oneway": "yes"}))

	absent := MustFilter("bridge->!")
	assert.True(t, absent.Test(atlas.Tags{}))
	assert.False(t, absent.Test(atlas.Tags{"bridge": "yes"}))

	assert.True(t, MatchAll().Test(nil))

	_, err = ParseTaggableFilter("highway")
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = ParseTaggableFilter("highway->")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestRegistry(t *testing.T) {
	Register("ZzRegistryTestCheck", func(cfg *config.Configuration) Check {
		base, _ := newEdgeCheck(t, "")
		return base
	})
	assert.Contains(t, Names(), "ZzRegistryTestCheck")
	assert.Panics(t, func() { Register("ZzRegistryTestCheck", nil) })

	c, err := New("ZzRegistryTestCheck", nil)
	require.NoError(t, err)
	assert.Equal(t, "TestCheck", c.Name())

	_, err = New("NoSuchCheck", nil)
	assert.ErrorIs(t, err, ErrUnknownCheck)

	disabled := config.FromMap(map[string]any{"ZzRegistryTestCheck.enabled": false})
	for _, c := range All(disabled) {
		assert.NotEqual(t, "TestCheck", c.Name())
	}
}
