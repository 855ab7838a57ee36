package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_PreservesOrder(t *testing.T) {
	ds, err := NewExtractor("").Extract(fixtureOf(
		"// CHECK-macosx: m1",
		"// CHECK-ios: i1",
		"// CHECK-macosx-NOT: m2",
		"// CHECK-ios-NOT: i2",
		"// CHECK-macosx: m3",
	))
	require.NoError(t, err)

	mac := Select(ds, "macosx")
	require.Len(t, mac, 3)
	assert.Equal(t, "m1", mac[0].Pattern.Text)
	assert.Equal(t, "m2", mac[1].Pattern.Text)
	assert.Equal(t, "m3", mac[2].Pattern.Text)

	ios := Select(ds, "ios")
	require.Len(t, ios, 2)
	assert.Equal(t, "i1", ios[0].Pattern.Text)
	assert.Equal(t, "i2", ios[1].Pattern.Text)
}

func TestSelect_UnknownVariantIsEmpty(t *testing.T) {
	ds, err := NewExtractor("").Extract(fixtureOf("// CHECK-ios: x"))
	require.NoError(t, err)

	got := Select(ds, "linux")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVariants(t *testing.T) {
	ds, err := NewExtractor("").Extract(fixtureOf(
		"// CHECK-ios-NOT: a",
		"// CHECK-macosx: b",
		"// CHECK-ios: c",
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"ios", "macosx"}, Variants(ds))
}

func TestCount(t *testing.T) {
	ds, err := NewExtractor("").Extract(fixtureOf(
		"// CHECK-ios-NOT: a",
		"// CHECK-ios: b",
		"// CHECK-ios: c",
	))
	require.NoError(t, err)
	match, not := Count(ds)
	assert.Equal(t, 2, match)
	assert.Equal(t, 1, not)
}
