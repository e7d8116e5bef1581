package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ektagames/internal/domain"
)

func TestEmailAndPassword(t *testing.T) {
	_, ok := Email(" ada@example.com ")
	assert.True(t, ok)
	_, ok = Email("not-an-email")
	assert.False(t, ok)

	assert.False(t, Password("12345"))
	assert.True(t, Password("123456"))
}

func TestProductIDAndQty(t *testing.T) {
	id, ok := ProductID("204")
	require.True(t, ok)
	assert.Equal(t, 204, id)
	_, ok = ProductID("-1")
	assert.False(t, ok)
	_, ok = ProductID("abc")
	assert.False(t, ok)

	assert.Equal(t, 1, ClampQty(0))
	assert.Equal(t, 50, ClampQty(999))
	assert.Equal(t, 3, ClampQty(3))
}

func TestQRejectsMarkup(t *testing.T) {
	_, ok := Q("<script>")
	assert.False(t, ok)
	_, ok = Q("tab\there")
	assert.False(t, ok)
	q, ok := Q("  space odyssey ")
	assert.True(t, ok)
	assert.Equal(t, "space odyssey", q)
}

func TestQAcceptsTitleText(t *testing.T) {
	for _, in := range []string{"Gold & Silver", "Backpack, Fits", "6 Gb/s", "Café", "Mens Cotton Jacket (Slim)"} {
		q, ok := Q(in)
		assert.True(t, ok, in)
		assert.Equal(t, in, q)
	}
}

func TestQCapsRunesNotBytes(t *testing.T) {
	in := strings.Repeat("é", 60)
	q, ok := Q(in)
	require.True(t, ok)
	assert.Equal(t, 50, utf8.RuneCountInString(q))
}

func TestStruct_ShippingAddress(t *testing.T) {
	assert.Nil(t, Struct(domain.ShippingAddress{
		Name: "Ada", Address: "1 Loop Rd", City: "Paris", PostalCode: "75001", Country: "FR",
	}))

	errs := Struct(domain.ShippingAddress{Name: "A", Address: "", City: "Paris", PostalCode: "123", Country: "FR"})
	require.Len(t, errs, 3)
	assert.Equal(t, "must be at least 2 characters", errs["name"])
	assert.Equal(t, "is required", errs["address"])
	assert.Equal(t, "must be at least 4 characters", errs["postalCode"])
}
