package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCityFromAddress(t *testing.T) {
	cases := []struct {
		address string
		city    string
	}{
		{"Seoul Gangnam-gu Teheran-ro 152", "Seoul"},
		{"  Busan   Haeundae-gu", "Busan"},
		{"Jeju", "Jeju"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.city, CityFromAddress(c.address), "address %q", c.address)
	}
}

func TestPostBeforeSave(t *testing.T) {
	post := &Post{Title: "Cafe X", Address: "Seoul Gangnam-gu", City: "Busan"}
	assert.NoError(t, post.BeforeSave(nil))
	assert.Equal(t, "Seoul", post.City)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseTags("a, b, b"))
	assert.Equal(t, []string{"night market", "street food"}, ParseTags(" night market ,street food,, "))
	assert.Empty(t, ParseTags(""))
	assert.Empty(t, ParseTags(" , ,"))
	assert.Equal(t, []string{"x"}, PostForm{Tags: "x,x"}.TagNames())
}

func TestIsFacilityCode(t *testing.T) {
	assert.True(t, IsFacilityCode("wifi"))
	assert.False(t, IsFacilityCode("helipad"))
	assert.False(t, IsFacilityCode(""))
}

func TestPostFormNormalize(t *testing.T) {
	form := PostForm{Title: "  Cafe X ", Address: "\tSeoul Gangnam-gu ", Tags: " a, b ", Facilities: []string{" wifi"}}
	form.Normalize()

	assert.Equal(t, "Cafe X", form.Title)
	assert.Equal(t, "Seoul Gangnam-gu", form.Address)
	assert.Equal(t, "a, b", form.Tags)
	assert.Equal(t, []string{"wifi"}, form.Facilities)
}
