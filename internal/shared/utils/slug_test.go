package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Morning Prayer", want: "morning-prayer"},
		{input: "Lòng Thương Xót", want: "long-thuong-xot"},
		{input: "Đà Nẵng", want: "da-nang"},
		{input: "Hello, World!", want: "hello-world"},
		{input: "  --Morning   Prayer--  ", want: "morning-prayer"},
		{input: "C++ & Go", want: "c-go"},
		{input: "Psalm 23", want: "psalm-23"},
		{input: "!!!", want: ""},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.input))
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	assert.Equal(t, "Creme brulee", RemoveDiacritics("Crème brûlée"))
	assert.Equal(t, "Nguyen Nhat Anh", RemoveDiacritics("Nguyễn Nhật Ánh"))
	assert.Equal(t, "dod Lodz", RemoveDiacritics("đøđ Łódź"))
}

func TestTruncateSlug(t *testing.T) {
	tests := []struct {
		name   string
		slug   string
		maxLen int
		want   string
	}{
		{name: "fits", slug: "short", maxLen: 10, want: "short"},
		{name: "cut on boundary", slug: "morning-prayer-for-rain", maxLen: 14, want: "morning-prayer"},
		{name: "backs off to segment", slug: "morning-prayer-for-rain", maxLen: 12, want: "morning"},
		{name: "single long segment", slug: "supercalifragilistic", maxLen: 8, want: "supercal"},
		{name: "zero", slug: "abc", maxLen: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateSlug(tt.slug, tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), max(tt.maxLen, 0))
		})
	}
}
