package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"Alice@Example.com":   "a…@e….com",
		"a@b.io":              "a@b.io",
		"abc":                 "***",
		"nobody":              "n…y",
		"bob@mail.example.cn": "b…@m….example.cn",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/survey?sslmode=disable",
		MaskDSN("postgres://app:s3cret@db:5432/survey?sslmode=disable"))
	assert.Equal(t, "mongodb://db:27017", MaskDSN("mongodb://db:27017"))
	assert.Equal(t, "file:smart-survey.db?_foreign_keys=on", MaskDSN("file:smart-survey.db?_foreign_keys=on"))
}
