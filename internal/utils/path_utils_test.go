package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractModuleName(t *testing.T) {
	assert.Equal(t, "lib", ExtractModuleName("lib.luna"))
	assert.Equal(t, "lib", ExtractModuleName("/scripts/lib.luna"))
	assert.Equal(t, "lib", ExtractModuleName("./nested/dir/lib.luna"))
}
