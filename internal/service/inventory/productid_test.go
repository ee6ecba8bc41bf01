package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProductID_Format(t *testing.T) {
	for i := 0; i < 500; i++ {
		id := GenerateProductID()
		assert.Regexp(t, ProductIDPattern, id)
	}
}
