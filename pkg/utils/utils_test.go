package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateEntityID(t *testing.T) {
	id := GenerateEntityID("Container")

	assert.True(t, strings.HasPrefix(id, "container-"))
	assert.Len(t, id, len("container-")+8)
	assert.NotEqual(t, id, GenerateEntityID("container"))
	assert.Len(t, GenerateEntityID(""), 8)
}

func TestGenerateRunID(t *testing.T) {
	_, err := uuid.Parse(GenerateRunID())
	assert.NoError(t, err)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 38.81, Round(38.80506, 2))
	assert.Equal(t, 111.2, Round(111.19, 1))
	assert.Equal(t, 3, MinInt(3, 5))
	assert.Equal(t, 5, MaxInt(3, 5))
}
