package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFromDistance(t *testing.T) {
	assert.InDelta(t, 1.0, scoreFromDistance(0), 1e-6, "identical vectors")
	assert.InDelta(t, 0.0, scoreFromDistance(1), 1e-6, "orthogonal vectors")
	assert.Less(t, scoreFromDistance(0.9), scoreFromDistance(0.1), "closer means higher score")
}
