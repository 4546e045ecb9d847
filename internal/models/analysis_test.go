package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelRank(t *testing.T) {
	cases := []struct {
		level string
		rank  int
	}{
		{"básico", 1},
		{"basico", 1},
		{"BÁSICO", 1},
		{"intermediário", 2},
		{"intermediario", 2},
		{"avançado", 3},
		{"avancado", 3},
		{"domina", 4},
		{"  domina  ", 4},
	}
	for _, tc := range cases {
		rank, ok := LevelRank(tc.level)
		assert.True(t, ok, tc.level)
		assert.Equal(t, tc.rank, rank, tc.level)
	}
}

func TestLevelRankRejectsUnknownLevels(t *testing.T) {
	for _, level := range []string{"", "expert", "nível 3", "básico demais"} {
		_, ok := LevelRank(level)
		assert.False(t, ok, level)
	}
}
