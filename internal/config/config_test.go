package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"onrender.com", "railway.app"}, SplitList(" onrender.com, ,railway.app "))
	assert.Nil(t, SplitList(""))
}

func TestDefaultsLegacyOrderIDsEmpty(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, cfg.LegacyOrderIDs())
	assert.Equal(t, []string{"onrender.com"}, cfg.HTTPSHosts())
}
