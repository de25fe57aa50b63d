package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/meta-ads-etl/internal/domain"
)

func TestFieldsCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"fields", "account"})

	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1+len(domain.Account.Fields()))
	assert.Equal(t, "account (_accounts):", lines[0])
	assert.Equal(t, "account_id", strings.TrimSpace(lines[1]))
	assert.Equal(t, "timezone_name", strings.TrimSpace(lines[len(lines)-1]))
}

func TestFieldsCmd_AllEntities(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"fields"})

	require.NoError(t, root.Execute())
	for _, entity := range domain.Entities() {
		assert.Contains(t, out.String(), entity.String()+" (_"+entity.TableSuffix()+"):")
	}
}

func TestFieldsCmd_UnknownEntity(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"fields", "creatives"})

	assert.Error(t, root.Execute())
}

func TestRunCmd_UnknownEntity(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "--entities", "account,pixels"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixels")
}
