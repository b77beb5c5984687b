package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildModule(t *testing.T) {
	m, err := BuildModule("Pair", func(m *ModuleBuilder) map[string]*ContractFuture {
		c := m.Contract("Computations")
		v := m.Contract("Voting", "arg")
		return map[string]*ContractFuture{"computations": c, "voting": v}
	})
	require.NoError(t, err)

	require.Len(t, m.Futures, 2)
	assert.Equal(t, "Pair#Computations", m.Futures[0].ID)
	assert.Equal(t, "Pair#Voting", m.Futures[1].ID)
	assert.Equal(t, []any{"arg"}, m.Futures[1].Args)
	assert.Equal(t, []string{"computations", "voting"}, m.ResultKeys())
}

func TestBuildModuleErrors(t *testing.T) {
	_, err := BuildModule("", func(*ModuleBuilder) map[string]*ContractFuture { return nil })
	assert.Error(t, err)

	_, err = BuildModule("Dup", func(m *ModuleBuilder) map[string]*ContractFuture {
		m.Contract("Computations")
		m.Contract("Computations")
		return nil
	})
	assert.ErrorContains(t, err, "duplicate future id")

	_, err = BuildModule("Foreign", func(m *ModuleBuilder) map[string]*ContractFuture {
		return map[string]*ContractFuture{"x": {ID: "Other#Computations"}}
	})
	assert.ErrorContains(t, err, "not a future of this module")

	assert.Panics(t, func() {
		MustBuildModule("", func(*ModuleBuilder) map[string]*ContractFuture { return nil })
	})
}
