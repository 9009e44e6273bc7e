package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterminism(t *testing.T) {
	v := Object{"op": String("eq"), "column": String("Employee.departmentId")}

	h1, err := ContentHash(DomainPredicate, v)
	require.NoError(t, err)
	h2, err := ContentHash(DomainPredicate, v)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestContentHashDomainSeparation(t *testing.T) {
	v := []string{"Employee"}

	h1, err := ContentHash(DomainPredicate, v)
	require.NoError(t, err)
	h2, err := ContentHash(DomainScope, v)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestContentHashError(t *testing.T) {
	_, err := ContentHash(DomainPredicate, 1.5)
	assert.Error(t, err)
}

func TestScopeHashOrderIndependent(t *testing.T) {
	a := ScopeHash([]string{"Employee", "Department"})
	b := ScopeHash([]string{"Department", "Employee"})
	c := ScopeHash([]string{"Department", "Employee", "Employee"})

	assert.Equal(t, a, b)
	assert.Equal(t, a, c, "duplicates do not change the hash")
	assert.NotEqual(t, a, ScopeHash([]string{"Employee"}))
}

func TestScopeHashDoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	ScopeHash(in)
	assert.Equal(t, []string{"b", "a"}, in)
}
