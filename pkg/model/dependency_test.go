package model

import (
	"testing"

	"github.com/oneconcern/depot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDependency(t *testing.T) {
	dep, err := ParseDependency("test/product-internal/2,name=test,path=test,internal")
	require.NoError(t, err)
	assert.Equal(t, "test/product-internal/2", dep.VersionID)
	assert.Equal(t, "test", dep.Name)
	assert.Equal(t, "test", dep.Path)
	assert.True(t, dep.Internal)
	assert.Equal(t, "test/product-internal/2,name=test,path=test,internal", dep.String())

	dep, err = ParseDependency("test/comp/13")
	require.NoError(t, err)
	assert.Equal(t, Dependency{VersionID: "test/comp/13"}, dep)
}

func TestParseDependencyMalformed(t *testing.T) {
	for _, definition := range []string{
		"",
		",name=x",
		"test/comp/13,color=blue",
		"test/comp/13,name=",
		"test/comp/13,internal=true",
	} {
		_, err := ParseDependency(definition)
		require.Errorf(t, err, "expected %q to be malformed", definition)
		assert.True(t, errors.Is(err, ErrMalformedDependency))
	}
}

func TestAddDependencyOperation(t *testing.T) {
	m := NewMetadata("test/product/1")
	_, err := m.AddDependency("test/comp/13,name=dep-comp,path=comp")
	require.NoError(t, err)
	ref, err := m.AddDependency("test/product-internal/2,name=test,path=test,internal")
	require.NoError(t, err)
	assert.Equal(t, DependencyRef(1), ref)

	require.NoError(t, m.AddDependencyOperation(ref, Copy("dep-txt/", "*.txt")))
	assert.Empty(t, m.Dependencies[0].Operations)
	require.Len(t, m.Dependencies[1].Operations, 1)
	assert.Equal(t, "cp *.txt dep-txt/", m.Dependencies[1].Operations[0].String())

	err = m.AddDependencyOperation(DependencyRef(5), Remove("x"))
	assert.True(t, errors.Is(err, ErrValidation))
	err = m.AddDependencyOperation(DependencyRef(-1), Remove("x"))
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = m.AddDependency("bad,flag")
	assert.True(t, errors.Is(err, ErrMalformedDependency))
	assert.Len(t, m.Dependencies, 2)
}
