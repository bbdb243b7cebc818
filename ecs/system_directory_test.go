package ecs

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firstSystem struct {
	SystemBase
}

func (s *firstSystem) Execute(*UpdateFrame) {}

type secondSystem struct {
	SystemBase
	label string
}

func (s *secondSystem) Execute(*UpdateFrame) {}

func TestSystemDirectoryRegister(t *testing.T) {
	d := NewSystemDirectory(nil)

	first, err := registerNewSystem[firstSystem](d)
	require.NoError(t, err)
	second, err := registerSystem(d, &secondSystem{label: "custom"})
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []System{first, second}, slices.Collect(d.Systems()))

	got, err := getSystem[*secondSystem](d)
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, "custom", got.label)

	_, err = registerNewSystem[firstSystem](d)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestSystemDirectoryUnregistered(t *testing.T) {
	d := NewSystemDirectory(nil)

	_, err := getSystem[*firstSystem](d)
	assert.ErrorIs(t, err, ErrUnregisteredSystem)
	_, err = setSystemSignature[*firstSystem](d, 1)
	assert.ErrorIs(t, err, ErrUnregisteredSystem)
	_, err = systemSignature[*firstSystem](d)
	assert.ErrorIs(t, err, ErrUnregisteredSystem)
}

func TestSystemDirectoryRejectsNil(t *testing.T) {
	d := NewSystemDirectory(nil)

	var sys *firstSystem
	_, err := registerSystem(d, sys)
	assert.Error(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestSystemDirectoryMembership(t *testing.T) {
	d := NewSystemDirectory(nil)
	sys, err := registerNewSystem[firstSystem](d)
	require.NoError(t, err)
	_, err = setSystemSignature[*firstSystem](d, NewSignature(1, 2))
	require.NoError(t, err)

	d.EntitySignatureChanged(5, NewSignature(1))
	assert.False(t, sys.Entities().Contains(5))

	d.EntitySignatureChanged(5, NewSignature(1, 2, 3))
	assert.True(t, sys.Entities().Contains(5))

	d.EntitySignatureChanged(5, NewSignature(2, 3))
	assert.False(t, sys.Entities().Contains(5))

	d.EntitySignatureChanged(6, NewSignature(1, 2))
	d.EntityDestroyed(6)
	assert.Equal(t, 0, sys.Entities().Len())
}

func TestSystemDirectoryEmptySignatureMatchesNothing(t *testing.T) {
	d := NewSystemDirectory(nil)
	sys, err := registerNewSystem[firstSystem](d)
	require.NoError(t, err)

	d.EntitySignatureChanged(1, NewSignature(0, 1, 2))
	d.EntitySignatureChanged(2, 0)
	assert.Equal(t, 0, sys.Entities().Len())
}

func TestSystemDirectoryResync(t *testing.T) {
	r := NewEntityRegistry(8, nil)
	for range 4 {
		_, err := r.Create()
		require.NoError(t, err)
	}
	require.NoError(t, r.SetSignature(0, NewSignature(1)))
	require.NoError(t, r.SetSignature(2, NewSignature(1, 4)))
	require.NoError(t, r.SetSignature(3, NewSignature(4)))

	d := NewSystemDirectory(nil)
	sys, err := registerNewSystem[firstSystem](d)
	require.NoError(t, err)

	rec, err := setSystemSignature[*firstSystem](d, NewSignature(1))
	require.NoError(t, err)
	d.resync(rec, r)
	assert.Equal(t, []Entity{0, 2}, sys.Entities().Slice())

	rec, err = setSystemSignature[*firstSystem](d, NewSignature(4))
	require.NoError(t, err)
	d.resync(rec, r)
	assert.Equal(t, []Entity{2, 3}, sys.Entities().Slice())
}

func TestSystemName(t *testing.T) {
	d := NewSystemDirectory(nil)
	_, err := registerNewSystem[secondSystem](d)
	require.NoError(t, err)
	assert.Equal(t, "secondSystem", d.records[0].name)
}
