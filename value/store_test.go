package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_StoreAndGet(t *testing.T) {
	s := NewStore()
	h := s.Store(Int(42))

	got, ok := s.Get(h)
	assert.True(t, ok)
	assert.Equal(t, Int(42), got)
}

func TestStore_HandlesAreMonotonicAndNeverZero(t *testing.T) {
	s := NewStore()
	h1 := s.Store(Null())
	h2 := s.Store(Null())

	assert.NotEqual(t, Handle(0), h1)
	assert.Less(t, int32(h1), int32(h2))
}

func TestStore_GetUnknownHandle(t *testing.T) {
	s := NewStore()
	_, ok := s.Get(Handle(999))
	assert.False(t, ok)
}

func TestStore_Set(t *testing.T) {
	s := NewStore()
	h := s.Store(Int(1))

	assert.True(t, s.Set(h, Int(2)))
	got, _ := s.Get(h)
	assert.Equal(t, Int(2), got)

	assert.False(t, s.Set(Handle(999), Int(3)))
}

func TestStore_Mutate(t *testing.T) {
	s := NewStore()
	h := s.Store(Array(nil))

	ok := s.Mutate(h, func(v *Value) {
		v.Array = append(v.Array, Int(1))
	})
	assert.True(t, ok)

	got, _ := s.Get(h)
	assert.Equal(t, []Value{Int(1)}, got.Array)
}

func TestStore_Take_RemovesAndReturns(t *testing.T) {
	s := NewStore()
	h := s.Store(String("x"))

	v, ok := s.Take(h)
	assert.True(t, ok)
	assert.Equal(t, String("x"), v)

	_, ok = s.Get(h)
	assert.False(t, ok)
}

func TestStore_RemoveCascadesToChildren(t *testing.T) {
	s := NewStore()
	parent := s.Store(Array(nil))
	child := s.Store(Int(1))
	grandchild := s.Store(Int(2))

	assert.True(t, s.AddChild(parent, child))
	assert.True(t, s.AddChild(child, grandchild))

	s.Remove(parent)

	_, ok := s.Get(parent)
	assert.False(t, ok)
	_, ok = s.Get(child)
	assert.False(t, ok)
	_, ok = s.Get(grandchild)
	assert.False(t, ok)
}

func TestStore_RemoveLeavesUnrelatedValues(t *testing.T) {
	s := NewStore()
	parent := s.Store(Array(nil))
	child := s.Store(Int(1))
	other := s.Store(Int(2))

	assert.True(t, s.AddChild(parent, child))

	s.Remove(parent)

	_, ok := s.Get(other)
	assert.True(t, ok)
}

func TestStore_AddChild_RejectsSelfReference(t *testing.T) {
	s := NewStore()
	h := s.Store(Array(nil))

	assert.False(t, s.AddChild(h, h))
}

func TestStore_AddChild_RejectsCycle(t *testing.T) {
	s := NewStore()
	a := s.Store(Array(nil))
	b := s.Store(Array(nil))

	assert.True(t, s.AddChild(a, b))
	assert.False(t, s.AddChild(b, a))
}

func TestStore_AddChild_UnknownHandles(t *testing.T) {
	s := NewStore()
	h := s.Store(Array(nil))

	assert.False(t, s.AddChild(h, Handle(999)))
	assert.False(t, s.AddChild(Handle(999), h))
}

func TestStore_Len(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.Len())
	s.Store(Null())
	s.Store(Null())
	assert.Equal(t, 2, s.Len())
}
