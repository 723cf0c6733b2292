package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_TypeTag(t *testing.T) {
	assert.Equal(t, int32(0), KindNull.TypeTag())
	assert.Equal(t, int32(1), KindInt.TypeTag())
	assert.Equal(t, int32(2), KindFloat.TypeTag())
	assert.Equal(t, int32(3), KindString.TypeTag())
	assert.Equal(t, int32(4), KindBool.TypeTag())
	assert.Equal(t, int32(5), KindArray.TypeTag())
	assert.Equal(t, int32(6), KindObject.TypeTag())
	assert.Equal(t, int32(7), KindDate.TypeTag())
}

func TestValue_Clone_ArrayIsDeepCopied(t *testing.T) {
	original := Array([]Value{Int(1), Int(2)})
	clone := original.Clone()

	clone.Array[0] = Int(99)

	assert.Equal(t, int64(1), original.Array[0].Int)
	assert.Equal(t, int64(99), clone.Array[0].Int)
}

func TestValue_Clone_ObjectMapIsDeepCopied(t *testing.T) {
	original := Object(ValueMapObject(map[string]Value{"a": Int(1)}))
	clone := original.Clone()

	clone.Object.Map["a"] = Int(2)

	assert.Equal(t, int64(1), original.Object.Map["a"].Int)
	assert.Equal(t, int64(2), clone.Object.Map["a"].Int)
}

func TestValue_Clone_ScalarIsUnaffectedByMutationOfCopy(t *testing.T) {
	original := String("hello")
	clone := original.Clone()
	clone.Str = "changed"

	assert.Equal(t, "hello", original.Str)
}
