package multiset

import "testing"

func TestMultisetOrderIndependence(t *testing.T) {
	a := New()
	a.Add([]byte("x"))
	a.Add([]byte("y"))

	b := New()
	b.Add([]byte("y"))
	b.Add([]byte("x"))

	if !a.Hash().Equal(b.Hash()) {
		t.Fatalf("TestMultisetOrderIndependence: insertion order changed the hash")
	}

	c := a.Clone()
	c.Add([]byte("z"))
	c.Remove([]byte("z"))
	if !a.Hash().Equal(c.Hash()) {
		t.Fatalf("TestMultisetOrderIndependence: add then remove changed the hash")
	}
}

func TestMultisetSerialization(t *testing.T) {
	ms := New()
	ms.Add([]byte("element"))

	deserialized, err := FromBytes(ms.Serialize())
	if err != nil {
		t.Fatalf("TestMultisetSerialization: FromBytes: %s", err)
	}
	if !ms.Hash().Equal(deserialized.Hash()) {
		t.Fatalf("TestMultisetSerialization: deserialized multiset has a different hash")
	}

	_, err = FromBytes([]byte{1, 2, 3})
	if err == nil {
		t.Fatalf("TestMultisetSerialization: expected an error for short input")
	}
}
