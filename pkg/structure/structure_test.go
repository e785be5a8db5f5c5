package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StructureTestSuite struct {
	suite.Suite
}

func (s *StructureTestSuite) TestSeq2Map() {
	seq, l, err := Seq2(map[string]any{"a": 1, "b": 2})
	s.NoError(err)
	s.Equal(2, l)

	got := map[string]any{}
	for k, v := range seq {
		got[k] = v
	}
	s.Equal(map[string]any{"a": 1, "b": 2}, got)
}

func (s *StructureTestSuite) TestSeq2TypedMap() {
	seq, l, err := Seq2(map[string]int{"a": 1})
	s.NoError(err)
	s.Equal(1, l)
	for k, v := range seq {
		s.Equal("a", k)
		s.Equal(1, v)
	}
}

func (s *StructureTestSuite) TestSeq2Struct() {
	type user struct {
		Name   string `sift:"name"`
		Age    int
		Secret string `sift:"-"`
		hidden int
	}
	_ = user{}.hidden

	seq, l, err := Seq2(user{Name: "Alice", Age: 30, Secret: "x"})
	s.NoError(err)
	s.Equal(2, l)

	got := map[string]any{}
	for k, v := range seq {
		got[k] = v
	}
	s.Equal(map[string]any{"name": "Alice", "Age": 30}, got)
}

func (s *StructureTestSuite) TestSeq2Pointer() {
	type user struct {
		Name string `sift:"name"`
	}
	seq, l, err := Seq2(&user{Name: "Bob"})
	s.NoError(err)
	s.Equal(1, l)
	for k, v := range seq {
		s.Equal("name", k)
		s.Equal("Bob", v)
	}
}

func (s *StructureTestSuite) TestSeq2Rejects() {
	_, _, err := Seq2(nil)
	s.ErrorIs(err, ErrNilObj)

	_, _, err = Seq2(42)
	s.Error(err)

	_, _, err = Seq2(time.Now())
	s.Error(err)

	_, _, err = Seq2(map[int]any{1: "a"})
	s.Error(err)
}

func (s *StructureTestSuite) TestSeq() {
	seq, l, err := Seq([]any{1, "a"})
	s.NoError(err)
	s.Equal(2, l)
	var got []any
	for v := range seq {
		got = append(got, v)
	}
	s.Equal([]any{1, "a"}, got)

	_, _, err = Seq("string")
	s.Error(err)
	_, _, err = Seq([]byte("bytes"))
	s.Error(err)
	_, _, err = Seq(nil)
	s.ErrorIs(err, ErrNilObj)
}

func (s *StructureTestSuite) TestList() {
	list, ok := List([]int{1, 2, 3})
	s.True(ok)
	s.Equal([]any{1, 2, 3}, list)

	list, ok = List([2]string{"a", "b"})
	s.True(ok)
	s.Equal([]any{"a", "b"}, list)

	_, ok = List("string")
	s.False(ok)
	_, ok = List(map[string]any{})
	s.False(ok)
}

func (s *StructureTestSuite) TestField() {
	v, ok := Field(map[string]any{"a": 1}, "a")
	s.True(ok)
	s.Equal(1, v)

	_, ok = Field(map[string]any{"a": 1}, "b")
	s.False(ok)

	type user struct {
		Name string `sift:"name"`
	}
	v, ok = Field(user{Name: "Alice"}, "name")
	s.True(ok)
	s.Equal("Alice", v)

	_, ok = Field(42, "a")
	s.False(ok)
}

func (s *StructureTestSuite) TestAsInteger() {
	testCases := []struct {
		v   any
		n   int
		ok  bool
	}{
		{v: 3, n: 3, ok: true},
		{v: int64(-7), n: -7, ok: true},
		{v: uint8(200), n: 200, ok: true},
		{v: 3.0, n: 3, ok: true},
		{v: 3.5, ok: false},
		{v: "3", ok: false},
		{v: nil, ok: false},
	}
	for _, tc := range testCases {
		n, ok := AsInteger(tc.v)
		s.Equal(tc.ok, ok, "%v", tc.v)
		if tc.ok {
			s.Equal(tc.n, n)
		}
	}
}

func (s *StructureTestSuite) TestAsFloat() {
	f, ok := AsFloat(3)
	s.True(ok)
	s.Equal(3.0, f)

	f, ok = AsFloat(2.5)
	s.True(ok)
	s.Equal(2.5, f)

	_, ok = AsFloat("2.5")
	s.False(ok)
	_, ok = AsFloat(time.Now())
	s.False(ok)
}

func (s *StructureTestSuite) TestContains() {
	eq := func(a, b any) (bool, error) { return a == b, nil }
	ok, err := Contains([]any{1, 2, 3}, 2, eq)
	s.NoError(err)
	s.True(ok)
	ok, err = Contains([]any{1, 2, 3}, 4, eq)
	s.NoError(err)
	s.False(ok)
}

func TestStructureTestSuite(t *testing.T) {
	suite.Run(t, new(StructureTestSuite))
}
