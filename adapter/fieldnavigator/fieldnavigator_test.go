package fieldnavigator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/siftkit/sift/domain"
)

type FieldNavigatorTestSuite struct {
	suite.Suite
	fn domain.FieldNavigator
}

func (s *FieldNavigatorTestSuite) SetupTest() {
	s.fn = NewFieldNavigator()
}

func (s *FieldNavigatorTestSuite) get(record any, parts ...string) (any, bool) {
	getters, _, err := s.fn.GetField(record, domain.DefaultMaxDepth, parts...)
	s.Require().NoError(err)
	s.Require().NotEmpty(getters)
	return getters[0].Get()
}

func (s *FieldNavigatorTestSuite) TestGetAddress() {
	addr, err := s.fn.GetAddress("profile.address.city")
	s.NoError(err)
	s.Equal([]string{"profile", "address", "city"}, addr)
}

func (s *FieldNavigatorTestSuite) TestMapLookup() {
	record := map[string]any{
		"name": "Alice",
		"profile": map[string]any{
			"address": map[string]any{"city": "Berlin"},
		},
	}
	v, ok := s.get(record, "name")
	s.True(ok)
	s.Equal("Alice", v)

	v, ok = s.get(record, "profile", "address", "city")
	s.True(ok)
	s.Equal("Berlin", v)
}

func (s *FieldNavigatorTestSuite) TestStructLookup() {
	type Address struct {
		City string `sift:"city"`
	}
	type User struct {
		Name    string  `sift:"name"`
		Address Address `sift:"address"`
		Skip    string  `sift:"-"`
	}
	record := User{Name: "Bob", Address: Address{City: "Paris"}, Skip: "x"}

	v, ok := s.get(record, "name")
	s.True(ok)
	s.Equal("Bob", v)

	v, ok = s.get(record, "address", "city")
	s.True(ok)
	s.Equal("Paris", v)

	_, ok = s.get(record, "Skip")
	s.False(ok)
}

func (s *FieldNavigatorTestSuite) TestMissingKeyIsUndefined() {
	record := map[string]any{"a": 1}
	_, ok := s.get(record, "b")
	s.False(ok)
	_, ok = s.get(record, "a", "b")
	s.False(ok)
}

func (s *FieldNavigatorTestSuite) TestNullIsDefined() {
	record := map[string]any{"a": nil}
	v, ok := s.get(record, "a")
	s.True(ok)
	s.Nil(v)
}

func (s *FieldNavigatorTestSuite) TestNumericIndex() {
	record := map[string]any{"tags": []any{"go", "db"}}
	v, ok := s.get(record, "tags", "1")
	s.True(ok)
	s.Equal("db", v)

	_, ok = s.get(record, "tags", "5")
	s.False(ok)
}

func (s *FieldNavigatorTestSuite) TestListExpansion() {
	record := map[string]any{
		"orders": []any{
			map[string]any{"total": 10},
			map[string]any{"total": 20},
		},
	}
	getters, expanded, err := s.fn.GetField(record, domain.DefaultMaxDepth, "orders", "total")
	s.NoError(err)
	s.True(expanded)
	s.Len(getters, 2)

	values := make([]any, 0, len(getters))
	for _, g := range getters {
		v, ok := g.Get()
		s.True(ok)
		values = append(values, v)
	}
	s.Equal([]any{10, 20}, values)
}

func (s *FieldNavigatorTestSuite) TestMaxDepthBound() {
	record := map[string]any{
		"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": 1}}},
	}
	getters, _, err := s.fn.GetField(record, 3, "a", "b", "c", "d")
	s.NoError(err)
	_, ok := getters[0].Get()
	s.False(ok)

	getters, _, err = s.fn.GetField(record, 4, "a", "b", "c", "d")
	s.NoError(err)
	v, ok := getters[0].Get()
	s.True(ok)
	s.Equal(1, v)
}

func (s *FieldNavigatorTestSuite) TestPrimitiveMidPath() {
	record := map[string]any{"a": 42}
	_, ok := s.get(record, "a", "b")
	s.False(ok)
}

func (s *FieldNavigatorTestSuite) TestNilRecord() {
	getters, _, err := s.fn.GetField(nil, domain.DefaultMaxDepth, "a")
	s.NoError(err)
	_, ok := getters[0].Get()
	s.False(ok)
}

func TestFieldNavigatorTestSuite(t *testing.T) {
	suite.Run(t, new(FieldNavigatorTestSuite))
}
