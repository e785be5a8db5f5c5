package querier

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/siftkit/sift/domain"
)

type QuerierTestSuite struct {
	suite.Suite
	q *Querier
}

func (s *QuerierTestSuite) SetupTest() {
	s.q = NewQuerier()
}

func (s *QuerierTestSuite) sort(records []map[string]any, sort domain.Sort) []map[string]any {
	idx, err := s.q.SortIndexes(
		len(records),
		func(i int) any { return records[i] },
		sort,
		domain.DefaultMaxDepth,
	)
	s.Require().NoError(err)
	out := make([]map[string]any, len(records))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

func (s *QuerierTestSuite) names(records []map[string]any) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i], _ = r["name"].(string)
	}
	return out
}

func (s *QuerierTestSuite) TestAscendingDescending() {
	records := []map[string]any{
		{"name": "Bob", "age": 25},
		{"name": "Alice", "age": 30},
		{"name": "Carol", "age": 20},
	}
	out := s.sort(records, domain.Sort{{Key: "age", Order: 1}})
	s.Equal([]string{"Carol", "Bob", "Alice"}, s.names(out))

	out = s.sort(records, domain.Sort{{Key: "age", Order: -1}})
	s.Equal([]string{"Alice", "Bob", "Carol"}, s.names(out))
}

func (s *QuerierTestSuite) TestMultiKeyAndStability() {
	records := []map[string]any{
		{"name": "Bob", "city": "Berlin", "age": 25},
		{"name": "Alice", "city": "Berlin", "age": 25},
		{"name": "Carol", "city": "Amsterdam", "age": 30},
	}
	out := s.sort(records, domain.Sort{
		{Key: "city", Order: 1},
		{Key: "age", Order: 1},
	})
	// equal keys keep input order
	s.Equal([]string{"Carol", "Bob", "Alice"}, s.names(out))
}

func (s *QuerierTestSuite) TestAbsentAndNullSortLast() {
	records := []map[string]any{
		{"name": "NoAge"},
		{"name": "Bob", "age": 25},
		{"name": "NullAge", "age": nil},
		{"name": "Alice", "age": 30},
	}
	out := s.sort(records, domain.Sort{{Key: "age", Order: 1}})
	s.Equal([]string{"Bob", "Alice", "NoAge", "NullAge"}, s.names(out))

	// direction does not move them
	out = s.sort(records, domain.Sort{{Key: "age", Order: -1}})
	s.Equal([]string{"Alice", "Bob", "NoAge", "NullAge"}, s.names(out))
}

func (s *QuerierTestSuite) TestDottedSortKey() {
	records := []map[string]any{
		{"name": "Bob", "profile": map[string]any{"score": 2}},
		{"name": "Alice", "profile": map[string]any{"score": 1}},
	}
	out := s.sort(records, domain.Sort{{Key: "profile.score", Order: 1}})
	s.Equal([]string{"Alice", "Bob"}, s.names(out))
}

func (s *QuerierTestSuite) TestEmptySortIsIdentity() {
	records := []map[string]any{
		{"name": "Bob"}, {"name": "Alice"},
	}
	out := s.sort(records, nil)
	s.Equal([]string{"Bob", "Alice"}, s.names(out))
}

func (s *QuerierTestSuite) TestWindow() {
	testCases := []struct {
		n, offset, limit, lo, hi int
	}{
		{n: 10, offset: 0, limit: 0, lo: 0, hi: 10},
		{n: 10, offset: 3, limit: 0, lo: 3, hi: 10},
		{n: 10, offset: 0, limit: 4, lo: 0, hi: 4},
		{n: 10, offset: 3, limit: 4, lo: 3, hi: 7},
		{n: 10, offset: 20, limit: 4, lo: 10, hi: 10},
		{n: 10, offset: 8, limit: 5, lo: 8, hi: 10},
		{n: 10, offset: -5, limit: -1, lo: 0, hi: 10},
	}
	for _, tc := range testCases {
		lo, hi := Window(tc.n, tc.offset, tc.limit)
		s.Equal(tc.lo, lo, "%+v", tc)
		s.Equal(tc.hi, hi, "%+v", tc)
	}
}

func TestQuerierTestSuite(t *testing.T) {
	suite.Run(t, new(QuerierTestSuite))
}
