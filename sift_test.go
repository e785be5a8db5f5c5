package sift_test

import (
	"bytes"
	"context"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/siftkit/sift"
	"github.com/siftkit/sift/adapter/timegetter"
	"github.com/siftkit/sift/domain"
	"github.com/siftkit/sift/logger"
)

type User struct {
	Name    string         `sift:"name"`
	Age     int            `sift:"age"`
	City    string         `sift:"city"`
	Tags    []any          `sift:"tags"`
	Profile map[string]any `sift:"profile"`
}

func users() []map[string]any {
	return []map[string]any{
		{"name": "Alice", "age": 30, "city": "Berlin",
			"tags": []any{"admin", "dev"},
			"profile": map[string]any{
				"address": map[string]any{"city": "Berlin"},
			}},
		{"name": "Bob", "age": 17, "city": "Paris",
			"tags": []any{"dev"}},
		{"name": "Carol", "age": 65, "city": "Berlin",
			"tags": []any{}},
		{"name": "Dave", "age": 18, "city": "Madrid"},
		{"name": "Erin", "age": 66, "city": "Paris"},
	}
}

func names(records []map[string]any) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i], _ = r["name"].(string)
	}
	return out
}

type SiftTestSuite struct {
	suite.Suite
}

func (s *SiftTestSuite) SetupTest() {
	sift.ClearCache()
	sift.ClearOperators()
}

func (s *SiftTestSuite) TestFilterEquality() {
	out, err := sift.Filter(users(), map[string]any{"city": "Berlin"})
	s.NoError(err)
	s.Equal([]string{"Alice", "Carol"}, names(out))
}

func (s *SiftTestSuite) TestFilterBoundaries() {
	adults := map[string]any{"age": map[string]any{"$gte": 18, "$lte": 65}}
	out, err := sift.Filter(users(), adults)
	s.NoError(err)
	// 17 and 66 fall outside, 18 and 65 sit exactly on the bounds
	s.Equal([]string{"Alice", "Carol", "Dave"}, names(out))
}

func (s *SiftTestSuite) TestArrayShorthandEqualsIn() {
	shorthand := map[string]any{"city": []any{"Berlin", "Paris"}}
	explicit := map[string]any{"city": map[string]any{
		"$in": []any{"Berlin", "Paris"},
	}}
	a, err := sift.Filter(users(), shorthand)
	s.NoError(err)
	b, err := sift.Filter(users(), explicit)
	s.NoError(err)
	s.Equal(names(b), names(a))
	s.Equal([]string{"Alice", "Bob", "Carol", "Erin"}, names(a))
}

func (s *SiftTestSuite) TestDottedEqualsNested() {
	dotted := map[string]any{"profile.address.city": "Berlin"}
	nested := map[string]any{"profile": map[string]any{
		"address": map[string]any{"city": "Berlin"},
	}}
	a, err := sift.Filter(users(), dotted)
	s.NoError(err)
	b, err := sift.Filter(users(), nested)
	s.NoError(err)
	s.Equal(names(a), names(b))
	s.Equal([]string{"Alice"}, names(a))
}

func (s *SiftTestSuite) TestDeMorgan() {
	negated := map[string]any{"$not": map[string]any{"$or": []any{
		map[string]any{"city": "Berlin"},
		map[string]any{"age": map[string]any{"$lt": 18}},
	}}}
	conjunction := map[string]any{"$and": []any{
		map[string]any{"city": map[string]any{"$ne": "Berlin"}},
		map[string]any{"age": map[string]any{"$gte": 18}},
	}}
	a, err := sift.Filter(users(), negated)
	s.NoError(err)
	b, err := sift.Filter(users(), conjunction)
	s.NoError(err)
	s.Equal(names(b), names(a))
	s.Equal([]string{"Dave", "Erin"}, names(a))
}

func (s *SiftTestSuite) TestOrderingOffsetLimit() {
	out, err := sift.Filter(users(), nil,
		sift.WithOrderBy(sift.Asc("age")))
	s.NoError(err)
	s.Equal([]string{"Bob", "Dave", "Alice", "Carol", "Erin"}, names(out))

	out, err = sift.Filter(users(), nil,
		sift.WithOrderBy(sift.Desc("age")),
		sift.WithOffset(1),
		sift.WithLimit(2))
	s.NoError(err)
	s.Equal([]string{"Carol", "Alice"}, names(out))
}

func (s *SiftTestSuite) TestMultiKeyOrdering() {
	out, err := sift.Filter(users(), nil,
		sift.WithOrderBy(sift.Asc("city"), sift.Desc("age")))
	s.NoError(err)
	s.Equal([]string{"Carol", "Alice", "Dave", "Erin", "Bob"}, names(out))
}

func (s *SiftTestSuite) TestFilterLazy() {
	seq, err := sift.FilterLazy(users(), map[string]any{
		"age": map[string]any{"$gte": 18},
	})
	s.NoError(err)
	var got []string
	for u := range seq {
		got = append(got, u["name"].(string))
	}
	s.Equal([]string{"Alice", "Carol", "Dave", "Erin"}, got)

	_, err = sift.FilterLazy(users(), nil,
		sift.WithOrderBy(sift.Asc("age")))
	s.ErrorIs(err, domain.ErrLazyOrderBy)
}

func (s *SiftTestSuite) TestFilterSeq() {
	// an endless source can only terminate through the consumer or a limit
	naturals := func(yield func(int) bool) {
		for i := 1; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
	even := func(r any) bool { return r.(int)%2 == 0 }

	seq, err := sift.FilterSeq(iter.Seq[int](naturals), even,
		sift.WithOffset(1), sift.WithLimit(3))
	s.Require().NoError(err)
	var got []int
	for n := range seq {
		got = append(got, n)
	}
	s.Equal([]int{4, 6, 8}, got)

	seq, err = sift.FilterSeq(iter.Seq[int](naturals), even)
	s.Require().NoError(err)
	got = got[:0]
	for n := range seq {
		got = append(got, n)
		if len(got) == 2 {
			break
		}
	}
	s.Equal([]int{2, 4}, got)

	_, err = sift.FilterSeq(iter.Seq[int](naturals), even,
		sift.WithOrderBy(sift.Asc("value")))
	s.ErrorIs(err, domain.ErrLazyOrderBy)
}

func (s *SiftTestSuite) TestFilterSeqChunked() {
	naturals := func(yield func(int) bool) {
		for i := 1; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
	odd := func(r any) bool { return r.(int)%2 == 1 }

	seq, err := sift.FilterSeqChunked(iter.Seq[int](naturals), odd, 2,
		sift.WithLimit(5))
	s.Require().NoError(err)
	var chunks [][]int
	for chunk := range seq {
		chunks = append(chunks, chunk)
	}
	s.Equal([][]int{{1, 3}, {5, 7}, {9}}, chunks)

	_, err = sift.FilterSeqChunked(iter.Seq[int](naturals), odd, 0)
	s.ErrorIs(err, domain.ErrBadChunkSize)
}

func (s *SiftTestSuite) TestFilterFirstStopsEarly() {
	records := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	var calls int
	even := func(r any) bool {
		calls++
		return r.(int)%2 == 0
	}
	out, err := sift.FilterFirst(records, even, 2)
	s.NoError(err)
	s.Equal([]int{2, 4}, out)
	// stopped right after the second hit
	s.Equal(4, calls)
}

func (s *SiftTestSuite) TestFilterExistsAndCount() {
	ok, err := sift.FilterExists(users(), map[string]any{"city": "Madrid"})
	s.NoError(err)
	s.True(ok)

	ok, err = sift.FilterExists(users(), map[string]any{"city": "Rome"})
	s.NoError(err)
	s.False(ok)

	n, err := sift.FilterCount(users(), map[string]any{"city": "Paris"})
	s.NoError(err)
	s.Equal(2, n)
}

func (s *SiftTestSuite) TestFilterChunked() {
	chunks, err := sift.FilterChunked(users(), nil, 2)
	s.NoError(err)
	s.Len(chunks, 3)
	s.Len(chunks[0], 2)
	s.Len(chunks[1], 2)
	s.Len(chunks[2], 1)

	_, err = sift.FilterChunked(users(), nil, 0)
	s.ErrorIs(err, domain.ErrBadChunkSize)
}

func (s *SiftTestSuite) TestFilterLazyChunked() {
	seq, err := sift.FilterLazyChunked(users(), map[string]any{
		"age": map[string]any{"$gte": 18},
	}, 3)
	s.NoError(err)
	var sizes []int
	for chunk := range seq {
		sizes = append(sizes, len(chunk))
	}
	s.Equal([]int{3, 1}, sizes)

	_, err = sift.FilterLazyChunked(users(), nil, -1)
	s.ErrorIs(err, domain.ErrBadChunkSize)
}

func (s *SiftTestSuite) TestMatch() {
	ok, err := sift.Match(map[string]any{"age": 30}, map[string]any{
		"age": map[string]any{"$gte": 18},
	})
	s.NoError(err)
	s.True(ok)
}

func (s *SiftTestSuite) TestCompileReuse() {
	cq, err := sift.Compile(map[string]any{"age": map[string]any{"$gte": 18}})
	s.NoError(err)
	s.True(cq.Match(User{Name: "Alice", Age: 30}))
	s.False(cq.Match(User{Name: "Bob", Age: 17}))
}

func (s *SiftTestSuite) TestStructRecords() {
	records := []User{
		{Name: "Alice", Age: 30, City: "Berlin"},
		{Name: "Bob", Age: 17, City: "Paris"},
	}
	out, err := sift.Filter(records, map[string]any{
		"city": "berlin",
	})
	s.NoError(err)
	s.Require().Len(out, 1)
	s.Equal("Alice", out[0].Name)
}

func (s *SiftTestSuite) TestWhere() {
	p, err := sift.Where(`age >= 18 && city == "Berlin"`)
	s.Require().NoError(err)
	out, err := sift.Filter(users(), p)
	s.NoError(err)
	s.Equal([]string{"Alice", "Carol"}, names(out))
}

func (s *SiftTestSuite) TestExplain() {
	report, err := sift.Explain(users(), map[string]any{
		"age": map[string]any{"$gte": 18},
	})
	s.NoError(err)
	s.NotEmpty(report.ID)
	s.Equal(5, report.Total)
	s.Equal(4, report.Matched)
	s.Len(report.Traces, 5)
	s.True(report.Traces[0].Matched)
	s.False(report.Traces[1].Matched)
}

func (s *SiftTestSuite) TestFilterCursor() {
	c, err := sift.FilterCursor(users(), map[string]any{"city": "Berlin"})
	s.Require().NoError(err)
	defer c.Close()

	ctx := context.Background()
	var got []User
	for c.Next() {
		var u User
		s.Require().NoError(c.Scan(ctx, &u))
		got = append(got, u)
	}
	s.NoError(c.Err())
	s.Require().Len(got, 2)
	s.Equal("Alice", got[0].Name)
	s.Equal(30, got[0].Age)
}

func (s *SiftTestSuite) TestCacheTransparency() {
	records := users()
	query := map[string]any{"age": map[string]any{"$gte": 18}}

	plain, err := sift.Filter(records, query)
	s.NoError(err)
	cached, err := sift.Filter(records, query, sift.WithCache(true))
	s.NoError(err)
	s.Equal(names(plain), names(cached))

	// second cached call hits both tiers and stays identical
	again, err := sift.Filter(records, query, sift.WithCache(true))
	s.NoError(err)
	s.Equal(names(cached), names(again))

	stats := sift.Stats()
	s.GreaterOrEqual(stats.PredicateCacheSize, 1)
	s.GreaterOrEqual(stats.ResultCacheSize, 1)

	sift.ClearCache()
	stats = sift.Stats()
	s.Zero(stats.PredicateCacheSize)
	s.Zero(stats.ResultCacheSize)
}

func (s *SiftTestSuite) TestDebugLogsDespiteWarmCache() {
	records := users()
	query := map[string]any{"city": "Berlin"}

	// warm the predicate cache with a non-debug call
	_, err := sift.Filter(records, query, sift.WithCache(true))
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(sift.Stats().PredicateCacheSize, 1)

	var buf bytes.Buffer
	out, err := sift.Filter(records, query,
		sift.WithCache(true),
		sift.WithDebug(true),
		sift.WithLogger(logger.NewWithOutput(logger.DEBUG, &buf)))
	s.NoError(err)
	s.Equal([]string{"Alice", "Carol"}, names(out))
	s.NotEmpty(buf.String())
}

func (s *SiftTestSuite) TestCustomComparatorBypassesCache() {
	records := users()
	query := map[string]any{"name": "ALICE"}

	out, err := sift.Filter(records, query,
		sift.WithCache(true),
		sift.WithComparator(func(actual, expected any) bool {
			return actual == "Alice"
		}))
	s.NoError(err)
	s.Equal([]string{"Alice"}, names(out))
	s.Zero(sift.Stats().ResultCacheSize)
}

func (s *SiftTestSuite) TestRegisterOperator() {
	err := sift.RegisterOperator("$longerThan", func(value, operand any, _ *sift.Options) (bool, error) {
		str, ok := value.(string)
		if !ok {
			return false, nil
		}
		n, ok := operand.(int)
		return ok && len(str) > n, nil
	})
	s.Require().NoError(err)
	defer sift.UnregisterOperator("$longerThan")

	out, err := sift.Filter(users(), map[string]any{
		"name": map[string]any{"$longerThan": 4},
	})
	s.NoError(err)
	s.Equal([]string{"Alice", "Carol"}, names(out))

	s.Error(sift.RegisterOperator("noDollar", nil))
	s.Error(sift.RegisterOperator("$eq", func(_, _ any, _ *sift.Options) (bool, error) {
		return true, nil
	}))
}

func (s *SiftTestSuite) TestUnknownOperatorError() {
	_, err := sift.Filter(users(), map[string]any{
		"age": map[string]any{"$frobnicate": 1},
	})
	s.ErrorAs(err, &domain.ErrUnknownOperator{})
}

func (s *SiftTestSuite) TestBadMaxDepth() {
	_, err := sift.Filter(users(), nil, sift.WithMaxDepth(0))
	s.ErrorIs(err, domain.ErrBadMaxDepth)
	_, err = sift.Filter(users(), nil, sift.WithMaxDepth(11))
	s.ErrorIs(err, domain.ErrBadMaxDepth)
}

func (s *SiftTestSuite) TestIdempotence() {
	query := map[string]any{"tags": map[string]any{"$contains": "dev"}}
	a, err := sift.Filter(users(), query)
	s.NoError(err)
	// filtering an already-filtered result is a no-op
	b, err := sift.Filter(a, query)
	s.NoError(err)
	s.Equal(names(a), names(b))
	s.Equal([]string{"Alice", "Bob"}, names(a))
}

func (s *SiftTestSuite) TestDatetimeWithFixedClock() {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	events := []map[string]any{
		{"name": "standup", "at": now.Add(-2 * 24 * time.Hour)},
		{"name": "retro", "at": now.Add(-20 * 24 * time.Hour)},
		{"name": "launch", "at": now.Add(3 * 24 * time.Hour)},
	}
	out, err := sift.Filter(events, map[string]any{
		"at": map[string]any{"$recent": map[string]any{"days": 7}},
	}, sift.WithTimeGetter(timegetter.Fixed(now)))
	s.NoError(err)
	s.Equal([]string{"standup"}, names(out))

	out, err = sift.Filter(events, map[string]any{
		"at": map[string]any{"$upcoming": map[string]any{"days": 7}},
	}, sift.WithTimeGetter(timegetter.Fixed(now)))
	s.NoError(err)
	s.Equal([]string{"launch"}, names(out))
}

func (s *SiftTestSuite) TestGeoFilter() {
	places := []map[string]any{
		{"name": "berlin", "location": map[string]any{"lat": 52.52, "lng": 13.405}},
		{"name": "paris", "location": map[string]any{"lat": 48.8566, "lng": 2.3522}},
		{"name": "nowhere"},
	}
	out, err := sift.Filter(places, map[string]any{
		"location": map[string]any{"$near": map[string]any{
			"center":      map[string]any{"lat": 52.5, "lng": 13.4},
			"maxDistance": 50000,
		}},
	})
	s.NoError(err)
	s.Equal([]string{"berlin"}, names(out))
}

func TestSiftTestSuite(t *testing.T) {
	suite.Run(t, new(SiftTestSuite))
}
