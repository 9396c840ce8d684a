package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type person struct {
	Name  string   `json:"name"`
	Age   int      `json:"age"`
	Tags  []string `json:"tags"`
	Grade string   `json:"grade,omitempty"`
}

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestSetAndGet() {
	err := s.store.Set(s.ctx, "people", "p1", person{Name: "Ada", Age: 12, Tags: []string{"a"}})
	s.Require().NoError(err)

	doc, err := s.store.Get(s.ctx, "people", "p1")
	s.Require().NoError(err)

	var got person
	s.Require().NoError(doc.DataTo(&got))
	s.Equal("Ada", got.Name)
	s.Equal(12, got.Age)
	s.Equal([]string{"a"}, got.Tags)
}

func (s *MemoryStoreSuite) TestGetMissingIsNotFound() {
	_, err := s.store.Get(s.ctx, "people", "ghost")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreSuite) TestReturnedDocumentsAreCopies() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "p1", person{Name: "Ada"}))

	doc, err := s.store.Get(s.ctx, "people", "p1")
	s.Require().NoError(err)
	doc.Data["name"] = "Mallory"

	again, err := s.store.Get(s.ctx, "people", "p1")
	s.Require().NoError(err)
	s.Equal("Ada", again.Data["name"])
}

func (s *MemoryStoreSuite) TestAddGeneratesID() {
	id, err := s.store.Add(s.ctx, "people", person{Name: "Bo"})
	s.Require().NoError(err)
	s.NotEmpty(id)

	doc, err := s.store.Get(s.ctx, "people", id)
	s.Require().NoError(err)
	s.Equal("Bo", doc.Data["name"])
}

func (s *MemoryStoreSuite) TestRejectsNonObjects() {
	err := s.store.Set(s.ctx, "people", "p1", []string{"not", "an", "object"})
	s.ErrorIs(err, ErrNotADocument)
}

func (s *MemoryStoreSuite) TestRejectsBadPaths() {
	s.ErrorIs(s.store.Set(s.ctx, "tournaments/t1", "x", person{}), ErrInvalidPath)
	s.ErrorIs(s.store.Set(s.ctx, "people", "a/b", person{}), ErrInvalidPath)
	s.NoError(s.store.Set(s.ctx, Collection("tournaments", "t1", "signups"), "x", person{}))
}

func (s *MemoryStoreSuite) TestArrayUnionHasSetSemantics() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "p1", person{Name: "Ada", Tags: []string{"a"}}))

	err := s.store.Update(s.ctx, "people", "p1", ArrayUnion("tags", "a", "b"), ArrayUnion("tags", "b"))
	s.Require().NoError(err)

	doc, _ := s.store.Get(s.ctx, "people", "p1")
	s.Equal([]any{"a", "b"}, doc.Data["tags"])
}

func (s *MemoryStoreSuite) TestArrayUnionOnMissingField() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "p1", map[string]any{"name": "Ada"}))

	s.Require().NoError(s.store.Update(s.ctx, "people", "p1", ArrayUnion("tags", "x")))

	doc, _ := s.store.Get(s.ctx, "people", "p1")
	s.Equal([]any{"x"}, doc.Data["tags"])
}

func (s *MemoryStoreSuite) TestArrayRemove() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "p1", person{Tags: []string{"a", "b", "a", "c"}}))

	s.Require().NoError(s.store.Update(s.ctx, "people", "p1", ArrayRemove("tags", "a", "zzz")))

	doc, _ := s.store.Get(s.ctx, "people", "p1")
	s.Equal([]any{"b", "c"}, doc.Data["tags"])
}

func (s *MemoryStoreSuite) TestArrayUpdateOnScalarFails() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "p1", person{Name: "Ada"}))

	err := s.store.Update(s.ctx, "people", "p1", ArrayUnion("name", "x"))
	s.ErrorIs(err, ErrInvalidUpdate)
}

func (s *MemoryStoreSuite) TestSetFieldAndDeleteField() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "p1", person{Name: "Ada", Grade: "7"}))

	err := s.store.Update(s.ctx, "people", "p1", SetField("name", "Ada L"), DeleteField("grade"))
	s.Require().NoError(err)

	doc, _ := s.store.Get(s.ctx, "people", "p1")
	s.Equal("Ada L", doc.Data["name"])
	s.NotContains(doc.Data, "grade")
}

func (s *MemoryStoreSuite) TestUpdateMissingIsNotFound() {
	err := s.store.Update(s.ctx, "people", "ghost", SetField("name", "x"))
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeleteIsIdempotent() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "p1", person{Name: "Ada"}))
	s.Require().NoError(s.store.Delete(s.ctx, "people", "p1"))
	s.Require().NoError(s.store.Delete(s.ctx, "people", "p1"))

	_, err := s.store.Get(s.ctx, "people", "p1")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreSuite) seedPeople() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "a", person{Name: "Ada", Age: 12, Tags: []string{"coach"}}))
	s.Require().NoError(s.store.Set(s.ctx, "people", "b", person{Name: "Bo", Age: 9, Tags: []string{"player"}}))
	s.Require().NoError(s.store.Set(s.ctx, "people", "c", person{Name: "Cy", Age: 15, Tags: []string{"player", "coach"}}))
}

func (s *MemoryStoreSuite) TestListFiltersAndOrders() {
	s.seedPeople()

	docs, err := s.store.List(s.ctx, "people", Query{
		Filters: []Filter{Where("age", OpGreaterEqual, 10)},
		OrderBy: "age",
		Desc:    true,
	})
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("c", docs[0].ID)
	s.Equal("a", docs[1].ID)
}

func (s *MemoryStoreSuite) TestListArrayContainsAndIn() {
	s.seedPeople()

	docs, err := s.store.List(s.ctx, "people", Query{Filters: []Filter{Where("tags", OpArrayContains, "coach")}})
	s.Require().NoError(err)
	s.Len(docs, 2)

	docs, err = s.store.List(s.ctx, "people", Query{Filters: []Filter{Where("name", OpIn, []string{"Bo", "Cy", "Zed"})}})
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("b", docs[0].ID)
	s.Equal("c", docs[1].ID)
}

func (s *MemoryStoreSuite) TestListPaging() {
	s.seedPeople()

	docs, err := s.store.List(s.ctx, "people", Query{OrderBy: "name", Offset: 1, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("b", docs[0].ID)

	docs, err = s.store.List(s.ctx, "people", Query{Offset: 10})
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *MemoryStoreSuite) TestListRejectsUnknownOperator() {
	_, err := s.store.List(s.ctx, "people", Query{Filters: []Filter{Where("age", "~=", 1)}})
	s.ErrorIs(err, ErrInvalidFilter)

	_, err = s.store.List(s.ctx, "people", Query{Filters: []Filter{Where("age", OpIn, 1)}})
	s.ErrorIs(err, ErrInvalidFilter)
}

func (s *MemoryStoreSuite) TestTransactionCommitsAllWrites() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "a", person{Name: "Ada"}))

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Update(ctx, "people", "a", ArrayUnion("tags", "x")); err != nil {
			return err
		}
		return tx.Set(ctx, "people", "b", person{Name: "Bo"})
	})
	s.Require().NoError(err)

	a, _ := s.store.Get(s.ctx, "people", "a")
	s.Equal([]any{"x"}, a.Data["tags"])
	_, err = s.store.Get(s.ctx, "people", "b")
	s.NoError(err)
}

func (s *MemoryStoreSuite) TestTransactionRollsBackOnError() {
	s.Require().NoError(s.store.Set(s.ctx, "people", "a", person{Name: "Ada"}))
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Update(ctx, "people", "a", SetField("name", "changed")); err != nil {
			return err
		}
		if err := tx.Delete(ctx, "people", "a"); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	a, err := s.store.Get(s.ctx, "people", "a")
	s.Require().NoError(err)
	s.Equal("Ada", a.Data["name"])
}

func (s *MemoryStoreSuite) TestTransactionSeesItsOwnWrites() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Set(ctx, "people", "n", person{Name: "New", Age: 20}); err != nil {
			return err
		}
		doc, err := tx.Get(ctx, "people", "n")
		if err != nil {
			return err
		}
		s.Equal("New", doc.Data["name"])

		docs, err := tx.List(ctx, "people", Query{Filters: []Filter{Where("age", OpEqual, 20)}})
		if err != nil {
			return err
		}
		s.Len(docs, 1)

		if err := tx.Delete(ctx, "people", "n"); err != nil {
			return err
		}
		_, err = tx.Get(ctx, "people", "n")
		s.ErrorIs(err, ErrNotFound)
		return nil
	})
	s.Require().NoError(err)
}

func (s *MemoryStoreSuite) TestTxUnusableAfterFinish() {
	var leaked Tx
	s.Require().NoError(s.store.RunInTx(s.ctx, func(ctx context.Context, tx Tx) error {
		leaked = tx
		return nil
	}))
	s.ErrorIs(leaked.Set(s.ctx, "people", "x", person{}), ErrTxAlreadyEnded)
}
