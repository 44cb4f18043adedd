//go:build integration
// +build integration

package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ammerola/logistics-be/internal/adapters/db"
	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
	"github.com/ammerola/logistics-be/test/helpers"
)

type InventoryRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   *db.InventoryRepository
	ctx    context.Context
}

func (s *InventoryRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewInventoryRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *InventoryRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *InventoryRepositorySuite) TestSave() {
	item := helpers.CreateTestInventoryItem()

	s.Require().NoError(s.repo.Save(s.ctx, item))

	saved, err := s.repo.FindByName(s.ctx, item.Name)
	s.NoError(err)
	s.Require().NotNil(saved)
	s.Equal(item.TotalQuantity, saved.TotalQuantity)
	s.Equal(item.Category, saved.Category)
	s.Equal(item.Description, saved.Description)

	err = s.repo.Save(s.ctx, helpers.CreateTestInventoryItem())
	s.True(errors.Is(err, domain.ErrItemExists), "got %v", err)
}

func (s *InventoryRepositorySuite) TestUpsert() {
	item := helpers.CreateTestInventoryItem()

	created, err := s.repo.Upsert(s.ctx, item)
	s.Require().NoError(err)
	s.True(created)
	firstCreated := item.CreatedAt

	item.TotalQuantity = 55
	created, err = s.repo.Upsert(s.ctx, item)
	s.Require().NoError(err)
	s.False(created)
	s.True(firstCreated.Equal(item.CreatedAt))

	saved, err := s.repo.FindByName(s.ctx, item.Name)
	s.Require().NoError(err)
	s.Equal(55, saved.TotalQuantity)
}

func (s *InventoryRepositorySuite) TestFindByName_NotFound() {
	item, err := s.repo.FindByName(s.ctx, "Ghost")
	s.NoError(err)
	s.Nil(item)
}

func (s *InventoryRepositorySuite) TestFindByNames() {
	for _, name := range []string{"Chairs", "Tables", "Projector"} {
		s.Require().NoError(s.repo.Save(s.ctx, helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.Name = name
		})))
	}

	items, err := s.repo.FindByNames(s.ctx, []string{"Chairs", "Projector", "Ghost"})
	s.NoError(err)
	s.Len(items, 2)

	none, err := s.repo.FindByNames(s.ctx, nil)
	s.NoError(err)
	s.Empty(none)
}

func (s *InventoryRepositorySuite) TestList_Filtering() {
	fixtures := []struct {
		name, category, description string
	}{
		{"Chairs", "furniture", "stackable"},
		{"Tables", "furniture", "trestle tables"},
		{"Projector", "av", "HDMI projector"},
	}
	for _, f := range fixtures {
		s.Require().NoError(s.repo.Save(s.ctx, helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.Name = f.name
			i.Category = f.category
			i.Description = f.description
		})))
	}

	tests := []struct {
		name   string
		params ports.InventoryListParams
		want   []string
	}{
		{name: "all_sorted_by_name", params: ports.InventoryListParams{}, want: []string{"Chairs", "Projector", "Tables"}},
		{name: "by_category", params: ports.InventoryListParams{Category: "furniture"}, want: []string{"Chairs", "Tables"}},
		{name: "search_name", params: ports.InventoryListParams{Search: "chair"}, want: []string{"Chairs"}},
		{name: "search_description", params: ports.InventoryListParams{Search: "hdmi"}, want: []string{"Projector"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			items, err := s.repo.List(s.ctx, tt.params)
			s.Require().NoError(err)

			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.Name)
			}
			s.Equal(tt.want, names)
		})
	}
}

func (s *InventoryRepositorySuite) TestDelete() {
	item := helpers.CreateTestInventoryItem()
	s.Require().NoError(s.repo.Save(s.ctx, item))

	s.NoError(s.repo.Delete(s.ctx, item.Name))

	exists, err := s.repo.Exists(s.ctx, item.Name)
	s.NoError(err)
	s.False(exists)

	err = s.repo.Delete(s.ctx, item.Name)
	s.True(errors.Is(err, domain.ErrItemNotFound))
}

func (s *InventoryRepositorySuite) TestConcurrentOperations() {
	done := make(chan error, 10)

	for i := 0; i < 10; i++ {
		go func(idx int) {
			item := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
				item.Name = fmt.Sprintf("Concurrent Item %d", idx)
			})
			done <- s.repo.Save(context.Background(), item)
		}(i)
	}

	for i := 0; i < 10; i++ {
		s.NoError(<-done)
	}

	count, err := s.repo.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(10), count)
}

func TestInventoryRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(InventoryRepositorySuite))
}
