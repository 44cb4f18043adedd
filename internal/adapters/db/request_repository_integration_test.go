//go:build integration
// +build integration

package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/logistics-be/internal/adapters/db"
	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
	"github.com/ammerola/logistics-be/test/helpers"
)

var (
	requester = domain.Actor{ID: "user-1", Role: domain.RoleRequester}
	handler   = domain.Actor{ID: "handler-1", Role: domain.RoleHandler}
)

type RequestRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   *db.RequestRepository
	ctx    context.Context
}

func (s *RequestRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewRequestRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *RequestRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *RequestRepositorySuite) createApproved(lines ...domain.BorrowLine) *domain.Request {
	req := helpers.CreateTestRequest(s.T(), requester.ID, lines...)
	s.Require().NoError(s.repo.Create(s.ctx, req))

	updated, err := s.repo.Update(s.ctx, req.ID, func(r *domain.Request) error {
		return r.Approve(handler, "", time.Now().UTC())
	})
	s.Require().NoError(err)
	return updated
}

func (s *RequestRepositorySuite) TestCreateAndFind() {
	req := helpers.CreateTestRequest(s.T(), requester.ID,
		domain.BorrowLine{Item: "Chairs", Quantity: 10},
		domain.BorrowLine{Item: "Tables", Quantity: 2},
	)
	s.Require().NoError(s.repo.Create(s.ctx, req))

	found, err := s.repo.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)

	s.Equal(req.UserID, found.UserID)
	s.Equal(domain.StatusPending, found.Status)
	s.Equal(req.Items, found.Items, "borrow lines keep creation order")
	s.Empty(found.ReturnedItems)
	s.Require().Len(found.Messages, 1)
	s.Equal(domain.MessageSystem, found.Messages[0].MessageType)
	s.Equal(int64(1), found.Version)
	s.True(req.ReturnDate.Equal(found.ReturnDate))
	s.Nil(found.ClosedAt)

	missing, err := s.repo.FindByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(missing)
}

func (s *RequestRepositorySuite) TestUpdate_AppendsLedgers() {
	req := s.createApproved(domain.BorrowLine{Item: "Chairs", Quantity: 10})
	s.Equal(int64(2), req.Version)

	updated, err := s.repo.Update(s.ctx, req.ID, func(r *domain.Request) error {
		_, err := r.ApplyReturn(requester, "Chairs", 4, time.Now().UTC())
		return err
	})
	s.Require().NoError(err)
	s.Equal(int64(3), updated.Version)

	updated, err = s.repo.Update(s.ctx, req.ID, func(r *domain.Request) error {
		_, err := r.ApplyReturn(handler, "Chairs", 6, time.Now().UTC())
		return err
	})
	s.Require().NoError(err)

	found, err := s.repo.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Require().Len(found.ReturnedItems, 2)
	s.Equal(4, found.ReturnedItems[0].Quantity)
	s.Equal(6, found.ReturnedItems[1].Quantity)
	s.Equal(handler.ID, found.ReturnedItems[1].ReturnedBy)
	s.True(found.IsReturned)
	s.Equal(len(updated.Messages), len(found.Messages))
	s.NoError(found.CheckIntegrity())
}

func (s *RequestRepositorySuite) TestUpdate_RejectedMutationPersistsNothing() {
	req := s.createApproved(domain.BorrowLine{Item: "Chairs", Quantity: 5})

	_, err := s.repo.Update(s.ctx, req.ID, func(r *domain.Request) error {
		_, err := r.ApplyReturns(requester, []domain.ReturnInput{
			{Item: "Chairs", Quantity: 2},
			{Item: "Chairs", Quantity: 9},
		}, time.Now().UTC())
		return err
	})
	s.True(errors.Is(err, domain.ErrOverReturn))

	found, err := s.repo.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Empty(found.ReturnedItems)
	s.Equal(req.Version, found.Version)
	s.Len(found.Messages, len(req.Messages))
}

func (s *RequestRepositorySuite) TestUpdate_NotFound() {
	_, err := s.repo.Update(s.ctx, uuid.New(), func(r *domain.Request) error { return nil })
	s.True(errors.Is(err, domain.ErrRequestNotFound))
}

func (s *RequestRepositorySuite) TestUpdate_ConcurrentReturnsSerialize() {
	req := s.createApproved(domain.BorrowLine{Item: "Chairs", Quantity: 5})

	var (
		wg   sync.WaitGroup
		errs = make(chan error, 2)
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.Update(context.Background(), req.ID, func(r *domain.Request) error {
				_, err := r.ApplyReturn(requester, "Chairs", 3, time.Now().UTC())
				return err
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrOverReturn):
			rejected++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, rejected)

	found, err := s.repo.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(3, domain.ReturnedQuantity(found, "Chairs"))
}

func (s *RequestRepositorySuite) TestClosePersistsClosedAt() {
	req := s.createApproved(domain.BorrowLine{Item: "Chairs", Quantity: 1})

	_, err := s.repo.Update(s.ctx, req.ID, func(r *domain.Request) error {
		_, err := r.Cancel(handler, "event moved", time.Now().UTC())
		return err
	})
	s.Require().NoError(err)

	found, err := s.repo.FindByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusCancelled, found.Status)
	s.NotNil(found.ClosedAt)
}

func (s *RequestRepositorySuite) TestQueries() {
	chairs := s.createApproved(domain.BorrowLine{Item: "Chairs", Quantity: 4})
	pending := helpers.CreateTestRequest(s.T(), "user-2", domain.BorrowLine{Item: "Tables", Quantity: 2})
	s.Require().NoError(s.repo.Create(s.ctx, pending))

	active, err := s.repo.ListActive(s.ctx, []string{"Chairs"})
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(chairs.ID, active[0].ID)
	s.Len(active[0].Items, 1)

	all, err := s.repo.ListActive(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 2)

	overdue, err := s.repo.ListOverdue(s.ctx, chairs.ReturnDate.Add(time.Hour), 10)
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(chairs.ID, overdue[0].ID)

	page, err := s.repo.List(s.ctx, ports.RequestListParams{UserID: "user-2"})
	s.Require().NoError(err)
	s.Equal(int64(1), page.TotalCount)
	s.Equal(pending.ID, page.Items[0].ID)

	counts, err := s.repo.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), counts[domain.StatusPending])
	s.Equal(int64(1), counts[domain.StatusInProgress])
}

func TestRequestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RequestRepositorySuite))
}
