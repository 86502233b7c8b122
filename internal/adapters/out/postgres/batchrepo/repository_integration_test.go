package batchrepo_test

import (
	"context"
	"testing"
	"time"

	"lastmile/internal/adapters/out/postgres/batchrepo"
	"lastmile/internal/adapters/out/postgres/pgtest"
	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type BatchRepositoryIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	repo     *batchrepo.GormBatchRepository
}

func (s *BatchRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	s.Require().NoError(err)
	s.database = database
}

func (s *BatchRepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.database.Truncate())
	s.repo = batchrepo.NewGormBatchRepository(s.database.DB, tracking.NewTracker())
}

func (s *BatchRepositoryIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.database.Terminate(context.Background()))
}

func (s *BatchRepositoryIntegrationTestSuite) insert(openedAt time.Time) *batch.Batch {
	b, err := batch.NewBatch(kernel.NewUUID(), openedAt)
	s.Require().NoError(err)
	v, err := s.repo.Write(context.Background(), tracking.Insert, b)
	s.Require().NoError(err)
	b.SetVersion(v)
	return b
}

func (s *BatchRepositoryIntegrationTestSuite) TestWrite_CloseRoundTrip() {
	ctx := context.Background()
	opened := time.Now().UTC().Truncate(time.Microsecond)
	b := s.insert(opened)

	repo := batchrepo.NewGormBatchRepository(s.database.DB, tracking.NewTracker())
	loaded, err := repo.Get(ctx, b.ID())
	s.Require().NoError(err)
	s.Require().NoError(loaded.ReserveOrders(2))
	s.Require().NoError(loaded.Close(opened.Add(time.Hour)))
	v, err := repo.Write(ctx, tracking.Update, loaded)
	s.Require().NoError(err)
	s.Equal(2, v)

	reloaded, err := batchrepo.NewGormBatchRepository(s.database.DB, tracking.NewTracker()).Get(ctx, b.ID())
	s.Require().NoError(err)
	s.Equal(batch.Closed, reloaded.Status())
	s.Equal(2, reloaded.TotalOrders())
	s.Require().NotNil(reloaded.ClosedAt())
	s.Equal(opened.Add(time.Hour), *reloaded.ClosedAt())
	s.Equal(opened, reloaded.OpenedAt())

	_, err = repo.Write(ctx, tracking.Update, b)
	s.Require().ErrorIs(err, errs.ErrConflict)
}

func (s *BatchRepositoryIntegrationTestSuite) TestGetLatest() {
	ctx := context.Background()
	_, err := s.repo.GetLatest(ctx)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)

	now := time.Now().UTC().Truncate(time.Microsecond)
	latest := s.insert(now)
	s.insert(now.Add(-time.Hour))

	found, err := s.repo.GetLatest(ctx)
	s.Require().NoError(err)
	s.True(latest.ID().IsEqual(found.ID()))

	// A batch opened in the current unit of work wins before commit.
	added, err := batch.NewBatch(kernel.NewUUID(), now.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Add(ctx, added))

	found, err = s.repo.GetLatest(ctx)
	s.Require().NoError(err)
	s.Same(added, found)

	all, err := s.repo.GetAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func TestBatchRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(BatchRepositoryIntegrationTestSuite))
}
