package pgrepo

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"
)

type JobRepoTestSuite struct {
	suite.Suite
	conn *recordingConn
	repo *FulfillmentJobRepository
	now  time.Time
}

func TestJobRepoSuite(t *testing.T) {
	suite.Run(t, new(JobRepoTestSuite))
}

func (s *JobRepoTestSuite) SetupTest() {
	s.conn = &recordingConn{}
	s.repo = NewFulfillmentJobRepository(s.conn)
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *JobRepoTestSuite) TestClaimDueSkipsLockedRows() {
	_, err := s.repo.ClaimDue(context.Background(), s.now, 50)
	s.ErrorIs(err, domain.ErrUnknown)

	q := s.conn.last()
	sql := compact(q.sql)
	s.Contains(sql, "DELETE FROM fulfillment_jobs WHERE order_id IN (")
	s.Contains(sql, "WHERE due_at <= $1 ORDER BY due_at LIMIT $2 FOR UPDATE SKIP LOCKED")
	s.Contains(sql, "RETURNING order_id, due_at, created_at")
	s.Equal([]any{s.now, int64(50)}, q.args)
}

func (s *JobRepoTestSuite) TestClaimDueRejectsZeroLimit() {
	_, err := s.repo.ClaimDue(context.Background(), s.now, 0)
	s.Require().Error(err)
	s.Empty(s.conn.queries)
}

func (s *JobRepoTestSuite) TestScheduleDuplicate() {
	s.conn.rows = []scanFunc{func(...any) error {
		return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "fulfillment_jobs_pkey"}
	}}

	_, err := s.repo.Schedule(context.Background(), 7, s.now)
	s.ErrorIs(err, domain.ErrDuplicateKey)
	s.Equal([]any{int64(7), s.now}, s.conn.last().args)
}

func (s *JobRepoTestSuite) TestDeleteReportsRemoval() {
	s.conn.tag = pgconn.NewCommandTag("DELETE 1")
	removed, err := s.repo.Delete(context.Background(), 7)
	s.Require().NoError(err)
	s.True(removed)
	s.Equal("DELETE FROM fulfillment_jobs WHERE order_id = $1", s.conn.last().sql)

	s.conn.tag = pgconn.NewCommandTag("DELETE 0")
	removed, err = s.repo.Delete(context.Background(), 7)
	s.Require().NoError(err)
	s.False(removed)
}
