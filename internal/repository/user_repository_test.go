package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UserRepositorySQLTestSuite verifies the SQL the repository emits against a
// mocked connection. Queries are matched as regular expressions.
type UserRepositorySQLTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	repo UserRepository
}

func (s *UserRepositorySQLTestSuite) SetupTest() {
	conn, mock, err := sqlmock.New()
	require.NoError(s.T(), err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	s.mock = mock
	s.repo = NewUserRepository(db)
}

func (s *UserRepositorySQLTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *UserRepositorySQLTestSuite) TestTouchActivity() {
	s.mock.ExpectExec(`UPDATE "users" SET "last_activity_at"=.+ WHERE id = .+ AND "users"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.TouchActivity(7))
}

func (s *UserRepositorySQLTestSuite) TestRecordLoginStampsBothColumns() {
	s.mock.ExpectExec(`UPDATE "users" SET .*"last_activity_at"=.*"last_login_at"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.RecordLogin(7))
}

func (s *UserRepositorySQLTestSuite) TestUsernameTakenExcludesSelf() {
	rows := sqlmock.NewRows([]string{"count"}).AddRow(0)
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username = .+ AND id <> .+ AND "users"."deleted_at" IS NULL`).
		WithArgs("janedoe", uint64(7)).
		WillReturnRows(rows)

	taken, err := s.repo.UsernameTaken("janedoe", 7)
	s.NoError(err)
	s.False(taken)
}

func (s *UserRepositorySQLTestSuite) TestUsernameTakenWithoutExclusion() {
	rows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username = .+ AND "users"."deleted_at" IS NULL`).
		WithArgs("janedoe").
		WillReturnRows(rows)

	taken, err := s.repo.UsernameTaken("janedoe", 0)
	s.NoError(err)
	s.True(taken)
}

func (s *UserRepositorySQLTestSuite) TestCountByIDs() {
	rows := sqlmock.NewRows([]string{"count"}).AddRow(2)
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id IN .+ AND "users"."deleted_at" IS NULL`).
		WithArgs(uint64(2), uint64(3)).
		WillReturnRows(rows)

	count, err := s.repo.CountByIDs([]uint64{2, 3})
	s.NoError(err)
	s.Equal(int64(2), count)
}

func (s *UserRepositorySQLTestSuite) TestDeleteIsSoft() {
	s.mock.ExpectExec(`UPDATE "users" SET "deleted_at"=.+ WHERE "users"."id" = .+ AND "users"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Delete(7))
}

func TestUserRepositorySQLTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositorySQLTestSuite))
}
