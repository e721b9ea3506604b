package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/models"
)

var profileCols = []string{
	"id", "user_id", "name", "avatar",
	"company", "website", "location", "status", "skills", "bio", "githubusername",
	"youtube", "twitter", "facebook", "linkedin", "instagram", "created_at",
}

func TestGetProfileByUserID_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM profiles p JOIN users u ON u.id = p.user_id WHERE p.user_id = \$1`).
		WithArgs("u-1").WillReturnError(sql.ErrNoRows)

	_, err := GetProfileByUserID(context.Background(), db, "u-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetProfileByUserID_Found(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE p.user_id = \$1`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(
			"pr-1", "u-1", "Ada", "//a",
			"ACME", "", "London", "Developer", "{go,sql}", "", "ada",
			"", "@ada", "", "", "", now))
	mock.ExpectQuery(`FROM experiences WHERE profile_id = ANY\(\$1\)`).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "title", "company", "location", "from_date", "to_date", "current", "description"}).
			AddRow("e-1", "pr-1", "Engineer", "ACME", "", from, nil, true, ""))
	mock.ExpectQuery(`FROM educations WHERE profile_id = ANY\(\$1\)`).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "school", "degree", "fieldofstudy", "from_date", "to_date", "current", "description"}))

	p, err := GetProfileByUserID(context.Background(), db, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.User.Name)
	assert.Equal(t, []string{"go", "sql"}, p.Skills)
	assert.Equal(t, "@ada", p.Social.Twitter)
	require.Len(t, p.Experience, 1)
	assert.Nil(t, p.Experience[0].To)
	assert.True(t, p.Experience[0].Current)
	assert.NotNil(t, p.Education)
	assert.Empty(t, p.Education)
}

func TestUpsertProfile(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`(?s)INSERT INTO profiles .* ON CONFLICT \(user_id\) DO UPDATE SET`).
		WithArgs("u-1", "", "", "", "Developer", sqlmock.AnyArg(), "", "", "", "", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := UpsertProfile(context.Background(), db, "u-1", models.ProfileFields{
		Status: "Developer",
		Skills: []string{"go"},
	})
	require.NoError(t, err)
}

func TestAddExperience_NullableTo(t *testing.T) {
	db, mock := newMock(t)
	from := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO experiences`).
		WithArgs("pr-1", "Engineer", "ACME", "", from, sql.NullTime{}, true, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := AddExperience(context.Background(), db, "pr-1", models.Experience{
		Title: "Engineer", Company: "ACME", From: from, Current: true,
	})
	require.NoError(t, err)
}

func TestDeleteEducation_ScopedToProfile(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM educations WHERE id = \$1 AND profile_id = \$2`).
		WithArgs("ed-1", "pr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, DeleteEducation(context.Background(), db, "pr-1", "ed-1"))
}
