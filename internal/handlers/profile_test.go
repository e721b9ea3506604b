package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileID = "44444444-4444-4444-4444-444444444444"

var profileCols = []string{
	"id", "user_id", "name", "avatar",
	"company", "website", "location", "status", "skills", "bio", "githubusername",
	"youtube", "twitter", "facebook", "linkedin", "instagram", "created_at",
}

func expectProfile(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectQuery(`FROM profiles p JOIN users u ON u.id = p.user_id WHERE p.user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(
			profileID, userID, "Ada", "//a",
			"Acme", "", "London", "Developer", "{go,sql}", "", "ada",
			"", "", "", "", "", testNow))
	mock.ExpectQuery(`FROM experiences WHERE profile_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "title", "company", "location", "from_date", "to_date", "current", "description"}))
	mock.ExpectQuery(`FROM educations WHERE profile_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "school", "degree", "fieldofstudy", "from_date", "to_date", "current", "description"}))
}

func expectNoProfile(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectQuery(`FROM profiles p JOIN users u`).WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(profileCols))
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"go", "sql", "docker"}, splitSkills(" go, sql ,,docker "))
	assert.Equal(t, []string{}, splitSkills(""))
}

func TestSkillList_AcceptsArray(t *testing.T) {
	var req profileRequest
	require.NoError(t, json.Unmarshal([]byte(`{"skills":["go"," sql"]}`), &req))
	assert.Equal(t, skillList{"go", "sql"}, req.Skills)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2020-05-01")
	require.NoError(t, err)
	assert.Equal(t, 2020, d.Year())

	_, err = parseDate("2020-05-01T10:00:00Z")
	require.NoError(t, err)

	_, err = parseDate("yesterday")
	assert.Error(t, err)
}

func TestGetMyProfile_None(t *testing.T) {
	db, mock := newMockDB(t)
	expectNoProfile(mock, userA)

	rec := call(GetMyProfile(db), http.MethodGet, userA, "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "There is no profile for this user", decodeMsg(t, rec))
}

func TestGetMyProfile_Success(t *testing.T) {
	db, mock := newMockDB(t)
	expectProfile(mock, userA)

	rec := call(GetMyProfile(db), http.MethodGet, userA, "", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Skills []string `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ada", body.User.Name)
	assert.Equal(t, []string{"go", "sql"}, body.Skills)
}

func TestUpsertProfile_ValidationSkipsStore(t *testing.T) {
	db, _ := newMockDB(t)

	rec := call(UpsertProfile(db), http.MethodPost, userA, `{"skills":" , "}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"skills", "status"}, decodeParams(t, rec))
}

func TestUpsertProfile_Success(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(userA, "Acme", "", "", "Developer", pq.Array([]string{"go", "sql"}), "", "ada",
			"", "https://twitter.com/ada", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfile(mock, userA)

	rec := call(UpsertProfile(db), http.MethodPost, userA,
		`{"company":"Acme","status":"Developer","skills":"go, sql","githubusername":"ada","twitter":"https://twitter.com/ada"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestListProfiles_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM profiles p`).WillReturnError(errors.New("db down"))

	rec := call(ListProfiles(db), http.MethodGet, "", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetProfileByUser_Malformed(t *testing.T) {
	db, _ := newMockDB(t)

	rec := call(GetProfileByUser(db), http.MethodGet, "", "", map[string]string{"user_id": "42"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Profile not found", decodeMsg(t, rec))
}

func TestGetProfileByUser_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	expectNoProfile(mock, userB)

	rec := call(GetProfileByUser(db), http.MethodGet, "", "", map[string]string{"user_id": userB})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Profile not found", decodeMsg(t, rec))
}

func TestGetProfileByUser_Success(t *testing.T) {
	db, mock := newMockDB(t)
	expectProfile(mock, userB)

	rec := call(GetProfileByUser(db), http.MethodGet, "", "", map[string]string{"user_id": userB})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), profileID)
}

func TestDeleteAccount(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM posts WHERE user_id`).WithArgs(userA).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM profiles WHERE user_id`).WithArgs(userA).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id`).WithArgs(userA).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := call(DeleteAccount(db), http.MethodDelete, userA, "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted", decodeMsg(t, rec))
}

func TestDeleteAccount_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM posts`).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	rec := call(DeleteAccount(db), http.MethodDelete, userA, "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAddExperience_Validation(t *testing.T) {
	db, _ := newMockDB(t)

	rec := call(AddExperience(db), http.MethodPut, userA, `{"title":"Dev","from":"someday"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"company", "from"}, decodeParams(t, rec))
}

func TestAddExperience_NoProfile(t *testing.T) {
	db, mock := newMockDB(t)
	expectNoProfile(mock, userA)

	rec := call(AddExperience(db), http.MethodPut, userA, `{"title":"Dev","company":"Acme","from":"2020-01-01"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "There is no profile for this user", decodeMsg(t, rec))
}

func TestAddExperience_Success(t *testing.T) {
	db, mock := newMockDB(t)
	expectProfile(mock, userA)
	mock.ExpectExec(`INSERT INTO experiences`).
		WithArgs(profileID, "Dev", "Acme", "", sqlmock.AnyArg(), sqlmock.AnyArg(), true, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfile(mock, userA)

	rec := call(AddExperience(db), http.MethodPut, userA,
		`{"title":"Dev","company":"Acme","from":"2020-01-01","current":true}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDeleteExperience_MalformedIDIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	expectProfile(mock, userA)
	expectProfile(mock, userA)

	rec := call(DeleteExperience(db), http.MethodDelete, userA, "", map[string]string{"exp_id": "bogus"})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteExperience_Success(t *testing.T) {
	const expID = "55555555-5555-5555-5555-555555555555"
	db, mock := newMockDB(t)
	expectProfile(mock, userA)
	mock.ExpectExec(`DELETE FROM experiences`).WithArgs(expID, profileID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfile(mock, userA)

	rec := call(DeleteExperience(db), http.MethodDelete, userA, "", map[string]string{"exp_id": expID})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddEducation_Validation(t *testing.T) {
	db, _ := newMockDB(t)

	rec := call(AddEducation(db), http.MethodPut, userA, `{"school":"MIT","to":"soon"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"degree", "fieldofstudy", "from", "to"}, decodeParams(t, rec))
}

func TestAddEducation_Success(t *testing.T) {
	db, mock := newMockDB(t)
	expectProfile(mock, userA)
	mock.ExpectExec(`INSERT INTO educations`).
		WithArgs(profileID, "MIT", "BSc", "CS", sqlmock.AnyArg(), sqlmock.AnyArg(), false, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfile(mock, userA)

	rec := call(AddEducation(db), http.MethodPut, userA,
		`{"school":"MIT","degree":"BSc","fieldofstudy":"CS","from":"2010-09-01","to":"2014-06-01"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDeleteEducation_Success(t *testing.T) {
	const eduID = "66666666-6666-6666-6666-666666666666"
	db, mock := newMockDB(t)
	expectProfile(mock, userA)
	mock.ExpectExec(`DELETE FROM educations`).WithArgs(eduID, profileID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfile(mock, userA)

	rec := call(DeleteEducation(db), http.MethodDelete, userA, "", map[string]string{"edu_id": eduID})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpsertProfile_EmptyBodyReportsFields(t *testing.T) {
	db, _ := newMockDB(t)

	rec := call(UpsertProfile(db), http.MethodPost, userA, "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"skills", "status"}, decodeParams(t, rec))
}
