package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/mux"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/database"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/httpx"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/models"
)

const noProfileMsg = "There is no profile for this user"

// skillList accepts either a comma separated string or a JSON array.
type skillList []string

func (s *skillList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = splitSkills(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = splitSkills(strings.Join(list, ","))
	return nil
}

func splitSkills(raw string) []string {
	skills := []string{}
	for _, part := range strings.Split(raw, ",") {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

type profileRequest struct {
	Company        string    `json:"company"`
	Website        string    `json:"website"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	Skills         skillList `json:"skills"`
	Bio            string    `json:"bio"`
	GitHubUsername string    `json:"githubusername"`
	YouTube        string    `json:"youtube"`
	Twitter        string    `json:"twitter"`
	Facebook       string    `json:"facebook"`
	LinkedIn       string    `json:"linkedin"`
	Instagram      string    `json:"instagram"`
}

func (r profileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required.Error("Status is required")),
		validation.Field(&r.Skills, validation.Required.Error("Skills is required")),
	)
}

func (r profileRequest) fields() models.ProfileFields {
	return models.ProfileFields{
		Company:        strings.TrimSpace(r.Company),
		Website:        strings.TrimSpace(r.Website),
		Location:       strings.TrimSpace(r.Location),
		Status:         strings.TrimSpace(r.Status),
		Skills:         r.Skills,
		Bio:            strings.TrimSpace(r.Bio),
		GitHubUsername: strings.TrimSpace(r.GitHubUsername),
		Social: models.Social{
			YouTube:   strings.TrimSpace(r.YouTube),
			Twitter:   strings.TrimSpace(r.Twitter),
			Facebook:  strings.TrimSpace(r.Facebook),
			LinkedIn:  strings.TrimSpace(r.LinkedIn),
			Instagram: strings.TrimSpace(r.Instagram),
		},
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func optionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

var isDate = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := parseDate(s); err != nil {
		return errors.New("must be a valid date")
	}
	return nil
})

type experienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

func (r experienceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("Title is required")),
		validation.Field(&r.Company, validation.Required.Error("Company is required")),
		validation.Field(&r.From, validation.Required.Error("From date is required and needs to be from the past"), isDate),
		validation.Field(&r.To, isDate),
	)
}

func (r experienceRequest) experience() models.Experience {
	from, _ := parseDate(r.From)
	return models.Experience{
		Title:       strings.TrimSpace(r.Title),
		Company:     strings.TrimSpace(r.Company),
		Location:    strings.TrimSpace(r.Location),
		From:        from,
		To:          optionalDate(r.To),
		Current:     r.Current,
		Description: r.Description,
	}
}

type educationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func (r educationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.School, validation.Required.Error("School is required")),
		validation.Field(&r.Degree, validation.Required.Error("Degree is required")),
		validation.Field(&r.FieldOfStudy, validation.Required.Error("Field of study is required")),
		validation.Field(&r.From, validation.Required.Error("From date is required and needs to be from the past"), isDate),
		validation.Field(&r.To, isDate),
	)
}

func (r educationRequest) education() models.Education {
	from, _ := parseDate(r.From)
	return models.Education{
		School:       strings.TrimSpace(r.School),
		Degree:       strings.TrimSpace(r.Degree),
		FieldOfStudy: strings.TrimSpace(r.FieldOfStudy),
		From:         from,
		To:           optionalDate(r.To),
		Current:      r.Current,
		Description:  r.Description,
	}
}

// decodeValid decodes the body into req and runs its validation rules,
// writing the 400 response on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, req validation.Validatable) bool {
	if err := httpx.DecodeJSON(w, r, req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := req.Validate(); err != nil {
		httpx.WriteValidation(w, err)
		return false
	}
	return true
}

// loadOwnProfile writes the error response itself and returns nil when the
// caller has no profile.
func loadOwnProfile(w http.ResponseWriter, r *http.Request, db *sql.DB) *models.Profile {
	profile, err := database.GetProfileByUserID(r.Context(), db, currentUserID(r))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			httpx.WriteError(w, http.StatusBadRequest, noProfileMsg)
			return nil
		}
		slog.Error("failed to get profile", "error", err)
		httpx.ServerError(w)
		return nil
	}
	return profile
}

func respondOwnProfile(w http.ResponseWriter, r *http.Request, db *sql.DB) {
	if profile := loadOwnProfile(w, r, db); profile != nil {
		httpx.WriteJSON(w, http.StatusOK, profile)
	}
}

func GetMyProfile(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondOwnProfile(w, r, db)
	}
}

func UpsertProfile(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if !decodeValid(w, r, &req) {
			return
		}

		if err := database.UpsertProfile(r.Context(), db, currentUserID(r), req.fields()); err != nil {
			slog.Error("failed to save profile", "error", err)
			httpx.ServerError(w)
			return
		}
		respondOwnProfile(w, r, db)
	}
}

func ListProfiles(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := database.ListProfiles(r.Context(), db)
		if err != nil {
			slog.Error("failed to list profiles", "error", err)
			httpx.ServerError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, profiles)
	}
}

func GetProfileByUser(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mux.Vars(r)["user_id"]
		if !validID(userID) {
			httpx.WriteError(w, http.StatusBadRequest, "Profile not found")
			return
		}

		profile, err := database.GetProfileByUserID(r.Context(), db, userID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				httpx.WriteError(w, http.StatusBadRequest, "Profile not found")
				return
			}
			slog.Error("failed to get profile", "error", err, "user_id", userID)
			httpx.ServerError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, profile)
	}
}

func DeleteAccount(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := currentUserID(r)
		if err := database.DeleteAccount(r.Context(), db, userID); err != nil {
			slog.Error("failed to delete account", "error", err, "user_id", userID)
			httpx.ServerError(w)
			return
		}
		slog.Info("account deleted", "user_id", userID)
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"msg": "User deleted"})
	}
}

func AddExperience(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req experienceRequest
		if !decodeValid(w, r, &req) {
			return
		}
		profile := loadOwnProfile(w, r, db)
		if profile == nil {
			return
		}

		if err := database.AddExperience(r.Context(), db, profile.ID, req.experience()); err != nil {
			slog.Error("failed to add experience", "error", err, "profile_id", profile.ID)
			httpx.ServerError(w)
			return
		}
		respondOwnProfile(w, r, db)
	}
}

func DeleteExperience(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := loadOwnProfile(w, r, db)
		if profile == nil {
			return
		}

		if expID := mux.Vars(r)["exp_id"]; validID(expID) {
			if err := database.DeleteExperience(r.Context(), db, profile.ID, expID); err != nil {
				slog.Error("failed to delete experience", "error", err, "profile_id", profile.ID)
				httpx.ServerError(w)
				return
			}
		}
		respondOwnProfile(w, r, db)
	}
}

func AddEducation(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req educationRequest
		if !decodeValid(w, r, &req) {
			return
		}
		profile := loadOwnProfile(w, r, db)
		if profile == nil {
			return
		}

		if err := database.AddEducation(r.Context(), db, profile.ID, req.education()); err != nil {
			slog.Error("failed to add education", "error", err, "profile_id", profile.ID)
			httpx.ServerError(w)
			return
		}
		respondOwnProfile(w, r, db)
	}
}

func DeleteEducation(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := loadOwnProfile(w, r, db)
		if profile == nil {
			return
		}

		if eduID := mux.Vars(r)["edu_id"]; validID(eduID) {
			if err := database.DeleteEducation(r.Context(), db, profile.ID, eduID); err != nil {
				slog.Error("failed to delete education", "error", err, "profile_id", profile.ID)
				httpx.ServerError(w)
				return
			}
		}
		respondOwnProfile(w, r, db)
	}
}
