package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/dbx"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/models"
	"github.com/lib/pq"
)

const profileSelect = `
	SELECT p.id, p.user_id, u.name, u.avatar,
	       p.company, p.website, p.location, p.status, p.skills, p.bio, p.githubusername,
	       p.youtube, p.twitter, p.facebook, p.linkedin, p.instagram, p.created_at
	FROM profiles p JOIN users u ON u.id = p.user_id`

func scanProfile(row scanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.User.ID, &p.User.Name, &p.User.Avatar,
		&p.Company, &p.Website, &p.Location, &p.Status, pq.Array(&p.Skills), &p.Bio, &p.GitHubUsername,
		&p.Social.YouTube, &p.Social.Twitter, &p.Social.Facebook, &p.Social.LinkedIn, &p.Social.Instagram,
		&p.Date)
	if err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	p.Experience = []models.Experience{}
	p.Education = []models.Education{}
	return &p, nil
}

// UpsertProfile creates the user's profile or replaces its editable fields.
func UpsertProfile(ctx context.Context, db dbx.DBTX, userID string, f models.ProfileFields) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, company, website, location, status, skills, bio, githubusername,
		                      youtube, twitter, facebook, linkedin, instagram)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
		    company = EXCLUDED.company,
		    website = EXCLUDED.website,
		    location = EXCLUDED.location,
		    status = EXCLUDED.status,
		    skills = EXCLUDED.skills,
		    bio = EXCLUDED.bio,
		    githubusername = EXCLUDED.githubusername,
		    youtube = EXCLUDED.youtube,
		    twitter = EXCLUDED.twitter,
		    facebook = EXCLUDED.facebook,
		    linkedin = EXCLUDED.linkedin,
		    instagram = EXCLUDED.instagram`,
		userID, f.Company, f.Website, f.Location, f.Status, pq.Array(f.Skills), f.Bio, f.GitHubUsername,
		f.Social.YouTube, f.Social.Twitter, f.Social.Facebook, f.Social.LinkedIn, f.Social.Instagram,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func GetProfileByUserID(ctx context.Context, db dbx.DBTX, userID string) (*models.Profile, error) {
	p, err := scanProfile(db.QueryRowContext(ctx, profileSelect+` WHERE p.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if err := loadProfileEntries(ctx, db, []*models.Profile{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func ListProfiles(ctx context.Context, db dbx.DBTX) ([]models.Profile, error) {
	rows, err := db.QueryContext(ctx, profileSelect+` ORDER BY p.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadProfileEntries(ctx, db, ptrs); err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(ptrs))
	for _, p := range ptrs {
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

// loadProfileEntries fills experience and education, newest first.
func loadProfileEntries(ctx context.Context, db dbx.DBTX, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	byID := make(map[string]*models.Profile, len(profiles))
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, profile_id, title, company, location, from_date, to_date, current, description
		FROM experiences WHERE profile_id = ANY($1)
		ORDER BY created_at DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get experience: %w", err)
	}
	for rows.Next() {
		var e models.Experience
		var profileID string
		var to sql.NullTime
		if err := rows.Scan(&e.ID, &profileID, &e.Title, &e.Company, &e.Location, &e.From, &to, &e.Current, &e.Description); err != nil {
			rows.Close()
			return err
		}
		e.To = timePtr(to)
		if p, ok := byID[profileID]; ok {
			p.Experience = append(p.Experience, e)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.QueryContext(ctx, `
		SELECT id, profile_id, school, degree, fieldofstudy, from_date, to_date, current, description
		FROM educations WHERE profile_id = ANY($1)
		ORDER BY created_at DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get education: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e models.Education
		var profileID string
		var to sql.NullTime
		if err := rows.Scan(&e.ID, &profileID, &e.School, &e.Degree, &e.FieldOfStudy, &e.From, &to, &e.Current, &e.Description); err != nil {
			return err
		}
		e.To = timePtr(to)
		if p, ok := byID[profileID]; ok {
			p.Education = append(p.Education, e)
		}
	}
	return rows.Err()
}

func AddExperience(ctx context.Context, db dbx.DBTX, profileID string, e models.Experience) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO experiences (profile_id, title, company, location, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		profileID, e.Title, e.Company, e.Location, e.From, nullTime(e.To), e.Current, e.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to add experience: %w", err)
	}
	return nil
}

func DeleteExperience(ctx context.Context, db dbx.DBTX, profileID, expID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM experiences WHERE id = $1 AND profile_id = $2`, expID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete experience: %w", err)
	}
	return nil
}

func AddEducation(ctx context.Context, db dbx.DBTX, profileID string, e models.Education) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO educations (profile_id, school, degree, fieldofstudy, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		profileID, e.School, e.Degree, e.FieldOfStudy, e.From, nullTime(e.To), e.Current, e.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to add education: %w", err)
	}
	return nil
}

func DeleteEducation(ctx context.Context, db dbx.DBTX, profileID, eduID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM educations WHERE id = $1 AND profile_id = $2`, eduID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete education: %w", err)
	}
	return nil
}
