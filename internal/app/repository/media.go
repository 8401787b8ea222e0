package repository

import (
	"renovation/internal/app/ds"
)

func (r *Repository) CreateSurvey(s *ds.Survey) error {
	if _, err := r.GetProject(s.ProjectID); err != nil {
		return err
	}
	return r.db.Create(s).Error
}

func (r *Repository) GetSurvey(id uint) (*ds.Survey, error) {
	var s ds.Survey
	if err := r.db.Preload("Photos").First(&s, id).Error; err != nil {
		return nil, notFound(err, "survey")
	}
	return &s, nil
}

func (r *Repository) ListSurveys(projectID uint) ([]ds.Survey, error) {
	var surveys []ds.Survey
	err := r.db.Preload("Photos").Where("project_id = ?", projectID).
		Order("surveyed_at DESC, id DESC").Find(&surveys).Error
	return surveys, err
}

func (r *Repository) CreatePhoto(p *ds.Photo) error {
	return r.db.Create(p).Error
}

func (r *Repository) GetPhoto(id uint) (*ds.Photo, error) {
	var p ds.Photo
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, notFound(err, "photo")
	}
	return &p, nil
}

// ListPhotos returns a project's photos, optionally those of one survey.
func (r *Repository) ListPhotos(projectID uint, surveyID *uint) ([]ds.Photo, error) {
	q := r.db.Where("project_id = ?", projectID)
	if surveyID != nil {
		q = q.Where("survey_id = ?", *surveyID)
	}
	var photos []ds.Photo
	err := q.Order("created_at DESC, id DESC").Find(&photos).Error
	return photos, err
}

func (r *Repository) DeletePhoto(id uint) error {
	result := r.db.Delete(&ds.Photo{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing("photo")
	}
	return nil
}

func (r *Repository) CreateDocument(d *ds.Document) error {
	if _, err := r.GetProject(d.ProjectID); err != nil {
		return err
	}
	return r.db.Create(d).Error
}

func (r *Repository) GetDocument(id uint) (*ds.Document, error) {
	var d ds.Document
	if err := r.db.First(&d, id).Error; err != nil {
		return nil, notFound(err, "document")
	}
	return &d, nil
}

func (r *Repository) ListDocuments(projectID uint, category string) ([]ds.Document, error) {
	q := r.db.Where("project_id = ?", projectID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var docs []ds.Document
	err := q.Order("created_at DESC, id DESC").Find(&docs).Error
	return docs, err
}

func (r *Repository) DeleteDocument(id uint) error {
	result := r.db.Delete(&ds.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing("document")
	}
	return nil
}
