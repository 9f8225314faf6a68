package app

import (
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	Student      repos.StudentRepo
	Institution  repos.InstitutionRepo
	Faculty      repos.FacultyRepo
	Field        repos.FieldRepo
	Cycle        repos.CycleRepo
	Author       repos.AuthorRepo
	Supervisor   repos.SupervisorRepo
	Keyword      repos.KeywordRepo
	Document     repos.DocumentRepo
	DocumentView repos.DocumentViewRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Student:      repos.NewStudentRepo(db, log),
		Institution:  repos.NewInstitutionRepo(db, log),
		Faculty:      repos.NewFacultyRepo(db, log),
		Field:        repos.NewFieldRepo(db, log),
		Cycle:        repos.NewCycleRepo(db, log),
		Author:       repos.NewAuthorRepo(db, log),
		Supervisor:   repos.NewSupervisorRepo(db, log),
		Keyword:      repos.NewKeywordRepo(db, log),
		Document:     repos.NewDocumentRepo(db, log),
		DocumentView: repos.NewDocumentViewRepo(db, log),
	}
}
