package repos

import (
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/catalog"
	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/identity"
	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/library"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type UserRepo = identity.UserRepo
type StudentRepo = identity.StudentRepo

type InstitutionRepo = catalog.InstitutionRepo
type FacultyRepo = catalog.FacultyRepo
type FieldRepo = catalog.FieldRepo
type CycleRepo = catalog.CycleRepo
type AuthorRepo = catalog.AuthorRepo
type SupervisorRepo = catalog.SupervisorRepo
type KeywordRepo = catalog.KeywordRepo

type DocumentRepo = library.DocumentRepo
type DocumentViewRepo = library.DocumentViewRepo
type SearchFilter = library.SearchFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return identity.NewUserRepo(db, baseLog)
}
func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return identity.NewStudentRepo(db, baseLog)
}
func NewInstitutionRepo(db *gorm.DB, baseLog *logger.Logger) InstitutionRepo {
	return catalog.NewInstitutionRepo(db, baseLog)
}
func NewFacultyRepo(db *gorm.DB, baseLog *logger.Logger) FacultyRepo {
	return catalog.NewFacultyRepo(db, baseLog)
}
func NewFieldRepo(db *gorm.DB, baseLog *logger.Logger) FieldRepo {
	return catalog.NewFieldRepo(db, baseLog)
}
func NewCycleRepo(db *gorm.DB, baseLog *logger.Logger) CycleRepo {
	return catalog.NewCycleRepo(db, baseLog)
}
func NewAuthorRepo(db *gorm.DB, baseLog *logger.Logger) AuthorRepo {
	return catalog.NewAuthorRepo(db, baseLog)
}
func NewSupervisorRepo(db *gorm.DB, baseLog *logger.Logger) SupervisorRepo {
	return catalog.NewSupervisorRepo(db, baseLog)
}
func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
	return catalog.NewKeywordRepo(db, baseLog)
}
func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return library.NewDocumentRepo(db, baseLog)
}
func NewDocumentViewRepo(db *gorm.DB, baseLog *logger.Logger) DocumentViewRepo {
	return library.NewDocumentViewRepo(db, baseLog)
}
