package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type InstitutionInput struct {
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
	City    string `json:"city"`
}

// MetadataService serves the reference catalog behind registration and
// submissions. Listings are public; institutions are the only entries
// managed over the API, by platform admins.
type MetadataService interface {
	ListInstitutions(ctx context.Context) ([]*types.Institution, error)
	CreateInstitution(ctx context.Context, in InstitutionInput) (*types.Institution, error)
	UpdateInstitution(ctx context.Context, id uuid.UUID, in InstitutionInput) (*types.Institution, error)
	DeleteInstitution(ctx context.Context, id uuid.UUID) error

	ListFaculties(ctx context.Context, institutionID uuid.UUID) ([]*types.Faculty, error)
	ListFields(ctx context.Context) ([]*types.Field, error)
	ListCycles(ctx context.Context) ([]*types.Cycle, error)
	ListSupervisors(ctx context.Context) ([]*types.Supervisor, error)
}

type metadataService struct {
	db              *gorm.DB
	log             *logger.Logger
	institutionRepo repos.InstitutionRepo
	facultyRepo     repos.FacultyRepo
	fieldRepo       repos.FieldRepo
	cycleRepo       repos.CycleRepo
	supervisorRepo  repos.SupervisorRepo
}

func NewMetadataService(
	db *gorm.DB,
	log *logger.Logger,
	institutionRepo repos.InstitutionRepo,
	facultyRepo repos.FacultyRepo,
	fieldRepo repos.FieldRepo,
	cycleRepo repos.CycleRepo,
	supervisorRepo repos.SupervisorRepo,
) MetadataService {
	serviceLog := log.With("service", "MetadataService")
	return &metadataService{
		db:              db,
		log:             serviceLog,
		institutionRepo: institutionRepo,
		facultyRepo:     facultyRepo,
		fieldRepo:       fieldRepo,
		cycleRepo:       cycleRepo,
		supervisorRepo:  supervisorRepo,
	}
}

func (ms *metadataService) ListInstitutions(ctx context.Context) ([]*types.Institution, error) {
	institutions, err := ms.institutionRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return institutions, nil
}

func (ms *metadataService) CreateInstitution(ctx context.Context, in InstitutionInput) (*types.Institution, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.InvalidInput("institution name is required")
	}

	created, err := ms.institutionRepo.Create(ctx, nil, []*types.Institution{{
		ID:      uuid.New(),
		Name:    name,
		Acronym: strings.TrimSpace(in.Acronym),
		City:    strings.TrimSpace(in.City),
	}})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("an institution named %q already exists", name)
		}
		return nil, apierr.Unavailable(err)
	}
	return created[0], nil
}

func (ms *metadataService) UpdateInstitution(ctx context.Context, id uuid.UUID, in InstitutionInput) (*types.Institution, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.InvalidInput("institution name is required")
	}

	var out *types.Institution
	txErr := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ms.institutionRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(existing) == 0 {
			return apierr.NotFound("institution %s not found", id)
		}

		if err := ms.institutionRepo.UpdateFields(ctx, tx, id, map[string]interface{}{
			"name":    name,
			"acronym": strings.TrimSpace(in.Acronym),
			"city":    strings.TrimSpace(in.City),
		}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("an institution named %q already exists", name)
			}
			return apierr.Unavailable(err)
		}

		refreshed, err := ms.institutionRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
		if err != nil || len(refreshed) == 0 {
			return apierr.Unavailable(err)
		}
		out = refreshed[0]
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (ms *metadataService) DeleteInstitution(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	existing, err := ms.institutionRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return apierr.Unavailable(err)
	}
	if len(existing) == 0 {
		return apierr.NotFound("institution %s not found", id)
	}

	if err := ms.institutionRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id}); err != nil {
		return apierr.Unavailable(err)
	}
	return nil
}

func (ms *metadataService) ListFaculties(ctx context.Context, institutionID uuid.UUID) ([]*types.Faculty, error) {
	faculties, err := ms.facultyRepo.GetByInstitutionIDs(ctx, nil, []uuid.UUID{institutionID})
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return faculties, nil
}

func (ms *metadataService) ListFields(ctx context.Context) ([]*types.Field, error) {
	fields, err := ms.fieldRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return fields, nil
}

func (ms *metadataService) ListCycles(ctx context.Context) ([]*types.Cycle, error) {
	cycles, err := ms.cycleRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return cycles, nil
}

func (ms *metadataService) ListSupervisors(ctx context.Context) ([]*types.Supervisor, error) {
	supervisors, err := ms.supervisorRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return supervisors, nil
}
