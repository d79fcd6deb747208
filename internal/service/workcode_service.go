package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bouw-backoffice/internal/cache"
	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const activeFlight = "active"

type WorkCodeService interface {
	ResolveAvailableCodes(ctx context.Context, projectID uuid.UUID) ([]model.AvailableCode, error)
	ListWorkCodes(ctx context.Context, includeInactive bool) ([]model.WorkCode, error)
	CreateWorkCode(ctx context.Context, req *model.WorkCode, actor Actor) error
	UpdateWorkCode(ctx context.Context, id uuid.UUID, req *model.WorkCode, actor Actor) (*model.WorkCode, error)
	SetProjectCodes(ctx context.Context, projectID uuid.UUID, inputs []ProjectCodeInput, actor Actor) ([]model.AvailableCode, error)
}

// ProjectCodeInput is one entry of a project restriction: either a global
// work code reference or a custom code.
type ProjectCodeInput struct {
	WorkCodeID        *uuid.UUID `json:"work_code_id"`
	CustomCode        *string    `json:"custom_code"`
	CustomName        string     `json:"custom_name"`
	CustomDescription string     `json:"custom_description"`
}

type workCodeService struct {
	tx           repository.TxManager
	codeRepo     repository.WorkCodeRepository
	projectRepo  repository.ProjectRepository
	projectCodes repository.ProjectWorkCodeRepository
	cache        cache.WorkCodeCache
	group        singleflight.Group
	log          *zap.Logger

	// fillMu guards generation. A load only fills the cache when no write
	// invalidated it while the load was reading the database.
	fillMu     sync.Mutex
	generation uint64
}

func NewWorkCodeService(
	tx repository.TxManager,
	codeRepo repository.WorkCodeRepository,
	projectRepo repository.ProjectRepository,
	projectCodes repository.ProjectWorkCodeRepository,
	codeCache cache.WorkCodeCache,
	log *zap.Logger,
) WorkCodeService {
	return &workCodeService{
		tx:           tx,
		codeRepo:     codeRepo,
		projectRepo:  projectRepo,
		projectCodes: projectCodes,
		cache:        codeCache,
		log:          log.Named("workcode"),
	}
}

// activeCodes returns the active global catalog ordered by sort order.
// Concurrent misses share one database load.
func (s *workCodeService) activeCodes(ctx context.Context) ([]model.WorkCode, error) {
	if codes, ok, err := s.cache.Get(ctx); err != nil {
		s.log.Warn("work code cache read failed", zap.Error(err))
	} else if ok {
		return codes, nil
	}

	v, err, _ := s.group.Do(activeFlight, func() (interface{}, error) {
		// The flight is shared, so one caller's cancellation must not fail the rest.
		loadCtx := context.WithoutCancel(ctx)

		s.fillMu.Lock()
		startGen := s.generation
		s.fillMu.Unlock()

		codes, err := s.codeRepo.FindActive(loadCtx)
		if err != nil {
			return nil, err
		}

		s.fillMu.Lock()
		defer s.fillMu.Unlock()
		if startGen != s.generation {
			return codes, nil
		}
		if err := s.cache.Set(loadCtx, codes); err != nil {
			s.log.Warn("work code cache write failed", zap.Error(err))
		}
		return codes, nil
	})
	if err != nil {
		return nil, apperror.Store(err)
	}

	shared := v.([]model.WorkCode)
	codes := make([]model.WorkCode, len(shared))
	copy(codes, shared)
	return codes, nil
}

// invalidate drops the cached catalog after a write. Loads already in flight
// read the old catalog, so they are detached and barred from filling the cache.
func (s *workCodeService) invalidate(ctx context.Context) {
	s.fillMu.Lock()
	s.generation++
	err := s.cache.Invalidate(ctx)
	s.fillMu.Unlock()
	s.group.Forget(activeFlight)

	if err != nil {
		s.log.Warn("work code cache invalidation failed", zap.Error(err))
	}
}

// ResolveAvailableCodes computes the codes selectable for a project's time
// entries. A project without restriction rows gets the whole active catalog.
// Otherwise the project's global references and custom codes apply, plus the
// fallback code when the catalog has it. The result is sorted by code.
func (s *workCodeService) ResolveAvailableCodes(ctx context.Context, projectID uuid.UUID) ([]model.AvailableCode, error) {
	// 1. Global catalog
	global, err := s.activeCodes(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Project restriction
	rows, err := s.projectCodes.FindByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Store(err)
	}

	return resolveCodes(global, rows), nil
}

func resolveCodes(global []model.WorkCode, rows []model.ProjectWorkCode) []model.AvailableCode {
	var available []model.AvailableCode

	if len(rows) == 0 {
		// 3. Unrestricted
		available = make([]model.AvailableCode, 0, len(global))
		for _, w := range global {
			available = append(available, model.AvailableFromWorkCode(w))
		}
	} else {
		// 4. Restricted to the project's rows
		byID := make(map[uuid.UUID]model.WorkCode, len(global))
		for _, w := range global {
			byID[w.ID] = w
		}
		seen := make(map[uuid.UUID]bool)
		for _, r := range rows {
			switch {
			case r.IsCustom():
				available = append(available, model.AvailableCode{
					Code:        *r.CustomCode,
					Name:        r.CustomName,
					Description: r.CustomDescription,
					IsCustom:    true,
				})
			case r.WorkCodeID != nil:
				w, ok := byID[*r.WorkCodeID]
				if !ok || seen[w.ID] {
					continue // inactive, unknown or repeated
				}
				seen[w.ID] = true
				available = append(available, model.AvailableFromWorkCode(w))
			}
		}

		// 5. Fallback code, when the catalog has it
		if !containsCode(available, model.FallbackWorkCode) {
			for _, w := range global {
				if w.Code == model.FallbackWorkCode {
					available = append(available, model.AvailableFromWorkCode(w))
					break
				}
			}
		}
	}

	// 6. Lexicographic by code
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Code < available[j].Code
	})
	return available
}

func containsCode(codes []model.AvailableCode, code string) bool {
	for _, c := range codes {
		if c.Code == code {
			return true
		}
	}
	return false
}

func (s *workCodeService) ListWorkCodes(ctx context.Context, includeInactive bool) ([]model.WorkCode, error) {
	if !includeInactive {
		return s.activeCodes(ctx)
	}
	codes, err := s.codeRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return codes, nil
}

func (s *workCodeService) CreateWorkCode(ctx context.Context, req *model.WorkCode, actor Actor) error {
	req.Code = strings.TrimSpace(req.Code)
	if err := validate(req); err != nil {
		return err
	}

	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()
	if err := s.codeRepo.Create(ctx, req); err != nil {
		return apperror.Store(err)
	}

	s.invalidate(ctx)
	s.log.Info("work code created", zap.String("code", req.Code), zap.String("actor_id", actor.ID.String()))
	return nil
}

func (s *workCodeService) UpdateWorkCode(ctx context.Context, id uuid.UUID, req *model.WorkCode, actor Actor) (*model.WorkCode, error) {
	req.Code = strings.TrimSpace(req.Code)
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.codeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}

	existing.Code = req.Code
	existing.Name = req.Name
	existing.Description = req.Description
	existing.Active = req.Active
	existing.SortOrder = req.SortOrder
	existing.UpdatedBy = actor.ID.String()

	if err := s.codeRepo.Update(ctx, existing); err != nil {
		return nil, apperror.Store(err)
	}

	s.invalidate(ctx)
	return existing, nil
}

// SetProjectCodes replaces the project's restriction. An empty list lifts it.
func (s *workCodeService) SetProjectCodes(ctx context.Context, projectID uuid.UUID, inputs []ProjectCodeInput, actor Actor) ([]model.AvailableCode, error) {
	// 1. Project must exist
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, apperror.Store(err)
	}

	// 2. Every input carries exactly one source
	var refIDs []uuid.UUID
	seenCodes := make(map[string]bool)
	rows := make([]model.ProjectWorkCode, 0, len(inputs))
	for i, in := range inputs {
		hasRef := in.WorkCodeID != nil && *in.WorkCodeID != uuid.Nil
		hasCustom := in.CustomCode != nil && strings.TrimSpace(*in.CustomCode) != ""
		if hasRef == hasCustom {
			return nil, apperror.Validationf("entry %d: set either work_code_id or custom_code", i)
		}

		row := model.ProjectWorkCode{ProjectID: projectID}
		row.CreatedBy = actor.ID.String()
		row.UpdatedBy = actor.ID.String()
		if hasRef {
			id := *in.WorkCodeID
			row.WorkCodeID = &id
			refIDs = append(refIDs, id)
		} else {
			code := strings.TrimSpace(*in.CustomCode)
			if len(code) > 20 {
				return nil, apperror.Validationf("entry %d: custom_code is longer than 20 characters", i)
			}
			if seenCodes[code] {
				return nil, apperror.Validationf("entry %d: duplicate custom_code %q", i, code)
			}
			seenCodes[code] = true
			row.CustomCode = &code
			row.CustomName = strings.TrimSpace(in.CustomName)
			row.CustomDescription = in.CustomDescription
		}
		rows = append(rows, row)
	}

	// 3. Referenced codes must exist
	if len(refIDs) > 0 {
		found, err := s.codeRepo.FindByIDs(ctx, refIDs)
		if err != nil {
			return nil, apperror.Store(err)
		}
		known := make(map[uuid.UUID]bool, len(found))
		for _, w := range found {
			known[w.ID] = true
		}
		for _, id := range refIDs {
			if !known[id] {
				return nil, apperror.Validationf("unknown work code %s", id)
			}
		}
	}

	// 4. Replace atomically
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.projectCodes.ReplaceForProject(ctx, projectID, rows)
	})
	if err != nil {
		return nil, apperror.Store(err)
	}

	s.log.Info("project work codes replaced",
		zap.String("project_id", projectID.String()),
		zap.Int("entries", len(rows)),
		zap.String("actor_id", actor.ID.String()),
	)
	return s.ResolveAvailableCodes(ctx, projectID)
}
