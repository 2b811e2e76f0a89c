package service

import (
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"

	"gorm.io/gorm"
)

// WorkerService manages the HR-side worker registry and its optional link
// to platform users.
type WorkerService struct {
	WorkerRepo      *repository.WorkerRepository
	UserRepo        *repository.UserRepository
	ReinductionRepo *repository.ReinductionRepository
	DB              *gorm.DB
}

func NewWorkerService(
	workerRepo *repository.WorkerRepository,
	userRepo *repository.UserRepository,
	reinductionRepo *repository.ReinductionRepository,
	db *gorm.DB,
) *WorkerService {
	return &WorkerService{
		WorkerRepo:      workerRepo,
		UserRepo:        userRepo,
		ReinductionRepo: reinductionRepo,
		DB:              db,
	}
}

func (s *WorkerService) Create(worker *model.Worker) error {
	if _, err := s.WorkerRepo.FindByDocumentNumber(worker.DocumentNumber); err == nil {
		return &util.InvalidStateError{Msg: "document number already registered"}
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	return s.WorkerRepo.Create(worker)
}

func (s *WorkerService) GetByID(id uint) (*model.Worker, error) {
	worker, err := s.WorkerRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrWorkerNotFound
		}
		return nil, err
	}
	return worker, nil
}

func (s *WorkerService) List(page, limit int, activeOnly bool) ([]model.Worker, int64, error) {
	return s.WorkerRepo.List(page, limit, activeOnly)
}

func (s *WorkerService) Update(worker *model.Worker) error {
	return s.WorkerRepo.Update(worker)
}

// LinkUser binds a worker record to a user identity. One user can back at
// most one worker.
func (s *WorkerService) LinkUser(workerID, userID uint) (*model.Worker, error) {
	worker, err := s.GetByID(workerID)
	if err != nil {
		return nil, err
	}
	if worker.UserID != nil {
		return nil, &util.InvalidStateError{Msg: "worker is already linked to a user"}
	}

	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.WorkerRepo.FindByUserID(userID); err == nil {
		return nil, &util.InvalidStateError{Msg: "user is already linked to another worker"}
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := s.WorkerRepo.LinkUser(workerID, userID); err != nil {
		return nil, err
	}
	worker.UserID = &userID
	return worker, nil
}

func (s *WorkerService) UnlinkUser(workerID uint) (*model.Worker, error) {
	worker, err := s.GetByID(workerID)
	if err != nil {
		return nil, err
	}
	if worker.UserID == nil {
		return nil, &util.InvalidStateError{Msg: "worker has no linked user"}
	}

	if err := s.WorkerRepo.UnlinkUser(workerID); err != nil {
		return nil, err
	}
	worker.UserID = nil
	return worker, nil
}

// ScheduleReinduction books the yearly obligation for a worker. Duplicate
// years are rejected by the unique index; callers get a clean error first.
func (s *WorkerService) ScheduleReinduction(workerID uint, year int, dueDate time.Time) (*model.ReinductionRecord, error) {
	if _, err := s.GetByID(workerID); err != nil {
		return nil, err
	}

	if _, err := s.ReinductionRepo.FindByWorkerAndYear(workerID, year); err == nil {
		return nil, &util.InvalidStateError{Msg: "reinduction already scheduled for this year"}
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	record := &model.ReinductionRecord{
		WorkerID: workerID,
		Year:     year,
		Status:   model.ReinductionScheduled,
		DueDate:  dueDate,
	}
	if err := s.ReinductionRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *WorkerService) ReinductionHistory(workerID uint) ([]model.ReinductionRecord, error) {
	if _, err := s.GetByID(workerID); err != nil {
		return nil, err
	}
	return s.ReinductionRepo.FindByWorker(workerID)
}

// MarkOverdueReinductions sweeps past-due records into overdue status.
func (s *WorkerService) MarkOverdueReinductions(now time.Time) (int, error) {
	records, err := s.ReinductionRepo.FindDue(now.Year())
	if err != nil {
		return 0, err
	}

	flipped := 0
	for i := range records {
		r := &records[i]
		if r.Status == model.ReinductionCompleted || r.Status == model.ReinductionOverdue {
			continue
		}
		if now.After(r.DueDate) {
			r.Status = model.ReinductionOverdue
			if err := s.ReinductionRepo.Save(r); err != nil {
				return flipped, err
			}
			flipped++
		}
	}
	return flipped, nil
}
