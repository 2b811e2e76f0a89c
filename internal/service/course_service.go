package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"
	"sst_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseService manages the catalog: courses, modules, materials and
// material file uploads.
type CourseService struct {
	CourseRepo *repository.CourseRepository
	LessonRepo *repository.LessonRepository
	Storage    StorageProvider
	DB         *gorm.DB
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	storage StorageProvider,
	db *gorm.DB,
) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		LessonRepo: lessonRepo,
		Storage:    storage,
		DB:         db,
	}
}

func (s *CourseService) Create(course *model.Course) error {
	if course.PassingScore == 0 {
		course.PassingScore = util.DefaultPassingScore
	}
	return s.CourseRepo.Create(course)
}

func (s *CourseService) GetByID(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByIDWithContent(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) List(page, limit int, courseType, status string) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, courseType, status)
}

func (s *CourseService) Update(course *model.Course) error {
	return s.CourseRepo.Update(course)
}

// Publish opens the course for enrollment. A course needs at least one
// module with content before it can go live.
func (s *CourseService) Publish(id uint) (*model.Course, error) {
	course, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if course.Status == model.CoursePublished {
		return course, nil
	}

	hasContent := false
	for _, m := range course.Modules {
		if len(m.Materials) > 0 {
			hasContent = true
			break
		}
		lessons, err := s.LessonRepo.CountPublishedByModule(m.ID)
		if err != nil {
			return nil, err
		}
		if lessons > 0 {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return nil, &util.InvalidStateError{Msg: "course has no content to publish"}
	}

	now := time.Now().UTC()
	course.Status = model.CoursePublished
	course.PublishedAt = &now
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Archive(id uint) (*model.Course, error) {
	course, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	course.Status = model.CourseArchived
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) AddModule(courseID uint, module *model.CourseModule) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrCourseNotFound
		}
		return err
	}
	module.CourseID = courseID
	return s.CourseRepo.CreateModule(module)
}

func (s *CourseService) AddMaterial(moduleID uint, material *model.CourseMaterial) error {
	if _, err := s.CourseRepo.FindModuleByID(moduleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrModuleNotFound
		}
		return err
	}
	material.ModuleID = moduleID
	return s.CourseRepo.CreateMaterial(material)
}

// UploadMaterialFile stores the uploaded file and, for videos, probes the
// duration so the player can show it without a round trip.
func (s *CourseService) UploadMaterialFile(ctx context.Context, materialID uint, header *multipart.FileHeader) (*model.CourseMaterial, error) {
	material, err := s.CourseRepo.FindMaterialByID(materialID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrMaterialNotFound
		}
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("materials/%s%s", uuid.NewString(), ext)
	contentType := header.Header.Get("Content-Type")

	url, err := s.Storage.Upload(ctx, filename, src, header.Size, contentType)
	if err != nil {
		return nil, err
	}
	material.FileURL = url

	if material.MaterialType == model.MaterialVideo {
		if duration, err := s.probeVideoDuration(header); err != nil {
			logger.Log.Warn("Video probe failed",
				zap.Uint("materialId", materialID),
				zap.Error(err))
		} else {
			material.DurationSeconds = duration
		}
	}

	if err := s.CourseRepo.UpdateMaterial(material); err != nil {
		return nil, err
	}
	return material, nil
}

// probeVideoDuration writes the upload to a temp file for ffprobe; the
// probe needs a seekable path, not a stream.
func (s *CourseService) probeVideoDuration(header *multipart.FileHeader) (float64, error) {
	src, err := header.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "probe-*"+filepath.Ext(header.Filename))
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		return 0, err
	}

	info, err := util.GetVideoInfo(tmp.Name())
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

func (s *CourseService) DeleteMaterial(id uint) error {
	if _, err := s.CourseRepo.FindMaterialByID(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrMaterialNotFound
		}
		return err
	}
	return s.CourseRepo.DeleteMaterial(id)
}
