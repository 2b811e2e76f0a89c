package repository

import (
	"sst_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// WithTx returns the repository bound to the given transaction.
func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// FindByIDWithContent preloads modules with their materials, ordered for
// display.
func (r *CourseRepository) FindByIDWithContent(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		Preload("Modules.Materials", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) List(page, limit int, courseType string, status string) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	q := r.DB.Model(&model.Course{})
	if courseType != "" {
		q = q.Where("course_type = ?", courseType)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Offset((page - 1) * limit).Limit(limit).Order("id DESC").Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) CreateModule(module *model.CourseModule) error {
	return r.DB.Create(module).Error
}

func (r *CourseRepository) FindModuleByID(id uint) (*model.CourseModule, error) {
	var module model.CourseModule
	err := r.DB.First(&module, id).Error
	return &module, err
}

func (r *CourseRepository) FindModulesByCourse(courseID uint) ([]model.CourseModule, error) {
	var modules []model.CourseModule
	err := r.DB.Where("course_id = ?", courseID).Order("order_index").Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) UpdateModule(module *model.CourseModule) error {
	return r.DB.Save(module).Error
}

func (r *CourseRepository) CreateMaterial(material *model.CourseMaterial) error {
	return r.DB.Create(material).Error
}

func (r *CourseRepository) FindMaterialByID(id uint) (*model.CourseMaterial, error) {
	var material model.CourseMaterial
	err := r.DB.First(&material, id).Error
	return &material, err
}

func (r *CourseRepository) FindMaterialsByModule(moduleID uint) ([]model.CourseMaterial, error) {
	var materials []model.CourseMaterial
	err := r.DB.Where("module_id = ?", moduleID).Order("order_index").Find(&materials).Error
	return materials, err
}

func (r *CourseRepository) CountMaterialsByModule(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseMaterial{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) UpdateMaterial(material *model.CourseMaterial) error {
	return r.DB.Save(material).Error
}

func (r *CourseRepository) DeleteMaterial(id uint) error {
	return r.DB.Delete(&model.CourseMaterial{}, id).Error
}
