package database

import (
	"fmt"
	"log"
	"sst_backend/internal/config"
	"sst_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// Surface unique-index violations as gorm.ErrDuplicatedKey so the
		// attempt-slot guard can tell a race from a real failure.
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate runs AutoMigrate for every persisted model. Shared with the test
// helpers so the in-memory schema always matches production.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Worker{},
		&model.Course{},
		&model.CourseModule{},
		&model.CourseMaterial{},
		&model.Enrollment{},
		&model.UserMaterialProgress{},
		&model.UserModuleProgress{},
		&model.Survey{},
		&model.SurveyQuestion{},
		&model.UserSurvey{},
		&model.Evaluation{},
		&model.Question{},
		&model.Answer{},
		&model.UserEvaluation{},
		&model.UserAnswer{},
		&model.InteractiveLesson{},
		&model.LessonSlide{},
		&model.InlineQuiz{},
		&model.InlineQuizAnswer{},
		&model.UserLessonProgress{},
		&model.UserSlideProgress{},
		&model.Certificate{},
		&model.ReinductionRecord{},
		&model.Notification{},
	)
}
