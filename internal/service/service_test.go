package service

import (
	"testing"
	"time"

	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the full service graph against an in-memory sqlite database,
// mirroring the production wiring in internal/app.
type testEnv struct {
	db *gorm.DB

	enrollmentRepo *repository.EnrollmentRepository
	progressRepo   *repository.ProgressRepository
	lessonRepo     *repository.LessonRepository
	evaluationRepo *repository.EvaluationRepository
	surveyRepo     *repository.SurveyRepository

	completion  *CompletionService
	progress    *ProgressService
	enrollments *EnrollmentService
	evaluations *EvaluationService
	lessons     *LessonService
	surveys     *SurveyService
	certs       *CertificateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// sqlite in-memory databases are per-connection; pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	workerRepo := repository.NewWorkerRepository(db)
	reinductionRepo := repository.NewReinductionRepository(db)

	completion := NewCompletionService(courseRepo, enrollmentRepo, progressRepo, surveyRepo, evaluationRepo, reinductionRepo, db)
	progress := NewProgressService(courseRepo, enrollmentRepo, progressRepo, lessonRepo, completion, db)
	certs := NewCertificateService(certificateRepo, userRepo, courseRepo, nil, nil, db)

	return &testEnv{
		db:             db,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		lessonRepo:     lessonRepo,
		evaluationRepo: evaluationRepo,
		surveyRepo:     surveyRepo,
		completion:     completion,
		progress:       progress,
		enrollments:    NewEnrollmentService(courseRepo, enrollmentRepo, workerRepo, reinductionRepo, completion, db),
		evaluations:    NewEvaluationService(courseRepo, enrollmentRepo, evaluationRepo, completion, certs, db),
		lessons:        NewLessonService(lessonRepo, courseRepo, enrollmentRepo, progress, db),
		surveys:        NewSurveyService(surveyRepo, enrollmentRepo, completion, db),
		certs:          certs,
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     model.Employee,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createCourse(t *testing.T, status model.CourseStatus) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:        "Working at Heights",
		CourseType:   model.CourseTraining,
		Status:       status,
		PassingScore: 70,
	}
	require.NoError(t, e.db.Create(course).Error)
	return course
}

func (e *testEnv) addModule(t *testing.T, courseID uint, order int) *model.CourseModule {
	t.Helper()
	module := &model.CourseModule{
		CourseID:   courseID,
		Title:      "Module",
		OrderIndex: order,
	}
	require.NoError(t, e.db.Create(module).Error)
	return module
}

func (e *testEnv) addMaterial(t *testing.T, moduleID uint, order int) *model.CourseMaterial {
	t.Helper()
	material := &model.CourseMaterial{
		ModuleID:     moduleID,
		Title:        "Material",
		MaterialType: model.MaterialPDF,
		OrderIndex:   order,
	}
	require.NoError(t, e.db.Create(material).Error)
	return material
}

func (e *testEnv) enroll(t *testing.T, userID, courseID uint, status model.EnrollmentStatus) *model.Enrollment {
	t.Helper()
	enrollment := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     status,
		EnrolledAt: time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(enrollment).Error)
	return enrollment
}

func (e *testEnv) reloadEnrollment(t *testing.T, id uint) *model.Enrollment {
	t.Helper()
	var enrollment model.Enrollment
	require.NoError(t, e.db.First(&enrollment, id).Error)
	return &enrollment
}

// createEvaluation builds a published evaluation with one multiple-choice
// question worth 2 points (two correct options out of three) and one
// true/false question worth 1 point.
func (e *testEnv) createEvaluation(t *testing.T, courseID uint, maxAttempts int) *model.Evaluation {
	t.Helper()
	evaluation := &model.Evaluation{
		CourseID:     courseID,
		Title:        "Final Evaluation",
		PassingScore: 70,
		MaxAttempts:  maxAttempts,
		Status:       model.EvaluationPublished,
		Questions: []model.Question{
			{
				QuestionText: "Select the required PPE items",
				QuestionType: model.QuestionMultipleChoice,
				Points:       2,
				Answers: []model.Answer{
					{AnswerText: "Harness", IsCorrect: true, OrderIndex: 0},
					{AnswerText: "Helmet", IsCorrect: true, OrderIndex: 1},
					{AnswerText: "Sandals", IsCorrect: false, OrderIndex: 2},
				},
			},
			{
				QuestionText: "Anchor points must be certified",
				QuestionType: model.QuestionTrueFalse,
				Points:       1,
				Answers: []model.Answer{
					{AnswerText: "True", IsCorrect: true, OrderIndex: 0},
					{AnswerText: "False", IsCorrect: false, OrderIndex: 1},
				},
			},
		},
	}
	require.NoError(t, e.db.Create(evaluation).Error)
	return evaluation
}

// correctAnswersFor returns the submissions that fully answer the standard
// evaluation fixture correctly.
func correctAnswersFor(evaluation *model.Evaluation) []AnswerSubmission {
	answers := make([]AnswerSubmission, 0, len(evaluation.Questions))
	for _, q := range evaluation.Questions {
		var selected []uint
		for _, a := range q.Answers {
			if a.IsCorrect {
				selected = append(selected, a.ID)
			}
		}
		answers = append(answers, AnswerSubmission{QuestionID: q.ID, SelectedAnswerIDs: selected})
	}
	return answers
}

// createLesson builds a published lesson with one content slide and one quiz
// slide whose inline quiz has a single correct option.
func (e *testEnv) createLesson(t *testing.T, moduleID uint) *model.InteractiveLesson {
	t.Helper()
	lesson := &model.InteractiveLesson{
		ModuleID: moduleID,
		Title:    "Ladder Safety",
		Status:   model.LessonPublished,
		Slides: []model.LessonSlide{
			{Title: "Intro", SlideType: model.SlideContent, OrderIndex: 0},
			{
				Title:      "Check",
				SlideType:  model.SlideQuiz,
				OrderIndex: 1,
			},
		},
	}
	require.NoError(t, e.db.Create(lesson).Error)

	quiz := &model.InlineQuiz{
		SlideID:                 lesson.Slides[1].ID,
		QuestionText:            "Maximum ladder angle?",
		QuizType:                model.InlineQuizMultipleChoice,
		Points:                  2,
		Explanation:             "75 degrees is the safe maximum.",
		ShowFeedbackImmediately: true,
		Answers: []model.InlineQuizAnswer{
			{AnswerText: "75 degrees", IsCorrect: true, OrderIndex: 0},
			{AnswerText: "90 degrees", IsCorrect: false, OrderIndex: 1},
		},
	}
	require.NoError(t, e.db.Create(quiz).Error)
	return lesson
}
