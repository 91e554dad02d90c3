package services

import (
	"context"
	"fmt"
	"strings"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeTarget string

const (
	LikeQuestion LikeTarget = "question"
	LikeAnswer   LikeTarget = "answer"
)

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type QuestionInput struct {
	Title string `json:"title" validate:"required,min=3,max=200"`
	Body  string `json:"body" validate:"max=10000"`
}

type AnswerInput struct {
	Body string `json:"body" validate:"required,min=1,max=10000"`
}

type QuestionView struct {
	models.LessonQuestion
	Author models.PublicProfile `json:"author"`
	Liked  bool                 `json:"liked"`
}

type AnswerView struct {
	models.LessonAnswer
	Author models.PublicProfile `json:"author"`
	Liked  bool                 `json:"liked"`
}

type QuestionThread struct {
	Question QuestionView `json:"question"`
	Answers  []AnswerView `json:"answers"`
}

// leaderboardInvalidator is notified when accepted answers change.
type leaderboardInvalidator interface {
	Invalidate(ctx context.Context)
}

type QAService struct {
	db          *gorm.DB
	leaderboard leaderboardInvalidator
}

func NewQAService(db *gorm.DB, leaderboard leaderboardInvalidator) *QAService {
	return &QAService{db: db, leaderboard: leaderboard}
}

// likeTable describes how a like kind maps onto its tables.
type likeTable struct {
	parent interface{}
	column string
	row    func(userID, targetID uint) interface{}
	empty  interface{}
}

func likeTableFor(kind LikeTarget) (likeTable, error) {
	switch kind {
	case LikeQuestion:
		return likeTable{
			parent: &models.LessonQuestion{},
			column: "question_id",
			row: func(userID, targetID uint) interface{} {
				return &models.QuestionLike{UserID: userID, QuestionID: targetID}
			},
			empty: &models.QuestionLike{},
		}, nil
	case LikeAnswer:
		return likeTable{
			parent: &models.LessonAnswer{},
			column: "answer_id",
			row: func(userID, targetID uint) interface{} {
				return &models.AnswerLike{UserID: userID, AnswerID: targetID}
			},
			empty: &models.AnswerLike{},
		}, nil
	}
	return likeTable{}, fmt.Errorf("unknown like target %q: %w", kind, ErrValidation)
}

// ToggleLike flips the caller's like on a question or answer. The counter
// only moves when a like row was actually inserted or deleted, using a
// single UPDATE expression, so it stays equal to the number of like rows.
func (s *QAService) ToggleLike(ctx context.Context, userID, targetID uint, kind LikeTarget) (LikeResult, error) {
	table, err := likeTableFor(kind)
	if err != nil {
		return LikeResult{}, err
	}

	var result LikeResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(table.parent).Where("id = ?", targetID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("%s %d: %w", kind, targetID, ErrNotFound)
		}

		del := tx.Where("user_id = ? AND "+table.column+" = ?", userID, targetID).Delete(table.empty)
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected > 0 {
			result.Liked = false
			if err := tx.Model(table.parent).Where("id = ?", targetID).
				UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
		} else {
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(table.row(userID, targetID))
			if ins.Error != nil {
				return ins.Error
			}
			result.Liked = true
			if ins.RowsAffected > 0 {
				if err := tx.Model(table.parent).Where("id = ?", targetID).
					UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(table.parent).Select("likes_count").Where("id = ?", targetID).Scan(&result.LikesCount).Error
	})
	if err != nil {
		return LikeResult{}, err
	}
	return result, nil
}

// AcceptAnswer marks answerID as the accepted answer of its question.
// Only the question owner may accept; the three writes share one transaction
// so exactly one answer of the question ends up accepted.
func (s *QAService) AcceptAnswer(ctx context.Context, requesterID, answerID uint) (models.LessonAnswer, error) {
	var answer models.LessonAnswer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&answer, answerID).Error; err != nil {
			return fmt.Errorf("answer %d: %w", answerID, notFound(err))
		}

		var question models.LessonQuestion
		if err := tx.First(&question, answer.QuestionID).Error; err != nil {
			return fmt.Errorf("question %d: %w", answer.QuestionID, notFound(err))
		}
		if question.UserID != requesterID {
			return fmt.Errorf("only the asker can accept an answer: %w", ErrForbidden)
		}

		next, err := question.Status.Accept()
		if err != nil {
			return err
		}

		if err := tx.Model(&models.LessonAnswer{}).
			Where("question_id = ?", question.ID).
			Update("is_accepted", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LessonAnswer{}).
			Where("id = ?", answer.ID).
			Update("is_accepted", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LessonQuestion{}).
			Where("id = ?", question.ID).
			Update("status", next).Error; err != nil {
			return err
		}
		answer.IsAccepted = true
		return nil
	})
	if err != nil {
		return models.LessonAnswer{}, err
	}

	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return answer, nil
}

func (s *QAService) AskQuestion(ctx context.Context, userID, lessonID uint, in QuestionInput) (models.LessonQuestion, error) {
	in.Title = strings.TrimSpace(in.Title)
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.LessonQuestion{}, fmt.Errorf("question: %w", ErrValidation)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Lesson{}).Where("id = ?", lessonID).Count(&count).Error; err != nil {
		return models.LessonQuestion{}, err
	}
	if count == 0 {
		return models.LessonQuestion{}, fmt.Errorf("lesson %d: %w", lessonID, ErrNotFound)
	}

	question := models.LessonQuestion{
		LessonID: lessonID,
		UserID:   userID,
		Title:    in.Title,
		Body:     in.Body,
		Status:   models.QuestionOpen,
	}
	if err := db.Omit(clause.Associations).Create(&question).Error; err != nil {
		return models.LessonQuestion{}, err
	}
	return question, nil
}

func (s *QAService) PostAnswer(ctx context.Context, userID, questionID uint, in AnswerInput) (models.LessonAnswer, error) {
	in.Body = strings.TrimSpace(in.Body)
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.LessonAnswer{}, fmt.Errorf("answer: %w", ErrValidation)
	}

	answer := models.LessonAnswer{QuestionID: questionID, UserID: userID, Body: in.Body}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LessonQuestion{}).Where("id = ?", questionID).
			UpdateColumn("answers_count", gorm.Expr("answers_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
		}
		return tx.Omit(clause.Associations).Create(&answer).Error
	})
	if err != nil {
		return models.LessonAnswer{}, err
	}
	return answer, nil
}

func (s *QAService) ListQuestions(ctx context.Context, lessonID uint, status models.QuestionStatus, page utils.Page) ([]QuestionView, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.LessonQuestion{}).Where("lesson_id = ?", lessonID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.LessonQuestion
	if err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	views := make([]QuestionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, QuestionView{LessonQuestion: row, Author: row.User.Public()})
	}
	return views, total, nil
}

// GetQuestion loads a question with its answers, accepted answer first.
// viewerID may be zero for anonymous readers.
func (s *QAService) GetQuestion(ctx context.Context, questionID, viewerID uint) (QuestionThread, error) {
	db := s.db.WithContext(ctx)

	var question models.LessonQuestion
	if err := db.Preload("User").First(&question, questionID).Error; err != nil {
		return QuestionThread{}, fmt.Errorf("question %d: %w", questionID, notFound(err))
	}

	var answers []models.LessonAnswer
	if err := db.Preload("User").
		Where("question_id = ?", questionID).
		Order("is_accepted DESC, likes_count DESC, created_at ASC, id ASC").
		Find(&answers).Error; err != nil {
		return QuestionThread{}, err
	}

	thread := QuestionThread{
		Question: QuestionView{LessonQuestion: question, Author: question.User.Public()},
		Answers:  make([]AnswerView, 0, len(answers)),
	}

	liked := map[uint]bool{}
	if viewerID != 0 {
		var n int64
		if err := db.Model(&models.QuestionLike{}).
			Where("user_id = ? AND question_id = ?", viewerID, questionID).
			Count(&n).Error; err != nil {
			return QuestionThread{}, err
		}
		thread.Question.Liked = n > 0

		if len(answers) > 0 {
			ids := make([]uint, 0, len(answers))
			for _, a := range answers {
				ids = append(ids, a.ID)
			}
			var likedIDs []uint
			if err := db.Model(&models.AnswerLike{}).
				Where("user_id = ? AND answer_id IN ?", viewerID, ids).
				Pluck("answer_id", &likedIDs).Error; err != nil {
				return QuestionThread{}, err
			}
			for _, id := range likedIDs {
				liked[id] = true
			}
		}
	}

	for _, a := range answers {
		thread.Answers = append(thread.Answers, AnswerView{LessonAnswer: a, Author: a.User.Public(), Liked: liked[a.ID]})
	}
	return thread, nil
}
