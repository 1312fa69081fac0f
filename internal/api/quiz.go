package api

import (
	"context"

	"lingo-client/internal/models"
)

type QuizAPI struct {
	client func() *Client
}

func (g *Gateway) Quiz() *QuizAPI {
	return &QuizAPI{client: func() *Client { return g.Authenticated() }}
}

func (g *Gateway) PublicQuiz() *QuizAPI {
	return &QuizAPI{client: func() *Client { return g.Public() }}
}

// GrammarQuizzes lists the questions of a grammar topic; topicID 0 lists all.
func (q *QuizAPI) GrammarQuizzes(ctx context.Context, topicID int) ([]models.Question, error) {
	var questions []models.Question
	if err := q.client().Get(ctx, withQuery(PathGrammarQuizzes, param("topicId", topicID)), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuizAPI) VocabularyQuizzes(ctx context.Context, categoryID int) ([]models.Question, error) {
	var questions []models.Question
	if err := q.client().Get(ctx, withQuery(PathVocabularyQuizzes, param("groupId", categoryID)), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuizAPI) SubmitGrammar(ctx context.Context, req models.AnswerQuizRequest) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := q.client().Post(ctx, PathGrammarQuizAnswer, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (q *QuizAPI) SubmitVocabulary(ctx context.Context, req models.AnswerQuizRequest) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := q.client().Post(ctx, PathVocabQuizAnswer, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (q *QuizAPI) GrammarResult(ctx context.Context, topicID int) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := q.client().Get(ctx, withQuery(PathGrammarResult, param("grammarTopicId", topicID)), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
