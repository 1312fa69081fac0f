package api

import (
	"context"

	"lingo-client/internal/models"
)

// LevelAPI manages the level reference list.
type LevelAPI struct {
	client func() *Client
}

func (g *Gateway) Levels() *LevelAPI {
	return &LevelAPI{client: func() *Client { return g.Authenticated() }}
}

func (g *Gateway) PublicLevels() *LevelAPI {
	return &LevelAPI{client: func() *Client { return g.Public() }}
}

func (l *LevelAPI) List(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	if err := l.client().Get(ctx, PathLevels, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func (l *LevelAPI) Add(ctx context.Context, name string) (*models.Response, error) {
	var resp models.Response
	if err := l.client().Post(ctx, PathAddLevel, map[string]string{"level": name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Up asks the backend to move the learner to the next level.
func (l *LevelAPI) Up(ctx context.Context) (*models.Response, error) {
	var resp models.Response
	if err := l.client().Post(ctx, PathLevelUp, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GrammarAPI covers levels, lessons and the per-user lesson view.
type GrammarAPI struct {
	client func() *Client
}

func (g *Gateway) Grammar() *GrammarAPI {
	return &GrammarAPI{client: func() *Client { return g.Authenticated() }}
}

func (g *Gateway) PublicGrammar() *GrammarAPI {
	return &GrammarAPI{client: func() *Client { return g.Public() }}
}

func (a *GrammarAPI) Levels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	if err := a.client().Get(ctx, PathGrammarLevels, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func (a *GrammarAPI) Lessons(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := a.client().Get(ctx, PathGrammarLessons, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// MyLessons returns the lessons of one level with the user's completion flags.
func (a *GrammarAPI) MyLessons(ctx context.Context, userID, levelID int) ([]models.Lesson, error) {
	var lessons []models.Lesson
	path := withQuery(PathGrammarMyLessons, param("userId", userID), param("levelId", levelID))
	if err := a.client().Get(ctx, path, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (a *GrammarAPI) EndLesson(ctx context.Context, userID, topicID int) (*models.Response, error) {
	var resp models.Response
	path := withQuery(PathGrammarEndLesson, param("userId", userID), param("topicId", topicID))
	if err := a.client().Post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *GrammarAPI) TopicList(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := a.client().Get(ctx, PathGrammarTopicList, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

func (a *GrammarAPI) LessonByID(ctx context.Context, id int) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := a.client().Get(ctx, lessonPath(id), &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (a *GrammarAPI) AddLessons(ctx context.Context, lessons []models.Lesson) (*models.Response, error) {
	var resp models.Response
	if err := a.client().Post(ctx, PathGrammarAddList, lessons, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
