package api

import (
	"context"

	"lingo-client/internal/models"
)

type VocabularyAPI struct {
	client func() *Client
}

func (g *Gateway) Vocabulary() *VocabularyAPI {
	return &VocabularyAPI{client: func() *Client { return g.Authenticated() }}
}

func (g *Gateway) PublicVocabulary() *VocabularyAPI {
	return &VocabularyAPI{client: func() *Client { return g.Public() }}
}

func (v *VocabularyAPI) Categories(ctx context.Context) ([]models.VocabularyCategory, error) {
	var categories []models.VocabularyCategory
	if err := v.client().Get(ctx, PathVocabularyCategories, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (v *VocabularyAPI) Words(ctx context.Context, categoryID int) ([]models.Word, error) {
	var words []models.Word
	if err := v.client().Get(ctx, withQuery(PathVocabularyWords, param("groupId", categoryID)), &words); err != nil {
		return nil, err
	}
	return words, nil
}

// AddCategories creates one category per title.
func (v *VocabularyAPI) AddCategories(ctx context.Context, titles []string) (*models.Response, error) {
	body := make([]map[string]string, 0, len(titles))
	for _, t := range titles {
		body = append(body, map[string]string{"title": t})
	}
	var resp models.Response
	if err := v.client().Post(ctx, PathVocabularyCategories, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (v *VocabularyAPI) AddWords(ctx context.Context, categoryID int, words []models.Word) (*models.Response, error) {
	var resp models.Response
	if err := v.client().Post(ctx, withQuery(PathVocabularyWords, param("groupId", categoryID)), words, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
