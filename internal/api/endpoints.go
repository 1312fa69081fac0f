package api

import (
	"net/url"
	"strconv"
)

const (
	PathSignUp         = "/api/auth/sign-up"
	PathSignIn         = "/api/auth/sign-in"
	PathVerifyOTP      = "/api/auth/verify"
	PathForgotPassword = "/api/auth/forgot-password"
	PathResetPassword  = "/api/auth/reset-password"
	PathResendOTP      = "/api/auth/resend-code"

	PathUserProfile  = "/api/user/profile"
	PathUserProgress = "/api/user/progress"

	PathLevels   = "/api/level"
	PathAddLevel = "/api/level/add"
	PathLevelUp  = "/api/level/up"

	PathGrammarLevels    = "/api/grammar/levels"
	PathGrammarLessons   = "/api/grammar/lessons"
	PathGrammarMyLessons = "/api/grammar/my-lessons"
	PathGrammarEndLesson = "/api/grammar/end-lesson"
	PathGrammarTopicList = "/api/grammar/topic-list"
	PathGrammarAddList   = "/api/grammar/add-list"

	PathVocabularyCategories = "/api/vocabulary/category"
	PathVocabularyWords      = "/api/vocabulary/words"

	PathGrammarQuizzes    = "/api/quiz/grammar"
	PathVocabularyQuizzes = "/api/quiz/vocabulary"
	PathGrammarQuizAnswer = "/api/quiz/grammar/answer"
	PathVocabQuizAnswer   = "/api/quiz/vocabulary/answer"
	PathGrammarResult     = "/api/quiz/grammar-result"
)

// withQuery appends the non-zero integer parameters to path in the order given.
func withQuery(path string, params ...queryParam) string {
	q := url.Values{}
	for _, p := range params {
		if p.value != 0 {
			q.Set(p.key, strconv.Itoa(p.value))
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

type queryParam struct {
	key   string
	value int
}

func param(key string, value int) queryParam { return queryParam{key: key, value: value} }

func lessonPath(id int) string {
	return PathGrammarLessons + "/" + strconv.Itoa(id)
}
