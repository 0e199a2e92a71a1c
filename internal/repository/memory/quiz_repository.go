package memory

import (
	"time"

	"notelets-be/pkg/quiz"

	"github.com/patrickmn/go-cache"
)

// QuizRepository keeps active quiz attempts in memory only. Attempts expire
// an hour after their last write, which is the whole persistence story: quiz
// state never reaches the document store.
type QuizRepository struct {
	cache *cache.Cache
}

func NewQuizRepository() *QuizRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &QuizRepository{
		cache: c,
	}
}

func (r *QuizRepository) Save(state *quiz.State) {
	r.cache.Set(state.ID, state, cache.DefaultExpiration)
}

func (r *QuizRepository) Get(id string) (*quiz.State, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*quiz.State), true
	}
	return nil, false
}

func (r *QuizRepository) Delete(id string) {
	r.cache.Delete(id)
}
