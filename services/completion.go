package services

import (
	"errors"

	"media-stream-system/models"
	"media-stream-system/utils"

	"gorm.io/gorm"
)

// CompletionThreshold is the fraction of an episode's runtime that must be
// watched before it counts as consumed.
const CompletionThreshold = 0.9

// CompletionService is the watch-completion oracle: pure reads, no side
// effects. Unknown data (missing history row, unparseable runtime) is treated
// as incomplete rather than an error.
type CompletionService struct {
	DB *gorm.DB
}

func NewCompletionService(db *gorm.DB) *CompletionService {
	return &CompletionService{DB: db}
}

// IsEpisodeComplete reports whether the user watched at least
// CompletionThreshold of the episode's runtime.
func (s *CompletionService) IsEpisodeComplete(userID, episodeID uint) (bool, error) {
	return s.episodeComplete(s.DB, userID, episodeID)
}

// episodeComplete is the tx-scoped form; the challenge engine calls it from
// inside the dispatch transaction so credit decisions see the same snapshot.
func (s *CompletionService) episodeComplete(db *gorm.DB, userID, episodeID uint) (bool, error) {
	var episode models.Episode
	if err := db.First(&episode, episodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	totalMillis, err := utils.DurationToMillis(episode.Duration)
	if err != nil {
		return false, nil // unknown runtime ⇒ incomplete
	}

	var history models.WatchHistory
	if err := db.Where("user_id = ? AND episode_id = ?", userID, episodeID).First(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	watchedMillis := int64(history.WatchedDuration) * 1000
	return float64(watchedMillis) >= CompletionThreshold*float64(totalMillis), nil
}

// IsMovieComplete: single-part movies delegate to their sole episode;
// multi-episode movies require every episode to be complete. A movie with no
// episodes is never complete.
func (s *CompletionService) IsMovieComplete(userID, movieID uint) (bool, error) {
	return s.movieComplete(s.DB, userID, movieID)
}

func (s *CompletionService) movieComplete(db *gorm.DB, userID, movieID uint) (bool, error) {
	var movie models.Movie
	if err := db.Preload("Episodes").First(&movie, movieID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if len(movie.Episodes) == 0 {
		return false, nil
	}

	if movie.Type != models.MovieTypeSeries || len(movie.Episodes) <= 1 {
		return s.episodeComplete(db, userID, movie.Episodes[0].ID)
	}

	for _, ep := range movie.Episodes {
		done, err := s.episodeComplete(db, userID, ep.ID)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
	}
	return true, nil
}

// IsSeriesComplete: every movie in the series must be complete; a series with
// no movies is never complete.
func (s *CompletionService) IsSeriesComplete(userID, seriesID uint) (bool, error) {
	var movies []models.Movie
	if err := s.DB.Where("series_id = ?", seriesID).Find(&movies).Error; err != nil {
		return false, err
	}

	if len(movies) == 0 {
		return false, nil
	}

	for _, m := range movies {
		done, err := s.movieComplete(s.DB, userID, m.ID)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
	}
	return true, nil
}
